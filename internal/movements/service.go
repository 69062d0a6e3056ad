package movements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/internal/audit"
	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/internal/locations"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies stock movements. Every committed movement changes the
// ledger and appends exactly one audit entry; a rejected movement changes
// neither.
type Service interface {
	Add(ctx context.Context, input MovementInput) (*MovementResult, error)
	Deduct(ctx context.Context, input MovementInput) (*MovementResult, error)
	Set(ctx context.Context, input SetInput) (*MovementResult, error)
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
}

// Actor identifies who performed a movement.
type Actor struct {
	ID   string
	Name string
}

// MovementInput is the payload for Add and Deduct.
type MovementInput struct {
	SKU        string
	LocationID uuid.UUID
	Quantity   int64
	Reason     *string
	Note       *string
	Actor      Actor
}

// SetInput overwrites the balance at one location.
type SetInput struct {
	SKU        string
	LocationID uuid.UUID
	Quantity   int64
	Reason     *string
	Note       *string
	Actor      Actor
}

// TransferInput moves stock between two locations.
type TransferInput struct {
	SKU            string
	FromLocationID uuid.UUID
	ToLocationID   uuid.UUID
	Quantity       int64
	Reason         *string
	Note           *string
	Actor          Actor
}

// MovementResult reports the committed state after a single-location movement.
type MovementResult struct {
	Entry    *models.AuditEntry
	Quantity int64
}

// TransferResult reports both balances after a transfer.
type TransferResult struct {
	Entry        *models.AuditEntry
	FromQuantity int64
	ToQuantity   int64
}

type service struct {
	items   catalog.Repository
	places  locations.Repository
	stock   ledger.Repository
	trail   audit.Repository
	tx      txRunner
	metrics *metrics.MovementMetrics
}

// NewService wires a movements service. The transaction runner is optional:
// without one, transfers run as a compensated two-step sequence instead of a
// single transaction.
func NewService(items catalog.Repository, places locations.Repository, stock ledger.Repository, trail audit.Repository, tx txRunner, m *metrics.MovementMetrics) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if places == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{items: items, places: places, stock: stock, trail: trail, tx: tx, metrics: m}, nil
}

func (s *service) Add(ctx context.Context, input MovementInput) (*MovementResult, error) {
	start := time.Now()
	result, err := s.applySingle(ctx, enums.MovementKindAdd, input)
	s.observe(enums.MovementKindAdd.String(), start)
	return result, err
}

func (s *service) Deduct(ctx context.Context, input MovementInput) (*MovementResult, error) {
	start := time.Now()
	result, err := s.applySingle(ctx, enums.MovementKindDeduct, input)
	s.observe(enums.MovementKindDeduct.String(), start)
	return result, err
}

func (s *service) applySingle(ctx context.Context, kind enums.MovementKind, input MovementInput) (*MovementResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, s.reject(kind.String(), "invalid_quantity",
			pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"))
	}

	item, location, err := s.resolve(ctx, input.SKU, input.LocationID, kind.String())
	if err != nil {
		return nil, err
	}

	delta := input.Quantity
	if kind == enums.MovementKindDeduct {
		delta = -delta
	}

	var result MovementResult
	err = s.runTx(ctx, func(tx *gorm.DB) error {
		quantity, err := s.stock.WithTx(tx).ApplyDelta(ctx, item.SKU, location.ID, delta)
		if err != nil {
			return err
		}

		entry := s.newEntry(kind, item, input.Quantity, input.Reason, input.Note, input.Actor)
		if kind == enums.MovementKindAdd {
			entry.ToLocationID = &location.ID
			entry.ToLocationName = &location.Name
		} else {
			entry.FromLocationID = &location.ID
			entry.FromLocationName = &location.Name
		}
		if err := s.trail.WithTx(tx).Create(ctx, entry); err != nil {
			return s.compensateAuditFailure(ctx, tx, item.SKU, location.ID, delta, err)
		}

		result = MovementResult{Entry: entry, Quantity: quantity}
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
			s.metrics.IncRejected(kind.String(), "insufficient_stock")
		}
		return nil, err
	}

	s.metrics.IncApplied(kind.String())
	return &result, nil
}

// Set overwrites the balance and audits the difference as an add or deduct.
// Setting the current value is a no-op and leaves no trail.
func (s *service) Set(ctx context.Context, input SetInput) (*MovementResult, error) {
	start := time.Now()

	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, s.reject("set", "invalid_quantity",
			pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative"))
	}

	item, location, err := s.resolve(ctx, input.SKU, input.LocationID, "set")
	if err != nil {
		return nil, err
	}

	var result MovementResult
	err = s.runTx(ctx, func(tx *gorm.DB) error {
		previous, err := s.stock.WithTx(tx).SetQuantity(ctx, item.SKU, location.ID, input.Quantity)
		if err != nil {
			return err
		}

		delta := input.Quantity - previous
		result = MovementResult{Quantity: input.Quantity}
		if delta == 0 {
			return nil
		}

		kind := enums.MovementKindAdd
		magnitude := delta
		if delta < 0 {
			kind = enums.MovementKindDeduct
			magnitude = -delta
		}

		entry := s.newEntry(kind, item, magnitude, input.Reason, input.Note, input.Actor)
		if kind == enums.MovementKindAdd {
			entry.ToLocationID = &location.ID
			entry.ToLocationName = &location.Name
		} else {
			entry.FromLocationID = &location.ID
			entry.FromLocationName = &location.Name
		}
		if err := s.trail.WithTx(tx).Create(ctx, entry); err != nil {
			return s.compensateAuditFailure(ctx, tx, item.SKU, location.ID, delta, err)
		}
		result.Entry = entry
		return nil
	})
	s.observe("set", start)
	if err != nil {
		return nil, err
	}
	s.metrics.IncApplied("set")
	return &result, nil
}

func (s *service) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	start := time.Now()
	kind := enums.MovementKindTransfer

	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, s.reject(kind.String(), "invalid_quantity",
			pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"))
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, s.reject(kind.String(), "same_location",
			pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ"))
	}

	item, from, err := s.resolve(ctx, input.SKU, input.FromLocationID, kind.String())
	if err != nil {
		return nil, err
	}
	to, err := s.lookupLocation(ctx, input.ToLocationID, kind.String())
	if err != nil {
		return nil, err
	}

	var result *TransferResult
	if s.tx != nil {
		result, err = s.transferTx(ctx, item, from, to, input)
	} else {
		result, err = s.transferSaga(ctx, item, from, to, input)
	}
	s.observe(kind.String(), start)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
			s.metrics.IncRejected(kind.String(), "insufficient_stock")
		}
		return nil, err
	}
	s.metrics.IncApplied(kind.String())
	return result, nil
}

// transferTx performs both legs and the audit append in one transaction.
func (s *service) transferTx(ctx context.Context, item *models.Item, from, to *models.Location, input TransferInput) (*TransferResult, error) {
	var result TransferResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stock := s.stock.WithTx(tx)
		fromQty, err := stock.ApplyDelta(ctx, item.SKU, from.ID, -input.Quantity)
		if err != nil {
			return err
		}
		toQty, err := stock.ApplyDelta(ctx, item.SKU, to.ID, input.Quantity)
		if err != nil {
			return err
		}

		entry := s.transferEntry(item, from, to, input)
		if err := s.trail.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}

		result = TransferResult{Entry: entry, FromQuantity: fromQty, ToQuantity: toQty}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// transferSaga runs the two legs without a shared transaction: deduct the
// source, credit the destination, and undo the deduction if the credit fails.
// A failed compensation is surfaced as an inconsistent state carrying enough
// detail to reconcile by hand.
func (s *service) transferSaga(ctx context.Context, item *models.Item, from, to *models.Location, input TransferInput) (*TransferResult, error) {
	fromQty, err := s.stock.ApplyDelta(ctx, item.SKU, from.ID, -input.Quantity)
	if err != nil {
		return nil, err
	}

	toQty, err := s.stock.ApplyDelta(ctx, item.SKU, to.ID, input.Quantity)
	if err != nil {
		if _, rollbackErr := s.stock.ApplyDelta(ctx, item.SKU, from.ID, input.Quantity); rollbackErr != nil {
			s.metrics.IncInconsistent()
			return nil, pkgerrors.Wrap(pkgerrors.CodeInconsistentTransfer, rollbackErr,
				"transfer credit and rollback both failed").WithDetails(map[string]any{
				"sku":              item.SKU,
				"from_location_id": from.ID.String(),
				"to_location_id":   to.ID.String(),
				"quantity":         input.Quantity,
			})
		}
		s.metrics.IncCompensated()
		return nil, err
	}

	entry := s.transferEntry(item, from, to, input)
	if err := s.trail.Create(ctx, entry); err != nil {
		// Undo both legs so a movement without a trail never stands.
		if _, e1 := s.stock.ApplyDelta(ctx, item.SKU, to.ID, -input.Quantity); e1 != nil {
			s.metrics.IncInconsistent()
			return nil, pkgerrors.Wrap(pkgerrors.CodeInconsistentTransfer, e1, "audit append and rollback both failed")
		}
		if _, e2 := s.stock.ApplyDelta(ctx, item.SKU, from.ID, input.Quantity); e2 != nil {
			s.metrics.IncInconsistent()
			return nil, pkgerrors.Wrap(pkgerrors.CodeInconsistentTransfer, e2, "audit append and rollback both failed")
		}
		s.metrics.IncCompensated()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}

	return &TransferResult{Entry: entry, FromQuantity: fromQty, ToQuantity: toQty}, nil
}

// compensateAuditFailure reverses a ledger change whose audit append failed.
// Inside a transaction the rollback restores the ledger; without one the
// change is undone here so a movement without a trail never stands.
func (s *service) compensateAuditFailure(ctx context.Context, tx *gorm.DB, sku string, locationID uuid.UUID, delta int64, cause error) error {
	wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "append audit entry")
	if tx != nil {
		return wrapped
	}
	if _, undoErr := s.stock.ApplyDelta(ctx, sku, locationID, -delta); undoErr != nil {
		s.metrics.IncInconsistent()
		return pkgerrors.Wrap(pkgerrors.CodeInconsistentTransfer, undoErr,
			"audit append and rollback both failed").WithDetails(map[string]any{
			"sku":         sku,
			"location_id": locationID.String(),
			"delta":       delta,
		})
	}
	s.metrics.IncCompensated()
	return wrapped
}

func (s *service) transferEntry(item *models.Item, from, to *models.Location, input TransferInput) *models.AuditEntry {
	entry := s.newEntry(enums.MovementKindTransfer, item, input.Quantity, input.Reason, input.Note, input.Actor)
	entry.FromLocationID = &from.ID
	entry.FromLocationName = &from.Name
	entry.ToLocationID = &to.ID
	entry.ToLocationName = &to.Name
	return entry
}

func (s *service) newEntry(kind enums.MovementKind, item *models.Item, quantity int64, reason, note *string, actor Actor) *models.AuditEntry {
	return &models.AuditEntry{
		Kind:      kind,
		SKU:       item.SKU,
		ItemName:  item.Name,
		Quantity:  quantity,
		Reason:    reason,
		Note:      note,
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}
}

func (s *service) resolve(ctx context.Context, sku string, locationID uuid.UUID, kind string) (*models.Item, *models.Location, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, nil, s.reject(kind, "unknown_sku",
			pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
	}

	item, err := s.items.GetBySKU(ctx, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, s.reject(kind, "unknown_sku",
			pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sku %q not in catalogue", sku)))
	}
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	location, err := s.lookupLocation(ctx, locationID, kind)
	if err != nil {
		return nil, nil, err
	}
	return item, location, nil
}

func (s *service) lookupLocation(ctx context.Context, id uuid.UUID, kind string) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, s.reject(kind, "unknown_location",
			pkgerrors.New(pkgerrors.CodeValidation, "location id is required"))
	}
	location, err := s.places.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.reject(kind, "unknown_location",
			pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("location %s not found", id)))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	return location, nil
}

// runTx uses the runner when present; otherwise the steps execute directly.
func (s *service) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.tx != nil {
		return s.tx.WithTx(ctx, fn)
	}
	return fn(nil)
}

func (s *service) reject(kind, reason string, err *pkgerrors.Error) error {
	s.metrics.IncRejected(kind, reason)
	return err
}

func (s *service) observe(kind string, start time.Time) {
	s.metrics.ObserveDuration(kind, time.Since(start))
}

func validateActor(actor Actor) error {
	if strings.TrimSpace(actor.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	return nil
}
