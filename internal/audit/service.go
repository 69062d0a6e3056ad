package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/pagination"
)

// Service records and queries the audit trail.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*models.AuditEntry, error)
	Query(ctx context.Context, input QueryInput) (*QueryResult, error)
}

// AppendInput captures the immutable data an audit entry requires. Names are
// cached copies taken at movement time.
type AppendInput struct {
	Kind             enums.MovementKind
	SKU              string
	ItemName         string
	FromLocationID   *uuid.UUID
	FromLocationName *string
	ToLocationID     *uuid.UUID
	ToLocationName   *string
	Quantity         int64
	Reason           *string
	Note             *string
	ActorID          string
	ActorName        string
}

// QueryInput filters the trail. Cursor is the opaque value from a previous page.
type QueryInput struct {
	SKU        string
	Kind       string
	LocationID string
	Start      time.Time
	End        time.Time
	Limit      int
	Cursor     string
}

// QueryResult carries one page of entries plus the cursor for the next page.
type QueryResult struct {
	Entries    []models.AuditEntry
	NextCursor string
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.AuditEntry, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement kind %q", input.Kind))
	}
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if strings.TrimSpace(input.ActorID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}

	entry := &models.AuditEntry{
		Kind:             input.Kind,
		SKU:              input.SKU,
		ItemName:         input.ItemName,
		FromLocationID:   input.FromLocationID,
		FromLocationName: input.FromLocationName,
		ToLocationID:     input.ToLocationID,
		ToLocationName:   input.ToLocationName,
		Quantity:         input.Quantity,
		Reason:           input.Reason,
		Note:             input.Note,
		ActorID:          input.ActorID,
		ActorName:        input.ActorName,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	var kind enums.MovementKind
	if input.Kind != "" {
		parsed, err := enums.ParseMovementKind(input.Kind)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement kind %q", input.Kind))
		}
		kind = parsed
	}
	if !input.Start.IsZero() && !input.End.IsZero() && input.End.Before(input.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end must not be before start")
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	entries, next, err := s.repo.List(ctx, ListParams{
		SKU:        input.SKU,
		Kind:       kind,
		LocationID: input.LocationID,
		Start:      input.Start,
		End:        input.End,
		Limit:      input.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Entries: entries}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
