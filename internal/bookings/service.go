package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

// Service manages the reserved quantity and planning note kept per SKU.
type Service interface {
	Get(ctx context.Context, sku string) (*models.Booking, error)
	Set(ctx context.Context, sku string, quantity int64, note string) (*models.Booking, error)
}

type service struct {
	repo  Repository
	items catalog.Repository
}

func NewService(repo Repository, items catalog.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, items: items}, nil
}

// Get returns the booking for a SKU. A SKU without a stored booking reads as
// zero reserved with an empty note.
func (s *service) Get(ctx context.Context, sku string) (*models.Booking, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if _, err := s.lookupItem(ctx, sku); err != nil {
		return nil, err
	}

	booking, err := s.repo.Get(ctx, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Booking{SKU: sku}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func (s *service) Set(ctx context.Context, sku string, quantity int64, note string) (*models.Booking, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booked quantity must not be negative")
	}
	if _, err := s.lookupItem(ctx, sku); err != nil {
		return nil, err
	}

	booking := &models.Booking{SKU: sku, Quantity: quantity, Note: strings.TrimSpace(note)}
	if err := s.repo.Save(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking")
	}
	return booking, nil
}

func (s *service) lookupItem(ctx context.Context, sku string) (*models.Item, error) {
	item, err := s.items.GetBySKU(ctx, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sku %q not in catalogue", sku))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}
