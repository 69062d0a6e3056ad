package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

// Service exposes read access to stock levels. Mutations happen through the
// movements service so every change leaves an audit entry.
type Service interface {
	GetLevel(ctx context.Context, sku string, locationID uuid.UUID) (*models.StockLevel, error)
	LevelsBySKU(ctx context.Context, sku string) ([]models.StockLevel, error)
	LevelsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.StockLevel, error)
	TotalBySKU(ctx context.Context, sku string) (int64, error)
	Overview(ctx context.Context) ([]models.StockLevel, error)
}

type service struct {
	repo Repository
}

// NewService wires a stock level service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetLevel(ctx context.Context, sku string, locationID uuid.UUID) (*models.StockLevel, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	return s.repo.Get(ctx, sku, locationID)
}

func (s *service) LevelsBySKU(ctx context.Context, sku string) ([]models.StockLevel, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	return s.repo.LevelsBySKU(ctx, sku)
}

func (s *service) LevelsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.StockLevel, error) {
	if locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	return s.repo.LevelsByLocation(ctx, locationID)
}

func (s *service) TotalBySKU(ctx context.Context, sku string) (int64, error) {
	if strings.TrimSpace(sku) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	return s.repo.TotalBySKU(ctx, sku)
}

func (s *service) Overview(ctx context.Context) ([]models.StockLevel, error) {
	return s.repo.ListNonZero(ctx)
}
