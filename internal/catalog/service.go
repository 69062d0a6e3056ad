package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/pkg/db"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the item catalogue. Deleting an item drops its stock levels
// and booking in the same transaction; audit entries keep the cached name.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.Item, error)
	GetBySKU(ctx context.Context, sku string) (*models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Update(ctx context.Context, sku string, input UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, sku string) error
	ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// CreateItemInput is the payload for a new catalogue entry.
type CreateItemInput struct {
	SKU        string
	Name       string
	PriceCents int64
	CostCents  *int64
	Unit       string
}

// UpdateItemInput carries optional field updates; nil means unchanged.
type UpdateItemInput struct {
	Name       *string
	PriceCents *int64
	CostCents  *int64
	Unit       *string
}

// ImportResult summarises a CSV import run.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type service struct {
	repo       Repository
	stock      ledger.Repository
	tx         txRunner
	maxCSVRows int
}

// NewService wires a catalogue service with the provided dependencies.
func NewService(repo Repository, stock ledger.Repository, tx txRunner, maxCSVRows int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, stock: stock, tx: tx, maxCSVRows: maxCSVRows}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	unit := enums.QuantityUnitDiscrete
	if input.Unit != "" {
		parsed, err := enums.ParseQuantityUnitStrict(input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		unit = parsed
	}

	item := &models.Item{
		ID:         uuid.New(),
		SKU:        sku,
		Name:       name,
		PriceCents: input.PriceCents,
		CostCents:  input.CostCents,
		Unit:       unit,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "items_sku_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already exists", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return item, nil
}

func (s *service) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	item, err := s.repo.GetBySKU(ctx, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context) ([]models.Item, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, sku string, input UpdateItemInput) (*models.Item, error) {
	item, err := s.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
		}
		item.Name = name
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		item.PriceCents = *input.PriceCents
	}
	if input.CostCents != nil {
		item.CostCents = input.CostCents
	}
	if input.Unit != nil {
		parsed, err := enums.ParseQuantityUnitStrict(*input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		item.Unit = parsed
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, sku string) error {
	if strings.TrimSpace(sku) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.stock.WithTx(tx).DeleteBySKU(ctx, sku); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock levels")
		}
		if err := tx.WithContext(ctx).Where("sku = ?", sku).Delete(&models.Booking{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking")
		}
		deleted, err := s.repo.WithTx(tx).DeleteBySKU(ctx, sku)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil
	})
}

// ImportCSV upserts every usable row in one transaction. A malformed file
// fails whole; rows without a SKU or name are counted as skipped.
func (s *service) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := ParseItemsCSV(r, s.maxCSVRows)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Skipped: parsed.Skipped}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, row := range parsed.Rows {
			item := &models.Item{
				ID:         uuid.New(),
				SKU:        row.SKU,
				Name:       row.Name,
				PriceCents: row.PriceCents,
				CostCents:  row.CostCents,
				Unit:       row.Unit,
			}
			created, err := repo.Upsert(ctx, item)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("import sku %q", row.SKU))
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
