package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/pkg/db"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the location catalogue. Deleting a location drops its stock
// levels in the same transaction; the audit trail keeps the cached name.
type Service interface {
	Create(ctx context.Context, name string) (*models.Location, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*models.Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	stock ledger.Repository
	tx    txRunner
}

// NewService wires a locations service with the provided dependencies.
func NewService(repo Repository, stock ledger.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, stock: stock, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, name string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}

	location := &models.Location{ID: uuid.New(), Name: name}
	if err := s.repo.Create(ctx, location); err != nil {
		if db.IsUniqueViolation(err, "locations_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("location %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
	}
	return location, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	location, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	return location, nil
}

func (s *service) List(ctx context.Context) ([]models.Location, error) {
	return s.repo.List(ctx)
}

func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}

	updated, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		if db.IsUniqueViolation(err, "locations_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("location %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename location")
	}
	if updated == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.stock.WithTx(tx).DeleteByLocation(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock levels")
		}
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete location")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil
	})
}
