package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

// Repository manages the on-hand quantity per SKU and location. All quantity
// changes go through ApplyDelta or SetQuantity: the delta guard lives inside
// a single statement and the overwrite is compare-and-swap, so no
// interleaving can drive a balance negative or lose a concurrent change.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, sku string, locationID uuid.UUID) (*models.StockLevel, error)
	ApplyDelta(ctx context.Context, sku string, locationID uuid.UUID, delta int64) (int64, error)
	SetQuantity(ctx context.Context, sku string, locationID uuid.UUID, quantity int64) (int64, error)
	TotalBySKU(ctx context.Context, sku string) (int64, error)
	LevelsBySKU(ctx context.Context, sku string) ([]models.StockLevel, error)
	LevelsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.StockLevel, error)
	ListNonZero(ctx context.Context) ([]models.StockLevel, error)
	DeleteBySKU(ctx context.Context, sku string) error
	DeleteByLocation(ctx context.Context, locationID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock level repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, sku string, locationID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("sku = ? AND location_id = ?", sku, locationID).
		First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.StockLevel{SKU: sku, LocationID: locationID, Quantity: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// ApplyDelta adds delta to the stored quantity and returns the new balance.
// The guard lives inside the statement, so two concurrent deductions can
// never drive the balance below zero regardless of interleaving.
func (r *repository) ApplyDelta(ctx context.Context, sku string, locationID uuid.UUID, delta int64) (int64, error) {
	if delta > 0 {
		var row struct{ Quantity int64 }
		err := r.db.WithContext(ctx).Raw(`
INSERT INTO stock_levels (sku, location_id, quantity, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (sku, location_id)
DO UPDATE SET quantity = stock_levels.quantity + ?, updated_at = CURRENT_TIMESTAMP
RETURNING quantity`, sku, locationID, delta, delta).Scan(&row).Error
		if err != nil {
			return 0, err
		}
		return row.Quantity, nil
	}

	var row struct{ Quantity int64 }
	result := r.db.WithContext(ctx).Raw(`
UPDATE stock_levels
SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
WHERE sku = ? AND location_id = ? AND quantity + ? >= 0
RETURNING quantity`, delta, sku, locationID, delta).Scan(&row)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		available, _, err := r.currentQuantity(ctx, sku, locationID)
		if err != nil {
			return 0, err
		}
		return 0, pkgerrors.InsufficientStock(int(available), int(-delta))
	}
	return row.Quantity, nil
}

// SetQuantity overwrites the stored quantity and returns the balance it
// replaced. The overwrite only applies while the row still holds the balance
// that was read; a concurrent delta in between forces a retry, so the
// returned previous value is exactly what the write replaced.
func (r *repository) SetQuantity(ctx context.Context, sku string, locationID uuid.UUID, quantity int64) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		previous, exists, err := r.currentQuantity(ctx, sku, locationID)
		if err != nil {
			return 0, err
		}

		if !exists {
			result := r.db.WithContext(ctx).Exec(`
INSERT INTO stock_levels (sku, location_id, quantity, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (sku, location_id) DO NOTHING`, sku, locationID, quantity)
			if result.Error != nil {
				return 0, result.Error
			}
			if result.RowsAffected == 1 {
				return 0, nil
			}
			// Row appeared since the read.
			continue
		}

		result := r.db.WithContext(ctx).Exec(`
UPDATE stock_levels
SET quantity = ?, updated_at = CURRENT_TIMESTAMP
WHERE sku = ? AND location_id = ? AND quantity = ?`,
			quantity, sku, locationID, previous)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 1 {
			return previous, nil
		}
	}
}

func (r *repository) currentQuantity(ctx context.Context, sku string, locationID uuid.UUID) (int64, bool, error) {
	var row struct{ Quantity int64 }
	result := r.db.WithContext(ctx).Raw(
		`SELECT quantity FROM stock_levels WHERE sku = ? AND location_id = ?`,
		sku, locationID).Scan(&row)
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	return row.Quantity, true, nil
}

func (r *repository) TotalBySKU(ctx context.Context, sku string) (int64, error) {
	var row struct{ Total int64 }
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(quantity), 0) AS total FROM stock_levels WHERE sku = ?`,
		sku).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Total, nil
}

func (r *repository) LevelsBySKU(ctx context.Context, sku string) ([]models.StockLevel, error) {
	var levels []models.StockLevel
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("location_id ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) LevelsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.StockLevel, error) {
	var levels []models.StockLevel
	if err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("sku ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) ListNonZero(ctx context.Context) ([]models.StockLevel, error) {
	var levels []models.StockLevel
	if err := r.db.WithContext(ctx).
		Where("quantity > 0").
		Order("sku ASC, location_id ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) DeleteBySKU(ctx context.Context, sku string) error {
	return r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Delete(&models.StockLevel{}).Error
}

func (r *repository) DeleteByLocation(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Delete(&models.StockLevel{}).Error
}
