package bookings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, sku string) (*models.Booking, error)
	Save(ctx context.Context, booking *models.Booking) error
	DeleteBySKU(ctx context.Context, sku string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, sku string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// Save writes the booking for a SKU, inserting or overwriting in one statement.
func (r *repository) Save(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "note", "updated_at"}),
	}).Create(booking).Error
}

func (r *repository) DeleteBySKU(ctx context.Context, sku string) (int64, error) {
	result := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&models.Booking{})
	return result.RowsAffected, result.Error
}
