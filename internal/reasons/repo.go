package reasons

import (
	"context"

	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reason *models.Reason) error
	GetByCode(ctx context.Context, code string) (*models.Reason, error)
	List(ctx context.Context) ([]models.Reason, error)
	Delete(ctx context.Context, code string) (int64, error)
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

func (r *repository) Create(ctx context.Context, reason *models.Reason) error {
	return r.db.WithContext(ctx).Create(reason).Error
}

func (r *repository) GetByCode(ctx context.Context, code string) (*models.Reason, error) {
	var reason models.Reason
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&reason).Error; err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *repository) List(ctx context.Context) ([]models.Reason, error) {
	var reasons []models.Reason
	if err := r.db.WithContext(ctx).Order("label").Find(&reasons).Error; err != nil {
		return nil, err
	}
	return reasons, nil
}

// Delete removes a custom reason. Seeded reasons are excluded by the
// predicate so the shipped catalogue cannot be emptied.
func (r *repository) Delete(ctx context.Context, code string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("code = ? AND seeded = ?", code, false).
		Delete(&models.Reason{})
	return result.RowsAffected, result.Error
}
