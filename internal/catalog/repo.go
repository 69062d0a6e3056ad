package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
)

// Repository manages persistence for catalogue items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	GetBySKU(ctx context.Context, sku string) (*models.Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Save(ctx context.Context, item *models.Item) error
	Upsert(ctx context.Context, item *models.Item) (bool, error)
	DeleteBySKU(ctx context.Context, sku string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalogue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Upsert inserts the item or refreshes name, prices, and unit for an existing
// SKU. Returns true when a new row was created.
func (r *repository) Upsert(ctx context.Context, item *models.Item) (bool, error) {
	existing, err := r.GetBySKU(ctx, item.SKU)
	if err == nil {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
		result := r.db.WithContext(ctx).Model(&models.Item{}).
			Where("sku = ?", item.SKU).
			Updates(map[string]any{
				"name":        item.Name,
				"price_cents": item.PriceCents,
				"cost_cents":  item.CostCents,
				"unit":        item.Unit,
			})
		return false, result.Error
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price_cents", "cost_cents", "unit"}),
	}).Create(item).Error
	return err == nil, err
}

func (r *repository) DeleteBySKU(ctx context.Context, sku string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Item{}, "sku = ?", sku)
	return result.RowsAffected, result.Error
}
