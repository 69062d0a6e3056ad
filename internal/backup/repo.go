package backup

import (
	"context"

	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
)

// State is the complete persisted inventory state moved by a snapshot.
type State struct {
	Items      []models.Item
	Locations  []models.Location
	Levels     []models.StockLevel
	Bookings   []models.Booking
	AuditTrail []models.AuditEntry
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Dump(ctx context.Context) (*State, error)
	Replace(ctx context.Context, state *State) error
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

func (r *repository) Dump(ctx context.Context) (*State, error) {
	var state State
	q := r.db.WithContext(ctx)
	if err := q.Order("sku").Find(&state.Items).Error; err != nil {
		return nil, err
	}
	if err := q.Order("name").Find(&state.Locations).Error; err != nil {
		return nil, err
	}
	if err := q.Order("sku, location_id").Find(&state.Levels).Error; err != nil {
		return nil, err
	}
	if err := q.Order("sku").Find(&state.Bookings).Error; err != nil {
		return nil, err
	}
	if err := q.Order("id").Find(&state.AuditTrail).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// Replace wipes the inventory tables and loads the snapshot state. Callers
// run it inside a transaction so a half-loaded snapshot never becomes visible.
func (r *repository) Replace(ctx context.Context, state *State) error {
	q := r.db.WithContext(ctx)

	// Children before parents so foreign keys hold at every step.
	for _, model := range []any{
		&models.AuditEntry{}, &models.StockLevel{}, &models.Booking{},
		&models.Item{}, &models.Location{},
	} {
		if err := q.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}

	if len(state.Locations) > 0 {
		if err := q.Create(&state.Locations).Error; err != nil {
			return err
		}
	}
	if len(state.Items) > 0 {
		if err := q.Create(&state.Items).Error; err != nil {
			return err
		}
	}
	if len(state.Levels) > 0 {
		if err := q.Create(&state.Levels).Error; err != nil {
			return err
		}
	}
	if len(state.Bookings) > 0 {
		if err := q.Create(&state.Bookings).Error; err != nil {
			return err
		}
	}
	if len(state.AuditTrail) > 0 {
		if err := q.Create(&state.AuditTrail).Error; err != nil {
			return err
		}
	}
	return nil
}
