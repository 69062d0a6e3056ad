package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	"github.com/northquay/stocktrail-backend/pkg/pagination"
)

// Repository persists immutable audit entries. There is no update or delete
// surface, the trail only grows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, params ListParams) ([]models.AuditEntry, *pagination.Cursor, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// ListParams filters the audit trail. Zero values mean "no filter".
type ListParams struct {
	SKU        string
	Kind       enums.MovementKind
	LocationID string
	Start      time.Time
	End        time.Time
	Limit      int
	Cursor     *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.AuditEntry, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if params.SKU != "" {
		query = query.Where("sku = ?", params.SKU)
	}
	if params.Kind != "" {
		query = query.Where("kind = ?", params.Kind)
	}
	if params.LocationID != "" {
		query = query.Where("from_location_id = ? OR to_location_id = ?", params.LocationID, params.LocationID)
	}
	if !params.Start.IsZero() {
		query = query.Where("created_at >= ?", params.Start)
	}
	if !params.End.IsZero() {
		query = query.Where("created_at <= ?", params.End)
	}
	if params.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var entries []models.AuditEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	if len(entries) > normalized {
		next := entries[normalized]
		entries = entries[:normalized]
		return entries, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return entries, nil, nil
}

func (r *repository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
