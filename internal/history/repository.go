package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/pagination"
)

// Repository persists the append-only change history log. Rows are never
// updated or deleted.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Append inserts one audit record.
func (r *Repository) Append(ctx context.Context, record *models.ChangeHistory) (*models.ChangeHistory, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Page is one cursor page of history rows.
type Page struct {
	Records    []models.ChangeHistory
	NextCursor string
}

// ListByItem returns the history for one (vendor, upc) pair, newest first.
func (r *Repository) ListByItem(ctx context.Context, vendorCode, upc string, params pagination.Params) (*Page, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Where("vendor_code = ? AND upc = ?", vendorCode, upc)

	if cursor != nil {
		qb = qb.Where("(change_date < ?) OR (change_date = ? AND id < ?)", cursor.ChangeDate, cursor.ChangeDate, cursor.ID)
	}

	var rows []models.ChangeHistory
	err = qb.Order("change_date DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{ChangeDate: last.ChangeDate, ID: last.ID})
	}

	return &Page{Records: rows, NextCursor: nextCursor}, nil
}

// Recent returns the newest records across all items.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.ChangeHistory, error) {
	var rows []models.ChangeHistory
	err := r.db.WithContext(ctx).
		Order("change_date DESC").Order("id DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).
		Error
	return rows, err
}
