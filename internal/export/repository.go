package export

import (
	"context"

	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
)

// Repository persists export log entries. Rows are append-only.
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

// Append inserts one export log row.
func (r *Repository) Append(ctx context.Context, entry *models.ExportLogEntry) (*models.ExportLogEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns export log entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.ExportLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.ExportLogEntry
	err := r.db.WithContext(ctx).
		Order("export_date DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}
