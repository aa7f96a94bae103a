package importer

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
)

// Repository performs the destructive bulk-load writes. Only the import
// command and its tests touch this.
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

// ClearAll wipes the price book in dependency order so the reload starts
// from an empty schema. Import logs are kept.
func (r *Repository) ClearAll(ctx context.Context) error {
	tables := []any{
		&models.PendingCostChange{},
		&models.ChangeHistory{},
		&models.Item{},
		&models.LinkGroup{},
		&models.Vendor{},
	}
	for _, table := range tables {
		if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateVendor inserts one vendor row.
func (r *Repository) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

// CreateLinkGroup inserts one link group row.
func (r *Repository) CreateLinkGroup(ctx context.Context, group *models.LinkGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// InsertItems bulk-inserts a batch, silently dropping rows that collide on
// (vendor_code, upc). Returns how many landed and how many were dropped.
func (r *Repository) InsertItems(ctx context.Context, items []models.Item) (added, skipped int, err error) {
	if len(items) == 0 {
		return 0, 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items)
	if result.Error != nil {
		return 0, 0, result.Error
	}
	added = int(result.RowsAffected)
	return added, len(items) - added, nil
}

// CreateImportLog records the outcome of one run.
func (r *Repository) CreateImportLog(ctx context.Context, entry *models.ImportLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
