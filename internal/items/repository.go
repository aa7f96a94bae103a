package items

import (
	"context"

	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
)

// Repository wires together item persistence.
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

// Create inserts a new item row.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves all item fields.
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID loads an item by surrogate id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByNaturalKey loads an item by (vendor_code, upc). The UPC must already
// be normalized.
func (r *Repository) FindByNaturalKey(ctx context.Context, vendorCode, upc string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		First(&item, "vendor_code = ? AND upc = ?", vendorCode, upc).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByVendor returns the vendor's items ordered for price book display:
// link group first, then sequence, then description.
func (r *Repository) ListByVendor(ctx context.Context, vendorCode string, activeOnly bool) ([]models.Item, error) {
	qb := r.db.WithContext(ctx).
		Preload("LinkGroup").
		Where("vendor_code = ?", vendorCode)
	if activeOnly {
		qb = qb.Where("is_active = ?", true)
	}
	var rows []models.Item
	err := qb.Order("link_group_id ASC").Order("seq ASC").Order("description ASC").
		Find(&rows).
		Error
	return rows, err
}

// Delete removes an item by id. Pending changes cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{}).Error
}
