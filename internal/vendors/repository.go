package vendors

import (
	"context"

	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// Repository wires together vendor and link group persistence.
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

// CreateVendor inserts a new vendor row.
func (r *Repository) CreateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if err := r.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

// UpdateVendor saves all vendor fields.
func (r *Repository) UpdateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if err := r.db.WithContext(ctx).Save(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

// FindVendor loads a vendor by its code.
func (r *Repository) FindVendor(ctx context.Context, vendorCode string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "vendor_code = ?", vendorCode).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// ListVendors returns vendors ordered by code, optionally only active ones.
func (r *Repository) ListVendors(ctx context.Context, activeOnly bool) ([]models.Vendor, error) {
	qb := r.db.WithContext(ctx).Order("vendor_code ASC")
	if activeOnly {
		qb = qb.Where("is_active = ?", true)
	}
	var rows []models.Vendor
	err := qb.Find(&rows).Error
	return rows, err
}

// DeleteVendor removes the vendor row. Referential checks happen in the
// service before this is called.
func (r *Repository) DeleteVendor(ctx context.Context, vendorCode string) error {
	return r.db.WithContext(ctx).Where("vendor_code = ?", vendorCode).Delete(&models.Vendor{}).Error
}

// CountItems returns the number of items referencing the vendor.
func (r *Repository) CountItems(ctx context.Context, vendorCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("vendor_code = ?", vendorCode).
		Count(&count).
		Error
	return count, err
}

// CountLinkGroups returns the number of link groups referencing the vendor.
func (r *Repository) CountLinkGroups(ctx context.Context, vendorCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LinkGroup{}).
		Where("vendor_code = ?", vendorCode).
		Count(&count).
		Error
	return count, err
}

// CountActiveItems returns the number of active items for the vendor.
func (r *Repository) CountActiveItems(ctx context.Context, vendorCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("vendor_code = ? AND is_active = ?", vendorCode, true).
		Count(&count).
		Error
	return count, err
}

// CountPendingChanges returns the number of open cost changes for the vendor.
func (r *Repository) CountPendingChanges(ctx context.Context, vendorCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingCostChange{}).
		Where("vendor_code = ? AND status = ?", vendorCode, enums.ChangeStatusPending).
		Count(&count).
		Error
	return count, err
}

// CreateLinkGroup inserts a new link group row.
func (r *Repository) CreateLinkGroup(ctx context.Context, group *models.LinkGroup) (*models.LinkGroup, error) {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateLinkGroup saves all link group fields.
func (r *Repository) UpdateLinkGroup(ctx context.Context, group *models.LinkGroup) (*models.LinkGroup, error) {
	if err := r.db.WithContext(ctx).Save(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// FindLinkGroup loads a link group by id.
func (r *Repository) FindLinkGroup(ctx context.Context, id int64) (*models.LinkGroup, error) {
	var group models.LinkGroup
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListLinkGroups returns the vendor's link groups ordered by code.
func (r *Repository) ListLinkGroups(ctx context.Context, vendorCode string) ([]models.LinkGroup, error) {
	var rows []models.LinkGroup
	err := r.db.WithContext(ctx).
		Where("vendor_code = ?", vendorCode).
		Order("link_code ASC").
		Find(&rows).
		Error
	return rows, err
}

// DetachItems clears the link group reference on every item in the group.
func (r *Repository) DetachItems(ctx context.Context, linkGroupID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("link_group_id = ?", linkGroupID).
		Update("link_group_id", nil).
		Error
}

// DeleteLinkGroup removes the link group row.
func (r *Repository) DeleteLinkGroup(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LinkGroup{}).Error
}
