package changes

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// Repository wires together pending cost change persistence.
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

// Create inserts a new pending cost change row.
func (r *Repository) Create(ctx context.Context, change *models.PendingCostChange) (*models.PendingCostChange, error) {
	if err := r.db.WithContext(ctx).Create(change).Error; err != nil {
		return nil, err
	}
	return change, nil
}

// Save persists all fields of an existing row.
func (r *Repository) Save(ctx context.Context, change *models.PendingCostChange) (*models.PendingCostChange, error) {
	if err := r.db.WithContext(ctx).Save(change).Error; err != nil {
		return nil, err
	}
	return change, nil
}

// FindByID loads a change by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.PendingCostChange, error) {
	var change models.PendingCostChange
	if err := r.db.WithContext(ctx).First(&change, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &change, nil
}

// FindOpenByItem returns the item's PENDING change, if one exists.
func (r *Repository) FindOpenByItem(ctx context.Context, itemID int64) (*models.PendingCostChange, error) {
	var change models.PendingCostChange
	err := r.db.WithContext(ctx).
		First(&change, "item_id = ? AND status = ?", itemID, enums.ChangeStatusPending).
		Error
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// ListByStatus returns changes in the given status, newest first, optionally
// scoped to a vendor.
func (r *Repository) ListByStatus(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error) {
	qb := r.db.WithContext(ctx).Where("status = ?", status)
	if vendorCode != "" {
		qb = qb.Where("vendor_code = ?", vendorCode)
	}
	var rows []models.PendingCostChange
	err := qb.Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListDue returns APPROVED changes whose effective date has arrived, with
// the item preloaded for export fields.
func (r *Repository) ListDue(ctx context.Context, asOf time.Time) ([]models.PendingCostChange, error) {
	var rows []models.PendingCostChange
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("status = ? AND effective_date <= ?", enums.ChangeStatusApproved, asOf).
		Order("vendor_code ASC").Order("upc ASC").
		Find(&rows).
		Error
	return rows, err
}

// CountByStatus returns the number of changes in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.ChangeStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingCostChange{}).
		Where("status = ?", status).
		Count(&count).
		Error
	return count, err
}

// CountDue returns the number of APPROVED changes due as of the given date.
func (r *Repository) CountDue(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingCostChange{}).
		Where("status = ? AND effective_date <= ?", enums.ChangeStatusApproved, asOf).
		Count(&count).
		Error
	return count, err
}
