package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// ChangeHistory is the append-only audit log. It deliberately carries no
// foreign keys: rows identify the item by plain vendor code and UPC strings
// and must outlive deletion of the item, the vendor, and the originating
// pending change. PendingCostChangeID is a soft reference, identifier only.
type ChangeHistory struct {
	ID                  int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	VendorCode          string                   `gorm:"column:vendor_code;size:20;not null;index:ix_change_history_vendor_upc"`
	UPC                 string                   `gorm:"column:upc;size:14;not null;index:ix_change_history_vendor_upc"`
	ChangeDate          time.Time                `gorm:"column:change_date;not null;index"`
	ChangeType          enums.ChangeType         `gorm:"column:change_type;not null"`
	OldCaseCost         *decimal.Decimal         `gorm:"column:old_case_cost;type:numeric(10,2)"`
	NewCaseCost         *decimal.Decimal         `gorm:"column:new_case_cost;type:numeric(10,2)"`
	OldAllowance        *decimal.Decimal         `gorm:"column:old_allowance;type:numeric(10,2)"`
	NewAllowance        *decimal.Decimal         `gorm:"column:new_allowance;type:numeric(10,2)"`
	OldRetail           *decimal.Decimal         `gorm:"column:old_retail;type:numeric(10,2)"`
	NewRetail           *decimal.Decimal         `gorm:"column:new_retail;type:numeric(10,2)"`
	OldMargin           *decimal.Decimal         `gorm:"column:old_margin;type:numeric(5,4)"`
	NewMargin           *decimal.Decimal         `gorm:"column:new_margin;type:numeric(5,4)"`
	ChangedBy           string                   `gorm:"column:changed_by;not null"`
	ChangeSource        enums.ChangeSource       `gorm:"column:change_source;not null;default:MANUAL"`
	PendingCostChangeID *int64                   `gorm:"column:pending_cost_change_id"`
	PriceChangeReason   *enums.PriceChangeReason `gorm:"column:price_change_reason"`
	Notes               *string                  `gorm:"column:notes"`
}

func (ChangeHistory) TableName() string {
	return "change_history"
}
