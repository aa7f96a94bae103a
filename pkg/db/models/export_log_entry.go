package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// ExportLogEntry records one attempted export of a change to the external
// retail data system. Append-only; not owned by any entity it references.
type ExportLogEntry struct {
	ID            int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ExportDate    time.Time          `gorm:"column:export_date;not null;index"`
	ExportType    enums.ExportType   `gorm:"column:export_type;not null"`
	VendorCode    string             `gorm:"column:vendor_code;size:20;not null"`
	UPC           string             `gorm:"column:upc;size:14;not null"`
	BRDataItemNo  *string            `gorm:"column:brdata_item_no;size:20"`
	NewRetail     *decimal.Decimal   `gorm:"column:new_retail;type:numeric(10,2)"`
	EffectiveDate *time.Time         `gorm:"column:effective_date;type:date"`
	ExportStatus  enums.ExportStatus `gorm:"column:export_status;not null;default:PENDING"`
	ExportFile    *string            `gorm:"column:export_file"`
	ErrorMessage  *string            `gorm:"column:error_message"`
	ExportedBy    string             `gorm:"column:exported_by;not null"`
	ConfirmedAt   *time.Time         `gorm:"column:confirmed_at"`
}
