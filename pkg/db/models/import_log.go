package models

import (
	"time"

	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// ImportLog summarizes one bulk import run.
type ImportLog struct {
	ID               int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ImportDate       time.Time          `gorm:"column:import_date;not null"`
	VendorCode       *string            `gorm:"column:vendor_code;size:20"`
	Filename         string             `gorm:"column:filename;not null"`
	ImportSource     enums.ImportSource `gorm:"column:import_source;not null;default:EXCEL"`
	RecordsProcessed int                `gorm:"column:records_processed;not null;default:0"`
	RecordsUpdated   int                `gorm:"column:records_updated;not null;default:0"`
	RecordsAdded     int                `gorm:"column:records_added;not null;default:0"`
	RecordsSkipped   int                `gorm:"column:records_skipped;not null;default:0"`
	RecordsError     int                `gorm:"column:records_error;not null;default:0"`
	ImportStatus     enums.ImportStatus `gorm:"column:import_status;not null;default:PENDING"`
	ErrorLog         *string            `gorm:"column:error_log"`
	ImportedBy       string             `gorm:"column:imported_by;not null"`
}
