package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// ResultDTO is the API shape of one export run.
type ResultDTO struct {
	Empty bool   `json:"empty"`
	File  string `json:"file,omitempty"`
	Rows  int    `json:"rows"`
}

// LogEntryDTO is the API shape of one export log row.
type LogEntryDTO struct {
	ID            int64              `json:"id"`
	ExportDate    time.Time          `json:"export_date"`
	ExportType    enums.ExportType   `json:"export_type"`
	VendorCode    string             `json:"vendor_code"`
	UPC           string             `json:"upc"`
	BRDataItemNo  *string            `json:"brdata_item_no,omitempty"`
	NewRetail     *decimal.Decimal   `json:"new_retail,omitempty"`
	EffectiveDate *time.Time         `json:"effective_date,omitempty"`
	ExportStatus  enums.ExportStatus `json:"export_status"`
	ExportFile    *string            `json:"export_file,omitempty"`
	ErrorMessage  *string            `json:"error_message,omitempty"`
	ExportedBy    string             `json:"exported_by"`
	ConfirmedAt   *time.Time         `json:"confirmed_at,omitempty"`
}

// ResultFromService maps a run result into its API shape.
func ResultFromService(r *Result) *ResultDTO {
	if r == nil {
		return nil
	}
	return &ResultDTO{Empty: r.Empty, File: r.File, Rows: r.Rows}
}

// LogEntriesFromModels maps export log rows.
func LogEntriesFromModels(ms []models.ExportLogEntry) []LogEntryDTO {
	dtos := make([]LogEntryDTO, 0, len(ms))
	for i := range ms {
		m := &ms[i]
		dtos = append(dtos, LogEntryDTO{
			ID:            m.ID,
			ExportDate:    m.ExportDate,
			ExportType:    m.ExportType,
			VendorCode:    m.VendorCode,
			UPC:           m.UPC,
			BRDataItemNo:  m.BRDataItemNo,
			NewRetail:     m.NewRetail,
			EffectiveDate: m.EffectiveDate,
			ExportStatus:  m.ExportStatus,
			ExportFile:    m.ExportFile,
			ErrorMessage:  m.ErrorMessage,
			ExportedBy:    m.ExportedBy,
			ConfirmedAt:   m.ConfirmedAt,
		})
	}
	return dtos
}
