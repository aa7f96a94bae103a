package history

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// RecordDTO is the API shape of one audit row.
type RecordDTO struct {
	ID                  int64                    `json:"id"`
	VendorCode          string                   `json:"vendor_code"`
	UPC                 string                   `json:"upc"`
	ChangeDate          time.Time                `json:"change_date"`
	ChangeType          enums.ChangeType         `json:"change_type"`
	OldCaseCost         *decimal.Decimal         `json:"old_case_cost,omitempty"`
	NewCaseCost         *decimal.Decimal         `json:"new_case_cost,omitempty"`
	OldAllowance        *decimal.Decimal         `json:"old_allowance,omitempty"`
	NewAllowance        *decimal.Decimal         `json:"new_allowance,omitempty"`
	OldRetail           *decimal.Decimal         `json:"old_retail,omitempty"`
	NewRetail           *decimal.Decimal         `json:"new_retail,omitempty"`
	OldMargin           *decimal.Decimal         `json:"old_margin,omitempty"`
	NewMargin           *decimal.Decimal         `json:"new_margin,omitempty"`
	ChangedBy           string                   `json:"changed_by"`
	ChangeSource        enums.ChangeSource       `json:"change_source"`
	PendingCostChangeID *int64                   `json:"pending_cost_change_id,omitempty"`
	PriceChangeReason   *enums.PriceChangeReason `json:"price_change_reason,omitempty"`
	Notes               *string                  `json:"notes,omitempty"`
}

// PageDTO is a cursor page of audit rows.
type PageDTO struct {
	Records    []RecordDTO `json:"records"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// FromModel maps one audit row into a DTO.
func FromModel(m *models.ChangeHistory) *RecordDTO {
	if m == nil {
		return nil
	}
	return &RecordDTO{
		ID:                  m.ID,
		VendorCode:          m.VendorCode,
		UPC:                 m.UPC,
		ChangeDate:          m.ChangeDate,
		ChangeType:          m.ChangeType,
		OldCaseCost:         m.OldCaseCost,
		NewCaseCost:         m.NewCaseCost,
		OldAllowance:        m.OldAllowance,
		NewAllowance:        m.NewAllowance,
		OldRetail:           m.OldRetail,
		NewRetail:           m.NewRetail,
		OldMargin:           m.OldMargin,
		NewMargin:           m.NewMargin,
		ChangedBy:           m.ChangedBy,
		ChangeSource:        m.ChangeSource,
		PendingCostChangeID: m.PendingCostChangeID,
		PriceChangeReason:   m.PriceChangeReason,
		Notes:               m.Notes,
	}
}

// FromModels maps a slice of audit rows.
func FromModels(ms []models.ChangeHistory) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// PageFromRepo maps a repository page into its API shape.
func PageFromRepo(p *Page) *PageDTO {
	if p == nil {
		return nil
	}
	return &PageDTO{
		Records:    FromModels(p.Records),
		NextCursor: p.NextCursor,
	}
}
