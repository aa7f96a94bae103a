package changes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// ChangeDTO is the API shape of a pending cost change. The derived cost
// delta figures are computed against the submission-time snapshot.
type ChangeDTO struct {
	ID               int64              `json:"id"`
	ItemID           int64              `json:"item_id"`
	VendorCode       string             `json:"vendor_code"`
	UPC              string             `json:"upc"`
	Description      *string            `json:"description,omitempty"`
	NewCaseCost      decimal.Decimal    `json:"new_case_cost"`
	NewAllowance     decimal.Decimal    `json:"new_allowance"`
	EffectiveDate    time.Time          `json:"effective_date"`
	SuggestedRetail  *decimal.Decimal   `json:"suggested_retail,omitempty"`
	ApprovedRetail   *decimal.Decimal   `json:"approved_retail,omitempty"`
	PrevCaseCost     decimal.Decimal    `json:"prev_case_cost"`
	PrevAllowance    decimal.Decimal    `json:"prev_allowance"`
	PrevRetail       *decimal.Decimal   `json:"prev_retail,omitempty"`
	PrevMargin       *decimal.Decimal   `json:"prev_margin,omitempty"`
	PrevCasePack     int                `json:"prev_case_pack"`
	CostChangeAmount *decimal.Decimal   `json:"cost_change_amount,omitempty"`
	CostChangePct    *decimal.Decimal   `json:"cost_change_pct,omitempty"`
	RetailOverridden bool               `json:"retail_overridden"`
	Status           enums.ChangeStatus `json:"status"`
	ChangeSource     enums.ChangeSource `json:"change_source"`
	SubmittedBy      string             `json:"submitted_by"`
	ApprovedBy       *string            `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time         `json:"approved_at,omitempty"`
	AppliedAt        *time.Time         `json:"applied_at,omitempty"`
	Notes            *string            `json:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// FromModel maps the persisted change into a DTO.
func FromModel(m *models.PendingCostChange) *ChangeDTO {
	if m == nil {
		return nil
	}
	dto := &ChangeDTO{
		ID:               m.ID,
		ItemID:           m.ItemID,
		VendorCode:       m.VendorCode,
		UPC:              m.UPC,
		NewCaseCost:      m.NewCaseCost,
		NewAllowance:     m.NewAllowance,
		EffectiveDate:    m.EffectiveDate,
		SuggestedRetail:  m.SuggestedRetail,
		ApprovedRetail:   m.ApprovedRetail,
		PrevCaseCost:     m.PrevCaseCost,
		PrevAllowance:    m.PrevAllowance,
		PrevRetail:       m.PrevRetail,
		PrevMargin:       m.PrevMargin,
		PrevCasePack:     m.PrevCasePack,
		CostChangeAmount: m.CostChangeAmount(),
		CostChangePct:    m.CostChangePct(),
		RetailOverridden: m.RetailIsOverridden(),
		Status:           m.Status,
		ChangeSource:     m.ChangeSource,
		SubmittedBy:      m.SubmittedBy,
		ApprovedBy:       m.ApprovedBy,
		ApprovedAt:       m.ApprovedAt,
		AppliedAt:        m.AppliedAt,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Item != nil {
		dto.Description = &m.Item.Description
	}
	return dto
}

// FromModels maps a slice of changes.
func FromModels(ms []models.PendingCostChange) []ChangeDTO {
	dtos := make([]ChangeDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
