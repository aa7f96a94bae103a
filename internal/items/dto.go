package items

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
)

// ItemDTO is the API shape of a price book line. Net case cost, unit cost,
// and margin are derived at serialization time from the live columns.
type ItemDTO struct {
	ID              int64            `json:"id"`
	VendorCode      string           `json:"vendor_code"`
	UPC             string           `json:"upc"`
	Seq             *int             `json:"seq,omitempty"`
	LinkGroupID     *int64           `json:"link_group_id,omitempty"`
	LinkCode        *string          `json:"link_code,omitempty"`
	BRDataItemNo    *string          `json:"brdata_item_no,omitempty"`
	Description     string           `json:"description"`
	CasePack        int              `json:"case_pack"`
	SizeAlpha       *string          `json:"size_alpha,omitempty"`
	CaseCost        decimal.Decimal  `json:"case_cost"`
	Allowance       decimal.Decimal  `json:"allowance"`
	NetCaseCost     decimal.Decimal  `json:"net_case_cost"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	PriceQty        int              `json:"price_qty"`
	RetailPrice     *decimal.Decimal `json:"retail_price,omitempty"`
	Margin          *decimal.Decimal `json:"margin,omitempty"`
	LastCostChange  *time.Time       `json:"last_cost_change,omitempty"`
	LastPriceChange *time.Time       `json:"last_price_change,omitempty"`
	IsDisco         bool             `json:"is_disco"`
	IsTPR           bool             `json:"is_tpr"`
	Movement        *int             `json:"movement,omitempty"`
	MovementUpdated *time.Time       `json:"movement_updated_at,omitempty"`
	VendorComments  *string          `json:"vendor_comments,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PriceBookGroupDTO is one display section of a vendor's price book.
type PriceBookGroupDTO struct {
	LinkGroupID   *int64    `json:"link_group_id,omitempty"`
	LinkCode      string    `json:"link_code,omitempty"`
	LinkGroupName string    `json:"link_group_name,omitempty"`
	Items         []ItemDTO `json:"items"`
}

// FromModel maps the persisted item into a DTO.
func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	dto := &ItemDTO{
		ID:              m.ID,
		VendorCode:      m.VendorCode,
		UPC:             m.UPC,
		Seq:             m.Seq,
		LinkGroupID:     m.LinkGroupID,
		BRDataItemNo:    m.BRDataItemNo,
		Description:     m.Description,
		CasePack:        m.CasePack,
		SizeAlpha:       m.SizeAlpha,
		CaseCost:        m.CaseCost,
		Allowance:       m.Allowance,
		NetCaseCost:     m.NetCaseCost(),
		UnitCost:        m.UnitCost(),
		PriceQty:        m.PriceQty,
		RetailPrice:     m.RetailPrice,
		Margin:          m.Margin(),
		LastCostChange:  m.LastCostChange,
		LastPriceChange: m.LastPriceChange,
		IsDisco:         m.IsDisco,
		IsTPR:           m.IsTPR,
		Movement:        m.Movement,
		MovementUpdated: m.MovementUpdated,
		VendorComments:  m.VendorComments,
		Notes:           m.Notes,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.LinkGroup != nil {
		dto.LinkCode = &m.LinkGroup.LinkCode
	}
	return dto
}

// FromModels maps a slice of items.
func FromModels(ms []models.Item) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// GroupsFromService maps price book groups into their API shape.
func GroupsFromService(groups []PriceBookGroup) []PriceBookGroupDTO {
	dtos := make([]PriceBookGroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, PriceBookGroupDTO{
			LinkGroupID:   g.LinkGroupID,
			LinkCode:      g.LinkCode,
			LinkGroupName: g.LinkGroupName,
			Items:         FromModels(g.Items),
		})
	}
	return dtos
}
