package vendors

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// VendorDTO is the API shape of a vendor.
type VendorDTO struct {
	VendorCode   string           `json:"vendor_code"`
	VendorName   string           `json:"vendor_name"`
	RepName      *string          `json:"rep_name,omitempty"`
	RepEmail     *string          `json:"rep_email,omitempty"`
	RepPhone     *string          `json:"rep_phone,omitempty"`
	CommMethod   enums.CommMethod `json:"comm_method"`
	TargetMargin decimal.Decimal  `json:"target_margin"`
	IsActive     bool             `json:"is_active"`
	Notes        *string          `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// VendorDetailDTO pairs the vendor with its summary counts.
type VendorDetailDTO struct {
	VendorDTO
	ActiveItems    int64 `json:"active_items"`
	PendingChanges int64 `json:"pending_changes"`
}

// LinkGroupDTO is the API shape of a pricing link group.
type LinkGroupDTO struct {
	ID            int64  `json:"id"`
	VendorCode    string `json:"vendor_code"`
	LinkCode      string `json:"link_code"`
	LinkGroupName string `json:"link_group_name"`
	IsActive      bool   `json:"is_active"`
}

// FromModel maps the persisted vendor into a DTO.
func FromModel(m *models.Vendor) *VendorDTO {
	if m == nil {
		return nil
	}
	return &VendorDTO{
		VendorCode:   m.VendorCode,
		VendorName:   m.VendorName,
		RepName:      m.RepName,
		RepEmail:     m.RepEmail,
		RepPhone:     m.RepPhone,
		CommMethod:   m.CommMethod,
		TargetMargin: m.TargetMargin,
		IsActive:     m.IsActive,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// DetailFromModel maps a vendor plus its counts into the detail DTO.
func DetailFromModel(d *VendorDetail) *VendorDetailDTO {
	if d == nil || d.Vendor == nil {
		return nil
	}
	return &VendorDetailDTO{
		VendorDTO:      *FromModel(d.Vendor),
		ActiveItems:    d.ActiveItems,
		PendingChanges: d.PendingChanges,
	}
}

// LinkGroupFromModel maps the persisted link group into a DTO.
func LinkGroupFromModel(m *models.LinkGroup) *LinkGroupDTO {
	if m == nil {
		return nil
	}
	return &LinkGroupDTO{
		ID:            m.ID,
		VendorCode:    m.VendorCode,
		LinkCode:      m.LinkCode,
		LinkGroupName: m.LinkGroupName,
		IsActive:      m.IsActive,
	}
}

// LinkGroupsFromModels maps a slice of link groups.
func LinkGroupsFromModels(ms []models.LinkGroup) []LinkGroupDTO {
	dtos := make([]LinkGroupDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *LinkGroupFromModel(&ms[i]))
	}
	return dtos
}

// FromModels maps a slice of vendors.
func FromModels(ms []models.Vendor) []VendorDTO {
	dtos := make([]VendorDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}
