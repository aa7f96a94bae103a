package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// PendingCostChange is one proposed vendor cost change in flight. The prev_*
// columns snapshot the item at submission time so audit figures stay stable
// even if the live item is edited afterwards; that includes the case pack,
// which percentage-change math divides by.
//
// At most one PENDING row may exist per item, enforced by a partial unique
// index on (item_id) WHERE status = 'PENDING'.
type PendingCostChange struct {
	ID              int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID          int64              `gorm:"column:item_id;not null;index"`
	VendorCode      string             `gorm:"column:vendor_code;size:20;not null;index"`
	UPC             string             `gorm:"column:upc;size:14;not null"`
	NewCaseCost     decimal.Decimal    `gorm:"column:new_case_cost;type:numeric(10,2);not null"`
	NewAllowance    decimal.Decimal    `gorm:"column:new_allowance;type:numeric(10,2);not null;default:0"`
	EffectiveDate   time.Time          `gorm:"column:effective_date;type:date;not null"`
	SuggestedRetail *decimal.Decimal   `gorm:"column:suggested_retail;type:numeric(10,2)"`
	ApprovedRetail  *decimal.Decimal   `gorm:"column:approved_retail;type:numeric(10,2)"`
	PrevCaseCost    decimal.Decimal    `gorm:"column:prev_case_cost;type:numeric(10,2);not null"`
	PrevAllowance   decimal.Decimal    `gorm:"column:prev_allowance;type:numeric(10,2);not null"`
	PrevRetail      *decimal.Decimal   `gorm:"column:prev_retail;type:numeric(10,2)"`
	PrevMargin      *decimal.Decimal   `gorm:"column:prev_margin;type:numeric(5,4)"`
	PrevCasePack    int                `gorm:"column:prev_case_pack;not null;default:1"`
	Status          enums.ChangeStatus `gorm:"column:status;not null;default:PENDING;index"`
	ChangeSource    enums.ChangeSource `gorm:"column:change_source;not null;default:MANUAL"`
	SubmittedBy     string             `gorm:"column:submitted_by;not null"`
	ApprovedBy      *string            `gorm:"column:approved_by"`
	ApprovedAt      *time.Time         `gorm:"column:approved_at"`
	AppliedAt       *time.Time         `gorm:"column:applied_at"`
	Notes           *string            `gorm:"column:notes"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// NewNetCaseCost is the proposed case cost less the proposed allowance.
func (p *PendingCostChange) NewNetCaseCost() decimal.Decimal {
	return p.NewCaseCost.Sub(p.NewAllowance)
}

// NewUnitCost is the proposed per-unit cost against the given live case
// pack. Nil when the case pack is not positive.
func (p *PendingCostChange) NewUnitCost(casePack int) *decimal.Decimal {
	if casePack <= 0 {
		return nil
	}
	unit := p.NewNetCaseCost().DivRound(decimal.NewFromInt(int64(casePack)), 4)
	return &unit
}

func (p *PendingCostChange) prevUnitCost() *decimal.Decimal {
	if p.PrevCasePack <= 0 {
		return nil
	}
	unit := p.PrevCaseCost.Sub(p.PrevAllowance).DivRound(decimal.NewFromInt(int64(p.PrevCasePack)), 4)
	return &unit
}

// CostChangeAmount is the per-unit cost delta, computed against the case
// pack snapshotted at submission time. Nil when the snapshot pack is not
// positive.
func (p *PendingCostChange) CostChangeAmount() *decimal.Decimal {
	prev := p.prevUnitCost()
	next := p.NewUnitCost(p.PrevCasePack)
	if prev == nil || next == nil {
		return nil
	}
	delta := next.Sub(*prev)
	return &delta
}

// CostChangePct is the per-unit cost delta as a fraction of the prior unit
// cost. Nil when the delta or the prior unit cost is undefined or zero.
func (p *PendingCostChange) CostChangePct() *decimal.Decimal {
	delta := p.CostChangeAmount()
	prev := p.prevUnitCost()
	if delta == nil || prev == nil || prev.IsZero() {
		return nil
	}
	pct := delta.DivRound(*prev, 4)
	return &pct
}

// RetailIsOverridden reports whether the buyer-approved retail differs from
// the system suggestion.
func (p *PendingCostChange) RetailIsOverridden() bool {
	if p.ApprovedRetail == nil || p.SuggestedRetail == nil {
		return false
	}
	return !p.ApprovedRetail.Equal(*p.SuggestedRetail)
}
