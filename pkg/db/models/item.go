package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/pricing"
)

// Item is one price book line, identified by the natural key
// (vendor_code, upc). The UPC is always stored digits-only.
//
// Net case cost, unit cost, and margin are derived on every read and never
// stored; a stored copy would go stale after partial updates.
type Item struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement"`
	VendorCode      string           `gorm:"column:vendor_code;size:20;not null;uniqueIndex:ux_items_vendor_upc"`
	UPC             string           `gorm:"column:upc;size:14;not null;uniqueIndex:ux_items_vendor_upc"`
	Seq             *int             `gorm:"column:seq"`
	LinkGroupID     *int64           `gorm:"column:link_group_id"`
	BRDataItemNo    *string          `gorm:"column:brdata_item_no;size:20"`
	Description     string           `gorm:"column:description;not null"`
	CasePack        int              `gorm:"column:case_pack;not null;default:1"`
	SizeAlpha       *string          `gorm:"column:size_alpha;size:20"`
	CaseCost        decimal.Decimal  `gorm:"column:case_cost;type:numeric(10,2);not null;default:0"`
	Allowance       decimal.Decimal  `gorm:"column:allowance;type:numeric(10,2);not null;default:0"`
	PriceQty        int              `gorm:"column:price_qty;not null;default:1"`
	RetailPrice     *decimal.Decimal `gorm:"column:retail_price;type:numeric(10,2)"`
	LastCostChange  *time.Time       `gorm:"column:last_cost_change;type:date"`
	LastPriceChange *time.Time       `gorm:"column:last_price_change;type:date"`
	IsDisco         bool             `gorm:"column:is_disco;not null;default:false"`
	IsTPR           bool             `gorm:"column:is_tpr;not null;default:false"`
	Movement        *int             `gorm:"column:movement"`
	MovementUpdated *time.Time       `gorm:"column:movement_updated_at"`
	VendorComments  *string          `gorm:"column:vendor_comments"`
	Notes           *string          `gorm:"column:notes"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Vendor    *Vendor    `gorm:"foreignKey:VendorCode;references:VendorCode;constraint:OnDelete:RESTRICT"`
	LinkGroup *LinkGroup `gorm:"foreignKey:LinkGroupID;constraint:OnDelete:SET NULL"`
}

// NetCaseCost is case cost less the vendor allowance.
func (i *Item) NetCaseCost() decimal.Decimal {
	return i.CaseCost.Sub(i.Allowance)
}

// UnitCost is the net case cost divided by the case pack. Nil when the case
// pack is not positive.
func (i *Item) UnitCost() *decimal.Decimal {
	if i.CasePack <= 0 {
		return nil
	}
	unit := i.NetCaseCost().DivRound(decimal.NewFromInt(int64(i.CasePack)), 4)
	return &unit
}

// Margin is the current gross margin fraction, nil when the retail price or
// unit cost is undefined.
func (i *Item) Margin() *decimal.Decimal {
	if i.RetailPrice == nil {
		return nil
	}
	unit := i.UnitCost()
	if unit == nil {
		return nil
	}
	margin, ok := pricing.CalculateMargin(*i.RetailPrice, *unit)
	if !ok {
		return nil
	}
	return &margin
}
