package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

// Vendor is a supplier identified by its short code. The code is the natural
// primary key; items and link groups reference it with restrict-on-delete.
type Vendor struct {
	VendorCode   string           `gorm:"column:vendor_code;size:20;primaryKey"`
	VendorName   string           `gorm:"column:vendor_name;not null"`
	RepName      *string          `gorm:"column:rep_name"`
	RepEmail     *string          `gorm:"column:rep_email"`
	RepPhone     *string          `gorm:"column:rep_phone"`
	CommMethod   enums.CommMethod `gorm:"column:comm_method;not null;default:EXCEL"`
	TargetMargin decimal.Decimal  `gorm:"column:target_margin;type:numeric(5,4);not null;default:0.2800"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	Notes        *string          `gorm:"column:notes"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
