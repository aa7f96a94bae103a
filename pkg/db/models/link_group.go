package models

import "time"

// LinkGroup is a vendor-scoped display grouping of items. It has no pricing
// effect; deleting one detaches its items rather than deleting them.
type LinkGroup struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	VendorCode    string    `gorm:"column:vendor_code;size:20;not null;uniqueIndex:ux_link_groups_vendor_link"`
	LinkCode      string    `gorm:"column:link_code;size:20;not null;uniqueIndex:ux_link_groups_vendor_link"`
	LinkGroupName string    `gorm:"column:link_group_name;not null"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Vendor *Vendor `gorm:"foreignKey:VendorCode;references:VendorCode;constraint:OnDelete:RESTRICT"`
}
