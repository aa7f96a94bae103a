package items

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/internal/vendors"
	"github.com/costlessmarkets/pricebook-backend/pkg/db"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
)

func setupItemsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS vendors (
  vendor_code TEXT PRIMARY KEY,
  vendor_name TEXT NOT NULL,
  rep_name TEXT,
  rep_email TEXT,
  rep_phone TEXT,
  comm_method TEXT NOT NULL DEFAULT 'EXCEL',
  target_margin NUMERIC NOT NULL DEFAULT 0.28,
  is_active INTEGER NOT NULL DEFAULT 1,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS link_groups (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_code TEXT NOT NULL,
  link_code TEXT NOT NULL,
  link_group_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (vendor_code, link_code)
);`, `
CREATE TABLE IF NOT EXISTS items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_code TEXT NOT NULL,
  upc TEXT NOT NULL,
  seq INTEGER,
  link_group_id INTEGER,
  brdata_item_no TEXT,
  description TEXT NOT NULL,
  case_pack INTEGER NOT NULL DEFAULT 1,
  size_alpha TEXT,
  case_cost NUMERIC NOT NULL DEFAULT 0,
  allowance NUMERIC NOT NULL DEFAULT 0,
  price_qty INTEGER NOT NULL DEFAULT 1,
  retail_price NUMERIC,
  last_cost_change DATE,
  last_price_change DATE,
  is_disco INTEGER NOT NULL DEFAULT 0,
  is_tpr INTEGER NOT NULL DEFAULT 0,
  movement INTEGER,
  movement_updated_at DATETIME,
  vendor_comments TEXT,
  notes TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (vendor_code, upc)
);`, `
CREATE TABLE IF NOT EXISTS change_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_code TEXT NOT NULL,
  upc TEXT NOT NULL,
  change_date DATETIME NOT NULL,
  change_type TEXT NOT NULL,
  old_case_cost NUMERIC,
  new_case_cost NUMERIC,
  old_allowance NUMERIC,
  new_allowance NUMERIC,
  old_retail NUMERIC,
  new_retail NUMERIC,
  old_margin NUMERIC,
  new_margin NUMERIC,
  changed_by TEXT NOT NULL,
  change_source TEXT NOT NULL DEFAULT 'MANUAL',
  pending_cost_change_id INTEGER,
  price_change_reason TEXT,
  notes TEXT
);`}
	for _, stmt := range stmts {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newItemsService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	client, err := db.NewWithConn(conn)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), history.NewRepository(conn), vendors.NewRepository(conn), client)
	require.NoError(t, err)
	return svc
}

func seedTestVendor(t *testing.T, conn *gorm.DB, code string) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		VendorCode:   code,
		VendorName:   code + " Distributing",
		CommMethod:   enums.CommMethodExcel,
		TargetMargin: decimal.NewFromFloat(0.28),
		IsActive:     true,
	}
	require.NoError(t, conn.Create(vendor).Error)
	return vendor
}

func TestCreateItemNormalizesUPC(t *testing.T) {
	conn := setupItemsTestDB(t)
	svc := newItemsService(t, conn)
	ctx := context.Background()

	seedTestVendor(t, conn, "CRTV")

	created, err := svc.Create(ctx, CreateItemInput{
		VendorCode:  "crtv",
		UPC:         "0-12345-67890-5",
		Description: "Cola 12pk",
		CasePack:    4,
		CaseCost:    decimal.NewFromFloat(10.00),
		Allowance:   decimal.Zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "CRTV", created.VendorCode)
	assert.Equal(t, "012345678905", created.UPC)
	assert.Equal(t, 1, created.PriceQty)
	assert.True(t, created.IsActive)
}

func TestCreateItemValidation(t *testing.T) {
	conn := setupItemsTestDB(t)
	svc := newItemsService(t, conn)
	ctx := context.Background()

	seedTestVendor(t, conn, "VALV")

	tests := []struct {
		name  string
		input CreateItemInput
	}{
		{
			name: "bad upc length",
			input: CreateItemInput{
				VendorCode: "VALV", UPC: "12345", Description: "Short", CasePack: 1,
				CaseCost: decimal.NewFromFloat(1.00),
			},
		},
		{
			name: "zero case pack",
			input: CreateItemInput{
				VendorCode: "VALV", UPC: "012345678905", Description: "Zero pack", CasePack: 0,
				CaseCost: decimal.NewFromFloat(1.00),
			},
		},
		{
			name: "negative case cost",
			input: CreateItemInput{
				VendorCode: "VALV", UPC: "012345678905", Description: "Negative", CasePack: 1,
				CaseCost: decimal.NewFromFloat(-1.00),
			},
		},
		{
			name: "missing description",
			input: CreateItemInput{
				VendorCode: "VALV", UPC: "012345678905", Description: "  ", CasePack: 1,
				CaseCost: decimal.NewFromFloat(1.00),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestChangeRetailWritesPriceOnlyHistory(t *testing.T) {
	conn := setupItemsTestDB(t)
	svc := newItemsService(t, conn)
	ctx := context.Background()

	seedTestVendor(t, conn, "PRCV")
	oldRetail := decimal.NewFromFloat(3.48)
	item := &models.Item{
		VendorCode:  "PRCV",
		UPC:         "012345678905",
		Description: "Cola 12pk",
		CasePack:    4,
		CaseCost:    decimal.NewFromFloat(10.00),
		Allowance:   decimal.Zero,
		PriceQty:    1,
		RetailPrice: &oldRetail,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(item).Error)

	newRetail := decimal.NewFromFloat(3.98)
	updated, err := svc.ChangeRetail(ctx, "PRCV", "012345678905", ChangeRetailInput{
		NewRetail: newRetail,
		Reason:    enums.PriceChangeReasonCompetitive,
		User:      "jdoe",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.RetailPrice)
	assert.True(t, updated.RetailPrice.Equal(newRetail))
	require.NotNil(t, updated.LastPriceChange)

	var records []models.ChangeHistory
	require.NoError(t, conn.Where("vendor_code = ? AND upc = ?", "PRCV", "012345678905").Find(&records).Error)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, enums.ChangeTypePriceOnly, rec.ChangeType)
	require.NotNil(t, rec.OldRetail)
	assert.True(t, rec.OldRetail.Equal(oldRetail))
	require.NotNil(t, rec.NewRetail)
	assert.True(t, rec.NewRetail.Equal(newRetail))
	require.NotNil(t, rec.PriceChangeReason)
	assert.Equal(t, enums.PriceChangeReasonCompetitive, *rec.PriceChangeReason)
	assert.Nil(t, rec.PendingCostChangeID)
	assert.Equal(t, "jdoe", rec.ChangedBy)

	// unit cost 2.50, new retail 3.98 -> margin 0.3719
	require.NotNil(t, rec.NewMargin)
	assert.True(t, rec.NewMargin.Equal(decimal.NewFromFloat(0.3719)), "got %s", rec.NewMargin)
}

func TestChangeRetailValidation(t *testing.T) {
	conn := setupItemsTestDB(t)
	svc := newItemsService(t, conn)
	ctx := context.Background()

	seedTestVendor(t, conn, "PRCX")
	item := &models.Item{
		VendorCode:  "PRCX",
		UPC:         "111111111111",
		Description: "Chips",
		CasePack:    1,
		CaseCost:    decimal.NewFromFloat(1.00),
		PriceQty:    1,
		IsActive:    true,
	}
	require.NoError(t, conn.Create(item).Error)

	_, err := svc.ChangeRetail(ctx, "PRCX", "111111111111", ChangeRetailInput{
		NewRetail: decimal.NewFromFloat(1.98),
		Reason:    "BOGUS",
		User:      "jdoe",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.ChangeRetail(ctx, "PRCX", "111111111111", ChangeRetailInput{
		NewRetail: decimal.NewFromFloat(1.98),
		Reason:    enums.PriceChangeReasonMarket,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	// nothing written
	var count int64
	require.NoError(t, conn.Model(&models.ChangeHistory{}).Where("vendor_code = ?", "PRCX").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPriceBookGroupsItems(t *testing.T) {
	conn := setupItemsTestDB(t)
	svc := newItemsService(t, conn)
	ctx := context.Background()

	seedTestVendor(t, conn, "BOOK")
	group := &models.LinkGroup{VendorCode: "BOOK", LinkCode: "SODA", LinkGroupName: "Soft Drinks", IsActive: true}
	require.NoError(t, conn.Create(group).Error)

	one := 1
	two := 2
	grouped1 := &models.Item{VendorCode: "BOOK", UPC: "222222222222", Description: "Cola", CasePack: 1, PriceQty: 1, Seq: &two, LinkGroupID: &group.ID, IsActive: true}
	grouped2 := &models.Item{VendorCode: "BOOK", UPC: "333333333333", Description: "Root Beer", CasePack: 1, PriceQty: 1, Seq: &one, LinkGroupID: &group.ID, IsActive: true}
	loose := &models.Item{VendorCode: "BOOK", UPC: "444444444444", Description: "Napkins", CasePack: 1, PriceQty: 1, IsActive: true}
	inactive := &models.Item{VendorCode: "BOOK", UPC: "555555555555", Description: "Old SKU", CasePack: 1, PriceQty: 1, IsActive: false}
	for _, it := range []*models.Item{grouped1, grouped2, loose, inactive} {
		require.NoError(t, conn.Create(it).Error)
	}

	groups, err := svc.PriceBook(ctx, "BOOK")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "SODA", groups[0].LinkCode)
	require.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Root Beer", groups[0].Items[0].Description) // seq 1 first

	assert.Nil(t, groups[1].LinkGroupID)
	require.Len(t, groups[1].Items, 1)
	assert.Equal(t, "Napkins", groups[1].Items[0].Description)
}

func TestUpdateMovement(t *testing.T) {
	conn := setupItemsTestDB(t)
	svc := newItemsService(t, conn)
	ctx := context.Background()

	seedTestVendor(t, conn, "MOVV")
	item := &models.Item{VendorCode: "MOVV", UPC: "666666666666", Description: "Beans", CasePack: 1, PriceQty: 1, IsActive: true}
	require.NoError(t, conn.Create(item).Error)

	updated, err := svc.UpdateMovement(ctx, "MOVV", "666666666666", 140)
	require.NoError(t, err)
	require.NotNil(t, updated.Movement)
	assert.Equal(t, 140, *updated.Movement)
	require.NotNil(t, updated.MovementUpdated)
	assert.WithinDuration(t, time.Now().UTC(), *updated.MovementUpdated, time.Minute)

	_, err = svc.UpdateMovement(ctx, "MOVV", "666666666666", -5)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
