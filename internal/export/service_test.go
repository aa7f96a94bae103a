package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/pkg/config"
	"github.com/costlessmarkets/pricebook-backend/pkg/db"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
)

func setupExportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
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
CREATE TABLE IF NOT EXISTS pending_cost_changes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  item_id INTEGER NOT NULL,
  vendor_code TEXT NOT NULL,
  upc TEXT NOT NULL,
  new_case_cost NUMERIC NOT NULL,
  new_allowance NUMERIC NOT NULL DEFAULT 0,
  effective_date DATE NOT NULL,
  suggested_retail NUMERIC,
  approved_retail NUMERIC,
  prev_case_cost NUMERIC NOT NULL,
  prev_allowance NUMERIC NOT NULL,
  prev_retail NUMERIC,
  prev_margin NUMERIC,
  prev_case_pack INTEGER NOT NULL DEFAULT 1,
  status TEXT NOT NULL DEFAULT 'PENDING',
  change_source TEXT NOT NULL DEFAULT 'MANUAL',
  submitted_by TEXT NOT NULL,
  approved_by TEXT,
  approved_at DATETIME,
  applied_at DATETIME,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS export_log_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  export_date DATETIME NOT NULL,
  export_type TEXT NOT NULL,
  vendor_code TEXT NOT NULL,
  upc TEXT NOT NULL,
  brdata_item_no TEXT,
  new_retail NUMERIC,
  effective_date DATE,
  export_status TEXT NOT NULL DEFAULT 'PENDING',
  export_file TEXT,
  error_message TEXT,
  exported_by TEXT NOT NULL,
  confirmed_at DATETIME
);`}
	for _, stmt := range stmts {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	// The shared-cache memory DB survives across tests in this package and
	// the export query scans every pending change, so start from a clean slate.
	for _, table := range []string{"export_log_entries", "pending_cost_changes", "items"} {
		require.NoError(t, conn.Exec("DELETE FROM "+table).Error)
	}
	return conn
}

func newExportService(t *testing.T, conn *gorm.DB, outputDir string) Service {
	t.Helper()
	client, err := db.NewWithConn(conn)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), changes.NewRepository(conn), client, config.ExportConfig{OutputDir: outputDir}, nil)
	require.NoError(t, err)
	return svc
}

func seedExportItem(t *testing.T, conn *gorm.DB, vendorCode, upc, itemNo string) *models.Item {
	t.Helper()
	item := &models.Item{
		VendorCode:  vendorCode,
		UPC:         upc,
		Description: "EXPORT " + upc,
		CasePack:    4,
		CaseCost:    decimal.NewFromFloat(10.00),
		PriceQty:    1,
		IsActive:    true,
	}
	if itemNo != "" {
		item.BRDataItemNo = &itemNo
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func seedApprovedChange(t *testing.T, conn *gorm.DB, item *models.Item, effective time.Time, retail string) *models.PendingCostChange {
	t.Helper()
	approved := decimal.RequireFromString(retail)
	buyer := "buyer1"
	now := time.Now().UTC()
	change := &models.PendingCostChange{
		ItemID:         item.ID,
		VendorCode:     item.VendorCode,
		UPC:            item.UPC,
		NewCaseCost:    decimal.NewFromFloat(11.00),
		NewAllowance:   decimal.Zero,
		EffectiveDate:  effective,
		ApprovedRetail: &approved,
		PrevCaseCost:   item.CaseCost,
		PrevAllowance:  item.Allowance,
		PrevCasePack:   item.CasePack,
		Status:         enums.ChangeStatusApproved,
		ChangeSource:   enums.ChangeSourceManual,
		SubmittedBy:    "rep",
		ApprovedBy:     &buyer,
		ApprovedAt:     &now,
	}
	require.NoError(t, conn.Create(change).Error)
	return change
}

func TestRunExportsDueChangesOnly(t *testing.T) {
	conn := setupExportTestDB(t)
	dir := t.TempDir()
	svc := newExportService(t, conn, dir)
	ctx := context.Background()

	asOf := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	a := seedExportItem(t, conn, "EXPA", "010101010101", "10001")
	b := seedExportItem(t, conn, "EXPA", "020202020202", "")
	c := seedExportItem(t, conn, "EXPB", "030303030303", "10003")
	future := seedExportItem(t, conn, "EXPB", "040404040404", "10004")

	seedApprovedChange(t, conn, a, asOf.AddDate(0, 0, -1), "3.88")
	seedApprovedChange(t, conn, b, asOf, "2.58")
	seedApprovedChange(t, conn, c, asOf.AddDate(0, 0, -7), "5.18")
	futureChange := seedApprovedChange(t, conn, future, asOf.AddDate(0, 0, 10), "9.98")

	result, err := svc.Run(ctx, asOf, "jdoe")
	require.NoError(t, err)
	assert.False(t, result.Empty)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, filepath.Join(dir, "brdata_export_20250715.csv"), result.File)

	file, err := os.Open(result.File)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 rows
	assert.Equal(t, []string{"ITEM_NO", "UPC", "DESCRIPTION", "NEW_RETAIL", "EFFECTIVE_DATE", "VENDOR_CODE"}, records[0])

	// rows ordered by vendor then UPC
	assert.Equal(t, []string{"10001", "010101010101", "EXPORT 010101010101", "3.88", "20250714", "EXPA"}, records[1])
	assert.Equal(t, []string{"", "020202020202", "EXPORT 020202020202", "2.58", "20250715", "EXPA"}, records[2])
	assert.Equal(t, []string{"10003", "030303030303", "EXPORT 030303030303", "5.18", "20250708", "EXPB"}, records[3])

	var logs []models.ExportLogEntry
	require.NoError(t, conn.Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 3)
	for _, entry := range logs {
		assert.Equal(t, enums.ExportStatusSent, entry.ExportStatus)
		assert.Equal(t, "jdoe", entry.ExportedBy)
		require.NotNil(t, entry.ExportFile)
		assert.Equal(t, "brdata_export_20250715.csv", *entry.ExportFile)
		assert.NotEqual(t, future.UPC, entry.UPC)
	}

	// the future-dated change is untouched
	var reloaded models.PendingCostChange
	require.NoError(t, conn.First(&reloaded, futureChange.ID).Error)
	assert.Equal(t, enums.ChangeStatusApproved, reloaded.Status)
}

func TestRunEmptyResultIsNotAnError(t *testing.T) {
	conn := setupExportTestDB(t)
	dir := t.TempDir()
	svc := newExportService(t, conn, dir)

	result, err := svc.Run(context.Background(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "jdoe")
	require.NoError(t, err)
	assert.True(t, result.Empty)
	assert.Zero(t, result.Rows)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file must be written for an empty run")
}

func TestRunDoesNotChangeStatusAndReRunDuplicates(t *testing.T) {
	conn := setupExportTestDB(t)
	dir := t.TempDir()
	svc := newExportService(t, conn, dir)
	ctx := context.Background()

	asOf := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	item := seedExportItem(t, conn, "EXPC", "050505050505", "10005")
	change := seedApprovedChange(t, conn, item, asOf, "4.48")

	first, err := svc.Run(ctx, asOf, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Rows)

	var reloaded models.PendingCostChange
	require.NoError(t, conn.First(&reloaded, change.ID).Error)
	assert.Equal(t, enums.ChangeStatusApproved, reloaded.Status, "export must not transition the change")

	second, err := svc.Run(ctx, asOf, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Rows)

	var count int64
	require.NoError(t, conn.Model(&models.ExportLogEntry{}).
		Where("upc = ?", item.UPC).Count(&count).Error)
	assert.Equal(t, int64(2), count, "each run logs its own entries")
}
