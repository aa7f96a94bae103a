package history

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	"github.com/costlessmarkets/pricebook-backend/pkg/pagination"
)

func setupHistoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	changeHistory := `
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
);`
	require.NoError(t, db.Exec(changeHistory).Error)
	return db
}

func newHistoryRecord(vendor, upc string, at time.Time) *models.ChangeHistory {
	oldCost := decimal.NewFromFloat(10.00)
	newCost := decimal.NewFromFloat(11.00)
	return &models.ChangeHistory{
		VendorCode:   vendor,
		UPC:          upc,
		ChangeDate:   at,
		ChangeType:   enums.ChangeTypeCostAndPrice,
		OldCaseCost:  &oldCost,
		NewCaseCost:  &newCost,
		ChangedBy:    "jdoe",
		ChangeSource: enums.ChangeSourceManual,
	}
}

func TestAppendAndListByItem(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, newHistoryRecord("ACME", "012345678905", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, err := repo.Append(ctx, newHistoryRecord("ACME", "999999999999", base))
	require.NoError(t, err)

	page, err := repo.ListByItem(ctx, "ACME", "012345678905", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Records, 3)
	assert.Empty(t, page.NextCursor)

	// newest first
	assert.True(t, page.Records[0].ChangeDate.After(page.Records[1].ChangeDate))
	for _, rec := range page.Records {
		assert.Equal(t, "012345678905", rec.UPC)
	}
}

func TestListByItemCursorPagination(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Append(ctx, newHistoryRecord("PAGED", "111111111111", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	first, err := repo.ListByItem(ctx, "PAGED", "111111111111", pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Records, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListByItem(ctx, "PAGED", "111111111111", pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Records, 2)

	// no overlap between pages
	for _, a := range first.Records {
		for _, b := range second.Records {
			assert.NotEqual(t, a.ID, b.ID)
		}
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	_, err := repo.Append(ctx, newHistoryRecord("RCNT", "222222222222", base))
	require.NoError(t, err)
	_, err = repo.Append(ctx, newHistoryRecord("RCNT", "222222222222", base.Add(time.Hour)))
	require.NoError(t, err)

	rows, err := repo.Recent(ctx, 50)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].ChangeDate.After(rows[i-1].ChangeDate))
	}
}
