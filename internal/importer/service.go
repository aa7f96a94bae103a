package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
	"github.com/costlessmarkets/pricebook-backend/pkg/pricing"
)

// batchSize bounds one bulk insert.
const batchSize = 500

// defaultTargetMargin is assigned to vendors created during a load. Buyers
// tune the real target through the vendor API afterwards.
var defaultTargetMargin = decimal.RequireFromString("0.2800")

// Service reloads the entire price book from a master CSV. The load is
// destructive: pending changes, history, items, link groups and vendors are
// wiped and rebuilt from the file inside one transaction.
type Service interface {
	Run(ctx context.Context, file io.Reader, opts RunOptions) (*Summary, error)
}

// RunOptions identify the file and the acting user for the import log.
type RunOptions struct {
	Filename string
	User     string
	Source   enums.ImportSource
}

// Summary reports what one run did.
type Summary struct {
	Processed  int
	Vendors    int
	LinkGroups int
	Items      int
	Skipped    int
	Errors     int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the bulk loader.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("importer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg, now: time.Now}, nil
}

func (s *service) Run(ctx context.Context, file io.Reader, opts RunOptions) (*Summary, error) {
	if opts.User == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file required")
	}
	source := opts.Source
	if source == "" {
		source = enums.ImportSourceExcel
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid import source %q", opts.Source))
	}

	summary := &Summary{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.ClearAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear price book")
		}

		if err := s.load(ctx, repo, file, summary); err != nil {
			return err
		}

		entry := &models.ImportLog{
			ImportDate:       s.now().UTC(),
			Filename:         opts.Filename,
			ImportSource:     source,
			RecordsProcessed: summary.Processed,
			RecordsAdded:     summary.Items,
			RecordsSkipped:   summary.Skipped,
			RecordsError:     summary.Errors,
			ImportStatus:     enums.ImportStatusComplete,
			ImportedBy:       opts.User,
		}
		if err := repo.CreateImportLog(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write import log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf(
			"import complete: %d vendors, %d link groups, %d items, %d skipped",
			summary.Vendors, summary.LinkGroups, summary.Items, summary.Skipped))
	}
	return summary, nil
}

func (s *service) load(ctx context.Context, repo *Repository, file io.Reader, summary *Summary) error {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}
	columns := headerIndex(header)

	vendors := map[string]bool{}
	linkGroups := map[string]int64{}
	batch := make([]models.Item, 0, batchSize)

	flush := func() error {
		added, skipped, err := repo.InsertItems(ctx, batch)
		if err != nil {
			summary.Errors += len(batch)
			batch = batch[:0]
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert item batch")
		}
		summary.Items += added
		summary.Skipped += skipped
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv row")
		}
		summary.Processed++

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		vendorCode := clip(strings.TrimSpace(cell("Vendor Code")), 20)
		if vendorCode == "" || vendorCode == "#REF!" {
			summary.Skipped++
			continue
		}

		if !vendors[vendorCode] {
			vendor := &models.Vendor{
				VendorCode:   vendorCode,
				VendorName:   VendorName(vendorCode),
				CommMethod:   enums.CommMethodExcel,
				TargetMargin: defaultTargetMargin,
				IsActive:     true,
			}
			if err := repo.CreateVendor(ctx, vendor); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("create vendor %s", vendorCode))
			}
			vendors[vendorCode] = true
			summary.Vendors++
		}

		var linkGroupID *int64
		if linkCode := strings.TrimSpace(cell("Link Code")); linkCode != "" {
			key := vendorCode + "|" + linkCode
			id, ok := linkGroups[key]
			if !ok {
				name := strings.TrimSpace(cell("Link Group Name"))
				if name == "" {
					name = linkCode
				}
				group := &models.LinkGroup{
					VendorCode:    vendorCode,
					LinkCode:      linkCode,
					LinkGroupName: name,
					IsActive:      true,
				}
				if err := repo.CreateLinkGroup(ctx, group); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("create link group %s", key))
				}
				linkGroups[key] = group.ID
				id = group.ID
				summary.LinkGroups++
			}
			linkGroupID = &id
		}

		upc, ok := pricing.NormalizeUPC(cell("UPC"))
		if !ok {
			summary.Skipped++
			continue
		}

		caseCost := ParseMoney(cell("Case Cost"))
		allowance := AllowanceFrom(caseCost, ParseMoney(cell("Net Case Cost")))
		lastChange := ParseDate(cell("Last Change Date"))

		var retail *decimal.Decimal
		if price := ParseMoney(cell("Price")); price.IsPositive() {
			retail = &price
		}

		batch = append(batch, models.Item{
			VendorCode:      vendorCode,
			UPC:             upc,
			Seq:             ParseNullableInt(cell("SEQ")),
			LinkGroupID:     linkGroupID,
			BRDataItemNo:    clipPtr(cell("Vendor #"), 20),
			Description:     clip(cell("Long Description"), 100),
			CasePack:        ParseCount(cell("Case Pack"), 1),
			SizeAlpha:       clipPtr(cell("Size Alpha"), 20),
			CaseCost:        caseCost,
			Allowance:       allowance,
			PriceQty:        ParseCount(cell("Price Qty"), 1),
			RetailPrice:     retail,
			LastCostChange:  lastChange,
			LastPriceChange: lastChange,
			IsDisco:         ParseFlag(cell("Disco")),
			IsTPR:           ParseFlag(cell("TPR")),
			Movement:        ParseNullableInt(cell("Movement")),
			VendorComments:  clipPtr(cell("Vendor Comments"), 500),
			Notes:           clipPtr(cell("NOTES"), 500),
			IsActive:        true,
		})

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// headerIndex maps trimmed column names to positions. The first cell may
// carry a UTF-8 BOM when the sheet was saved from Excel.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}
