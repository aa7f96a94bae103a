package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/pkg/config"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/metrics"
)

// brdataDateFormat is the fixed digit date format BRData expects.
const brdataDateFormat = "20060102"

var csvHeader = []string{"ITEM_NO", "UPC", "DESCRIPTION", "NEW_RETAIL", "EFFECTIVE_DATE", "VENDOR_CODE"}

// Service emits approved-and-due cost changes in the BRData file format.
type Service interface {
	Run(ctx context.Context, asOf time.Time, user string) (*Result, error)
	Log(ctx context.Context, limit int) ([]models.ExportLogEntry, error)
}

// Result summarizes one export run.
type Result struct {
	Empty bool
	File  string
	Rows  int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        *Repository
	changesRepo *changes.Repository
	tx          txRunner
	cfg         config.ExportConfig
	metrics     *metrics.WorkflowMetrics
	now         func() time.Time
}

// NewService constructs the export coordinator.
func NewService(repo *Repository, changesRepo *changes.Repository, tx txRunner, cfg config.ExportConfig, workflowMetrics *metrics.WorkflowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository required")
	}
	if changesRepo == nil {
		return nil, fmt.Errorf("changes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("export output directory required")
	}
	return &service{
		repo:        repo,
		changesRepo: changesRepo,
		tx:          tx,
		cfg:         cfg,
		metrics:     workflowMetrics,
		now:         time.Now,
	}, nil
}

// Run selects APPROVED changes due as of the given date, writes the BRData
// CSV, and logs one SENT entry per emitted row. Change status is never
// touched: export and application are independent, and a re-run emits the
// same rows again with fresh log entries.
func (s *service) Run(ctx context.Context, asOf time.Time, user string) (result *Result, err error) {
	started := s.now()
	defer func() {
		rows := 0
		if result != nil {
			rows = result.Rows
		}
		s.metrics.ObserveExport(rows, s.now().Sub(started), err)
	}()

	if user == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	due, err := s.changesRepo.ListDue(ctx, asOf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select due changes")
	}
	if len(due) == 0 {
		return &Result{Empty: true}, nil
	}

	filename := fmt.Sprintf("brdata_export_%s.csv", asOf.Format(brdataDateFormat))
	path, err := s.writeFile(filename, due)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exportDate := s.now().UTC()
		for i := range due {
			change := &due[i]
			entry := &models.ExportLogEntry{
				ExportDate:    exportDate,
				ExportType:    enums.ExportTypePriceChange,
				VendorCode:    change.VendorCode,
				UPC:           change.UPC,
				NewRetail:     change.ApprovedRetail,
				EffectiveDate: &change.EffectiveDate,
				ExportStatus:  enums.ExportStatusSent,
				ExportFile:    &filename,
				ExportedBy:    user,
			}
			if change.Item != nil {
				entry.BRDataItemNo = change.Item.BRDataItemNo
			}
			if _, err := repo.Append(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append export log")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{File: path, Rows: len(due)}, nil
}

func (s *service) Log(ctx context.Context, limit int) ([]models.ExportLogEntry, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list export log")
	}
	return rows, nil
}

func (s *service) writeFile(filename string, due []models.PendingCostChange) (string, error) {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create export directory")
	}

	path := filepath.Join(s.cfg.OutputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create export file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export header")
	}

	for i := range due {
		change := &due[i]

		itemNo := ""
		description := ""
		if change.Item != nil {
			if change.Item.BRDataItemNo != nil {
				itemNo = *change.Item.BRDataItemNo
			}
			description = change.Item.Description
		}

		retail := ""
		if change.ApprovedRetail != nil {
			retail = change.ApprovedRetail.StringFixed(2)
		}

		row := []string{
			itemNo,
			change.UPC,
			description,
			retail,
			change.EffectiveDate.Format(brdataDateFormat),
			change.VendorCode,
		}
		if err := writer.Write(row); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush export file")
	}
	return path, nil
}
