package changes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/internal/items"
	"github.com/costlessmarkets/pricebook-backend/pkg/db"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/metrics"
	"github.com/costlessmarkets/pricebook-backend/pkg/pricing"
)

// systemActor attributes history rows when no acting user is supplied.
const systemActor = "SYSTEM"

// Service drives a pending cost change from submission through approval to
// application against the live item.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.PendingCostChange, error)
	Approve(ctx context.Context, changeID int64, user string, retailOverride *decimal.Decimal) (*models.PendingCostChange, error)
	Reject(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error)
	Apply(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error)
	Get(ctx context.Context, changeID int64) (*models.PendingCostChange, error)
	ListByStatus(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error)
}

// SubmitInput carries one proposed vendor cost change.
type SubmitInput struct {
	VendorCode     string
	UPC            string
	NewCaseCost    decimal.Decimal
	NewAllowance   decimal.Decimal
	EffectiveDate  time.Time
	RetailOverride *decimal.Decimal
	Source         enums.ChangeSource
	Notes          *string
	User           string
}

type vendorLoader interface {
	FindVendor(ctx context.Context, vendorCode string) (*models.Vendor, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        *Repository
	itemRepo    *items.Repository
	historyRepo *history.Repository
	vendorRepo  vendorLoader
	tx          txRunner
	metrics     *metrics.WorkflowMetrics
	now         func() time.Time
}

// NewService constructs the cost change workflow service.
func NewService(repo *Repository, itemRepo *items.Repository, historyRepo *history.Repository, vendorRepo vendorLoader, tx txRunner, workflowMetrics *metrics.WorkflowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("change repository required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if historyRepo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		vendorRepo:  vendorRepo,
		tx:          tx,
		metrics:     workflowMetrics,
		now:         time.Now,
	}, nil
}

// Submit creates the item's open cost change, or overwrites it if one is
// already PENDING. Last submission wins: the snapshot prev_* fields are
// retaken from the live item each time.
func (s *service) Submit(ctx context.Context, input SubmitInput) (change *models.PendingCostChange, err error) {
	defer func() { s.metrics.IncTransition("submit", err) }()

	if input.User == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}
	if input.NewCaseCost.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new case cost must be positive")
	}
	if input.NewAllowance.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new allowance cannot be negative")
	}
	if input.NewAllowance.Cmp(input.NewCaseCost) >= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new allowance must be less than new case cost")
	}
	if input.EffectiveDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "effective date required")
	}
	if input.RetailOverride != nil && input.RetailOverride.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail override must be positive")
	}

	source := input.Source
	if source == "" {
		source = enums.ChangeSourceManual
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid change source %q", source))
	}

	vendorCode := strings.ToUpper(strings.TrimSpace(input.VendorCode))
	upc, ok := pricing.NormalizeUPC(input.UPC)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "UPC is empty")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.itemRepo.WithTx(tx)

		item, err := itemRepo.FindByNaturalKey(ctx, vendorCode, upc)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if item.CasePack < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item case pack must be at least 1")
		}

		vendor, err := s.vendorRepo.FindVendor(ctx, item.VendorCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
		}

		suggested, approved := s.priceProposal(item, vendor, input)

		open, err := repo.FindOpenByItem(ctx, item.ID)
		switch {
		case err == nil:
			change = open
		case errors.Is(err, gorm.ErrRecordNotFound):
			change = &models.PendingCostChange{ItemID: item.ID}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find open change")
		}

		change.VendorCode = item.VendorCode
		change.UPC = item.UPC
		change.NewCaseCost = input.NewCaseCost
		change.NewAllowance = input.NewAllowance
		change.EffectiveDate = input.EffectiveDate
		change.SuggestedRetail = suggested
		change.ApprovedRetail = approved
		change.PrevCaseCost = item.CaseCost
		change.PrevAllowance = item.Allowance
		change.PrevRetail = item.RetailPrice
		change.PrevMargin = item.Margin()
		change.PrevCasePack = item.CasePack
		change.Status = enums.ChangeStatusPending
		change.ChangeSource = source
		change.SubmittedBy = input.User
		change.ApprovedBy = nil
		change.ApprovedAt = nil
		change.AppliedAt = nil
		change.Notes = input.Notes

		if change.ID == 0 {
			if _, err := repo.Create(ctx, change); err != nil {
				// A concurrent submission won the race for the open slot.
				// The partial unique index makes this safe to retry as an
				// in-place update.
				if db.IsUniqueViolation(err, "") {
					existing, findErr := repo.FindOpenByItem(ctx, item.ID)
					if findErr != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload open change")
					}
					change.ID = existing.ID
					change.CreatedAt = existing.CreatedAt
					if _, saveErr := repo.Save(ctx, change); saveErr != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "overwrite open change")
					}
					return nil
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cost change")
			}
			return nil
		}

		if _, err := repo.Save(ctx, change); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "overwrite open change")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Approve moves a PENDING change to APPROVED. An override replaces the
// approved retail; otherwise an unset approved retail falls back to the
// suggestion.
func (s *service) Approve(ctx context.Context, changeID int64, user string, retailOverride *decimal.Decimal) (change *models.PendingCostChange, err error) {
	defer func() { s.metrics.IncTransition("approve", err) }()

	if user == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}
	if retailOverride != nil && retailOverride.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail override must be positive")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		change, err = s.loadChange(ctx, repo, changeID)
		if err != nil {
			return err
		}
		if change.Status != enums.ChangeStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot approve a %s change", change.Status))
		}

		now := s.now().UTC()
		change.Status = enums.ChangeStatusApproved
		change.ApprovedBy = &user
		change.ApprovedAt = &now
		if retailOverride != nil {
			change.ApprovedRetail = retailOverride
		} else if change.ApprovedRetail == nil {
			change.ApprovedRetail = change.SuggestedRetail
		}

		if _, err := repo.Save(ctx, change); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save approval")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Reject moves a PENDING change to REJECTED. No other fields change.
func (s *service) Reject(ctx context.Context, changeID int64, user string) (change *models.PendingCostChange, err error) {
	defer func() { s.metrics.IncTransition("reject", err) }()

	if user == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		change, err = s.loadChange(ctx, repo, changeID)
		if err != nil {
			return err
		}
		if change.Status != enums.ChangeStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot reject a %s change", change.Status))
		}

		now := s.now().UTC()
		change.Status = enums.ChangeStatusRejected
		change.ApprovedBy = &user
		change.ApprovedAt = &now

		if _, err := repo.Save(ctx, change); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rejection")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Apply promotes an APPROVED change onto the live item. The audit record is
// written before the item is mutated; history write, item update, and the
// status flip commit atomically.
func (s *service) Apply(ctx context.Context, changeID int64, user string) (change *models.PendingCostChange, err error) {
	defer func() { s.metrics.IncTransition("apply", err) }()

	actor := user
	if actor == "" {
		actor = systemActor
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.itemRepo.WithTx(tx)
		histRepo := s.historyRepo.WithTx(tx)

		change, err = s.loadChange(ctx, repo, changeID)
		if err != nil {
			return err
		}
		if change.Status != enums.ChangeStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot apply a %s change", change.Status))
		}

		item, err := itemRepo.FindByID(ctx, change.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		retailChanged := change.ApprovedRetail != nil &&
			(item.RetailPrice == nil || !change.ApprovedRetail.Equal(*item.RetailPrice))

		changeType := enums.ChangeTypeCostOnly
		if retailChanged {
			changeType = enums.ChangeTypeCostAndPrice
		}

		oldCaseCost := item.CaseCost
		oldAllowance := item.Allowance
		oldMargin := item.Margin()

		record := &models.ChangeHistory{
			VendorCode:          item.VendorCode,
			UPC:                 item.UPC,
			ChangeDate:          s.now().UTC(),
			ChangeType:          changeType,
			OldCaseCost:         &oldCaseCost,
			NewCaseCost:         &change.NewCaseCost,
			OldAllowance:        &oldAllowance,
			NewAllowance:        &change.NewAllowance,
			OldRetail:           item.RetailPrice,
			NewRetail:           change.ApprovedRetail,
			OldMargin:           oldMargin,
			ChangedBy:           actor,
			ChangeSource:        change.ChangeSource,
			PendingCostChangeID: &change.ID,
			Notes:               change.Notes,
		}
		if retailChanged {
			record.NewMargin = marginAfter(item, change)
		}
		if _, err := histRepo.Append(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append change history")
		}

		today := dateOnly(s.now())
		item.CaseCost = change.NewCaseCost
		item.Allowance = change.NewAllowance
		item.LastCostChange = &today
		if retailChanged {
			item.RetailPrice = change.ApprovedRetail
			item.LastPriceChange = &today
		}
		if _, err := itemRepo.Update(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}

		now := s.now().UTC()
		change.Status = enums.ChangeStatusApplied
		change.AppliedAt = &now
		if _, err := repo.Save(ctx, change); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark change applied")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *service) Get(ctx context.Context, changeID int64) (*models.PendingCostChange, error) {
	return s.loadChange(ctx, s.repo, changeID)
}

func (s *service) ListByStatus(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid change status %q", status))
	}
	rows, err := s.repo.ListByStatus(ctx, status, strings.ToUpper(strings.TrimSpace(vendorCode)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list changes")
	}
	return rows, nil
}

// priceProposal derives the suggested and approved retail for a submission.
// The margin basis is the item's current margin when defined, else the
// vendor's default target.
func (s *service) priceProposal(item *models.Item, vendor *models.Vendor, input SubmitInput) (suggested, approved *decimal.Decimal) {
	basis := vendor.TargetMargin
	if margin := item.Margin(); margin != nil {
		basis = *margin
	}

	if newUnit := newUnitCost(input, item.CasePack); newUnit != nil {
		if value, ok := pricing.SuggestRetail(*newUnit, basis); ok {
			suggested = &value
		}
	}

	if input.RetailOverride != nil {
		approved = input.RetailOverride
	} else {
		approved = suggested
	}
	return suggested, approved
}

func newUnitCost(input SubmitInput, casePack int) *decimal.Decimal {
	if casePack < 1 {
		return nil
	}
	unit := input.NewCaseCost.Sub(input.NewAllowance).
		DivRound(decimal.NewFromInt(int64(casePack)), 4)
	return &unit
}

func marginAfter(item *models.Item, change *models.PendingCostChange) *decimal.Decimal {
	newUnit := change.NewUnitCost(item.CasePack)
	if newUnit == nil || change.ApprovedRetail == nil {
		return nil
	}
	margin, ok := pricing.CalculateMargin(*change.ApprovedRetail, *newUnit)
	if !ok {
		return nil
	}
	return &margin
}

func (s *service) loadChange(ctx context.Context, repo *Repository, changeID int64) (*models.PendingCostChange, error) {
	change, err := repo.FindByID(ctx, changeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cost change not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cost change")
	}
	return change, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
