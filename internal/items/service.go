package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/pagination"
	"github.com/costlessmarkets/pricebook-backend/pkg/pricing"
)

// Service exposes price book item operations.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.Item, error)
	Update(ctx context.Context, vendorCode, upc string, input UpdateItemInput) (*models.Item, error)
	Get(ctx context.Context, vendorCode, upc string) (*models.Item, error)
	PriceBook(ctx context.Context, vendorCode string) ([]PriceBookGroup, error)
	ChangeRetail(ctx context.Context, vendorCode, upc string, input ChangeRetailInput) (*models.Item, error)
	UpdateMovement(ctx context.Context, vendorCode, upc string, movement int) (*models.Item, error)
	History(ctx context.Context, vendorCode, upc string, params pagination.Params) (*history.Page, error)
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	VendorCode   string
	UPC          string
	Seq          *int
	LinkGroupID  *int64
	BRDataItemNo *string
	Description  string
	CasePack     int
	SizeAlpha    *string
	CaseCost     decimal.Decimal
	Allowance    decimal.Decimal
	PriceQty     int
	RetailPrice  *decimal.Decimal
	IsDisco      bool
	IsTPR        bool
	Notes        *string
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Seq            *int
	LinkGroupID    *int64
	ClearLinkGroup bool
	BRDataItemNo   *string
	Description    *string
	CasePack       *int
	SizeAlpha      *string
	CaseCost       *decimal.Decimal
	Allowance      *decimal.Decimal
	PriceQty       *int
	IsDisco        *bool
	IsTPR          *bool
	VendorComments *string
	Notes          *string
	IsActive       *bool
}

// ChangeRetailInput carries a buyer-initiated retail price change. It writes
// the audit record directly; no pending cost change is involved.
type ChangeRetailInput struct {
	NewRetail decimal.Decimal
	Reason    enums.PriceChangeReason
	User      string
	Notes     *string
}

// PriceBookGroup is one display section of a vendor's price book.
type PriceBookGroup struct {
	LinkGroupID   *int64
	LinkCode      string
	LinkGroupName string
	Items         []models.Item
}

type vendorLoader interface {
	FindVendor(ctx context.Context, vendorCode string) (*models.Vendor, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        *Repository
	historyRepo *history.Repository
	vendorRepo  vendorLoader
	tx          txRunner
	now         func() time.Time
}

// NewService constructs an item service instance.
func NewService(repo *Repository, historyRepo *history.Repository, vendorRepo vendorLoader, tx txRunner) (Service, error) {
	if repo == nil {
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
		historyRepo: historyRepo,
		vendorRepo:  vendorRepo,
		tx:          tx,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	vendorCode := strings.ToUpper(strings.TrimSpace(input.VendorCode))
	if vendorCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor code required")
	}
	if _, err := s.vendorRepo.FindVendor(ctx, vendorCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	upc, err := normalizeAndValidateUPC(input.UPC)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if input.CasePack < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "case pack must be at least 1")
	}
	if err := validateMoney("case cost", input.CaseCost); err != nil {
		return nil, err
	}
	if err := validateMoney("allowance", input.Allowance); err != nil {
		return nil, err
	}
	if input.RetailPrice != nil {
		if err := validateMoney("retail price", *input.RetailPrice); err != nil {
			return nil, err
		}
	}

	priceQty := input.PriceQty
	if priceQty < 1 {
		priceQty = 1
	}

	item := &models.Item{
		VendorCode:   vendorCode,
		UPC:          upc,
		Seq:          input.Seq,
		LinkGroupID:  input.LinkGroupID,
		BRDataItemNo: input.BRDataItemNo,
		Description:  strings.TrimSpace(input.Description),
		CasePack:     input.CasePack,
		SizeAlpha:    input.SizeAlpha,
		CaseCost:     input.CaseCost,
		Allowance:    input.Allowance,
		PriceQty:     priceQty,
		RetailPrice:  input.RetailPrice,
		IsDisco:      input.IsDisco,
		IsTPR:        input.IsTPR,
		Notes:        input.Notes,
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("insert item (vendor=%s upc=%s)", vendorCode, upc))
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, vendorCode, upc string, input UpdateItemInput) (*models.Item, error) {
	item, err := s.loadItem(ctx, vendorCode, upc)
	if err != nil {
		return nil, err
	}

	if input.Seq != nil {
		item.Seq = input.Seq
	}
	if input.ClearLinkGroup {
		item.LinkGroupID = nil
	} else if input.LinkGroupID != nil {
		item.LinkGroupID = input.LinkGroupID
	}
	if input.BRDataItemNo != nil {
		item.BRDataItemNo = input.BRDataItemNo
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
		}
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.CasePack != nil {
		if *input.CasePack < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "case pack must be at least 1")
		}
		item.CasePack = *input.CasePack
	}
	if input.SizeAlpha != nil {
		item.SizeAlpha = input.SizeAlpha
	}
	if input.CaseCost != nil {
		if err := validateMoney("case cost", *input.CaseCost); err != nil {
			return nil, err
		}
		item.CaseCost = *input.CaseCost
	}
	if input.Allowance != nil {
		if err := validateMoney("allowance", *input.Allowance); err != nil {
			return nil, err
		}
		item.Allowance = *input.Allowance
	}
	if input.PriceQty != nil {
		if *input.PriceQty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price qty must be at least 1")
		}
		item.PriceQty = *input.PriceQty
	}
	if input.IsDisco != nil {
		item.IsDisco = *input.IsDisco
	}
	if input.IsTPR != nil {
		item.IsTPR = *input.IsTPR
	}
	if input.VendorComments != nil {
		item.VendorComments = input.VendorComments
	}
	if input.Notes != nil {
		item.Notes = input.Notes
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, vendorCode, upc string) (*models.Item, error) {
	return s.loadItem(ctx, vendorCode, upc)
}

// PriceBook returns the vendor's active items grouped for display: one
// section per link group, ungrouped items last.
func (s *service) PriceBook(ctx context.Context, vendorCode string) ([]PriceBookGroup, error) {
	code := strings.ToUpper(strings.TrimSpace(vendorCode))
	if _, err := s.vendorRepo.FindVendor(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	rows, err := s.repo.ListByVendor(ctx, code, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	var groups []PriceBookGroup
	index := map[int64]int{}
	ungrouped := PriceBookGroup{LinkGroupName: "Ungrouped"}

	for _, item := range rows {
		if item.LinkGroupID == nil {
			ungrouped.Items = append(ungrouped.Items, item)
			continue
		}
		pos, ok := index[*item.LinkGroupID]
		if !ok {
			group := PriceBookGroup{LinkGroupID: item.LinkGroupID}
			if item.LinkGroup != nil {
				group.LinkCode = item.LinkGroup.LinkCode
				group.LinkGroupName = item.LinkGroup.LinkGroupName
			}
			groups = append(groups, group)
			pos = len(groups) - 1
			index[*item.LinkGroupID] = pos
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}

	if len(ungrouped.Items) > 0 {
		groups = append(groups, ungrouped)
	}
	return groups, nil
}

// ChangeRetail applies a buyer-initiated price change. The audit record is
// written before the item row is touched, inside the same transaction.
func (s *service) ChangeRetail(ctx context.Context, vendorCode, upc string, input ChangeRetailInput) (*models.Item, error) {
	if input.User == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid price change reason %q", input.Reason))
	}
	if input.NewRetail.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new retail must be positive")
	}

	item, err := s.loadItem(ctx, vendorCode, upc)
	if err != nil {
		return nil, err
	}

	var updated *models.Item
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.repo.WithTx(tx)
		histRepo := s.historyRepo.WithTx(tx)

		current, err := itemRepo.FindByID(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload item")
		}

		oldMargin := current.Margin()
		newMargin := marginFor(input.NewRetail, current)
		reason := input.Reason

		record := &models.ChangeHistory{
			VendorCode:        current.VendorCode,
			UPC:               current.UPC,
			ChangeDate:        s.now().UTC(),
			ChangeType:        enums.ChangeTypePriceOnly,
			OldRetail:         current.RetailPrice,
			NewRetail:         &input.NewRetail,
			OldMargin:         oldMargin,
			NewMargin:         newMargin,
			ChangedBy:         input.User,
			ChangeSource:      enums.ChangeSourceManual,
			PriceChangeReason: &reason,
			Notes:             input.Notes,
		}
		if _, err := histRepo.Append(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append change history")
		}

		today := dateOnly(s.now())
		current.RetailPrice = &input.NewRetail
		current.LastPriceChange = &today
		updated, err = itemRepo.Update(ctx, current)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update retail price")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateMovement records the externally sourced units-sold figure.
func (s *service) UpdateMovement(ctx context.Context, vendorCode, upc string, movement int) (*models.Item, error) {
	if movement < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement cannot be negative")
	}
	item, err := s.loadItem(ctx, vendorCode, upc)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item.Movement = &movement
	item.MovementUpdated = &now

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update movement")
	}
	return updated, nil
}

func (s *service) History(ctx context.Context, vendorCode, upc string, params pagination.Params) (*history.Page, error) {
	item, err := s.loadItem(ctx, vendorCode, upc)
	if err != nil {
		return nil, err
	}
	page, err := s.historyRepo.ListByItem(ctx, item.VendorCode, item.UPC, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list change history")
	}
	return page, nil
}

func (s *service) loadItem(ctx context.Context, vendorCode, upc string) (*models.Item, error) {
	code := strings.ToUpper(strings.TrimSpace(vendorCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor code required")
	}
	normalized, err := normalizeAndValidateUPC(upc)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByNaturalKey(ctx, code, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func normalizeAndValidateUPC(raw string) (string, error) {
	normalized, ok := pricing.NormalizeUPC(raw)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "UPC is empty")
	}
	if valid, reason := pricing.ValidateUPC(normalized); !valid {
		return "", pkgerrors.New(pkgerrors.CodeValidation, reason)
	}
	return normalized, nil
}

func validateMoney(field string, value decimal.Decimal) error {
	if value.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be negative", field))
	}
	return nil
}

func marginFor(retail decimal.Decimal, item *models.Item) *decimal.Decimal {
	unit := item.UnitCost()
	if unit == nil {
		return nil
	}
	margin, ok := pricing.CalculateMargin(retail, *unit)
	if !ok {
		return nil
	}
	return &margin
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
