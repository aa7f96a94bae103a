package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
)

// Service exposes vendor and link group management operations.
type Service interface {
	CreateVendor(ctx context.Context, input CreateVendorInput) (*models.Vendor, error)
	UpdateVendor(ctx context.Context, vendorCode string, input UpdateVendorInput) (*models.Vendor, error)
	GetVendor(ctx context.Context, vendorCode string) (*VendorDetail, error)
	ListVendors(ctx context.Context, activeOnly bool) ([]models.Vendor, error)
	DeleteVendor(ctx context.Context, vendorCode string) error
	CreateLinkGroup(ctx context.Context, vendorCode string, input LinkGroupInput) (*models.LinkGroup, error)
	ListLinkGroups(ctx context.Context, vendorCode string) ([]models.LinkGroup, error)
	DeleteLinkGroup(ctx context.Context, vendorCode string, linkGroupID int64) error
}

// CreateVendorInput holds the validated payload to create a vendor.
type CreateVendorInput struct {
	VendorCode   string
	VendorName   string
	RepName      *string
	RepEmail     *string
	RepPhone     *string
	CommMethod   enums.CommMethod
	TargetMargin decimal.Decimal
	Notes        *string
}

// UpdateVendorInput holds optional mutation values for a vendor.
type UpdateVendorInput struct {
	VendorName   *string
	RepName      *string
	RepEmail     *string
	RepPhone     *string
	CommMethod   *enums.CommMethod
	TargetMargin *decimal.Decimal
	IsActive     *bool
	Notes        *string
}

// LinkGroupInput holds the payload to create a link group under a vendor.
type LinkGroupInput struct {
	LinkCode      string
	LinkGroupName string
}

// VendorDetail pairs the vendor row with its summary counts.
type VendorDetail struct {
	Vendor         *models.Vendor
	ActiveItems    int64
	PendingChanges int64
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a vendor service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateVendor(ctx context.Context, input CreateVendorInput) (*models.Vendor, error) {
	code := strings.ToUpper(strings.TrimSpace(input.VendorCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor code required")
	}
	if strings.TrimSpace(input.VendorName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
	}
	if err := validateTargetMargin(input.TargetMargin); err != nil {
		return nil, err
	}
	commMethod := input.CommMethod
	if commMethod == "" {
		commMethod = enums.CommMethodExcel
	}
	if !commMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid comm method %q", commMethod))
	}

	vendor := &models.Vendor{
		VendorCode:   code,
		VendorName:   strings.TrimSpace(input.VendorName),
		RepName:      input.RepName,
		RepEmail:     input.RepEmail,
		RepPhone:     input.RepPhone,
		CommMethod:   commMethod,
		TargetMargin: input.TargetMargin,
		IsActive:     true,
		Notes:        input.Notes,
	}

	created, err := s.repo.CreateVendor(ctx, vendor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert vendor")
	}
	return created, nil
}

func (s *service) UpdateVendor(ctx context.Context, vendorCode string, input UpdateVendorInput) (*models.Vendor, error) {
	vendor, err := s.loadVendor(ctx, vendorCode)
	if err != nil {
		return nil, err
	}

	if input.VendorName != nil {
		if strings.TrimSpace(*input.VendorName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
		}
		vendor.VendorName = strings.TrimSpace(*input.VendorName)
	}
	if input.RepName != nil {
		vendor.RepName = input.RepName
	}
	if input.RepEmail != nil {
		vendor.RepEmail = input.RepEmail
	}
	if input.RepPhone != nil {
		vendor.RepPhone = input.RepPhone
	}
	if input.CommMethod != nil {
		if !input.CommMethod.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid comm method %q", *input.CommMethod))
		}
		vendor.CommMethod = *input.CommMethod
	}
	if input.TargetMargin != nil {
		if err := validateTargetMargin(*input.TargetMargin); err != nil {
			return nil, err
		}
		vendor.TargetMargin = *input.TargetMargin
	}
	if input.IsActive != nil {
		vendor.IsActive = *input.IsActive
	}
	if input.Notes != nil {
		vendor.Notes = input.Notes
	}

	updated, err := s.repo.UpdateVendor(ctx, vendor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	return updated, nil
}

func (s *service) GetVendor(ctx context.Context, vendorCode string) (*VendorDetail, error) {
	vendor, err := s.loadVendor(ctx, vendorCode)
	if err != nil {
		return nil, err
	}

	activeItems, err := s.repo.CountActiveItems(ctx, vendor.VendorCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active items")
	}
	pending, err := s.repo.CountPendingChanges(ctx, vendor.VendorCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending changes")
	}

	return &VendorDetail{
		Vendor:         vendor,
		ActiveItems:    activeItems,
		PendingChanges: pending,
	}, nil
}

func (s *service) ListVendors(ctx context.Context, activeOnly bool) ([]models.Vendor, error) {
	rows, err := s.repo.ListVendors(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	return rows, nil
}

// DeleteVendor refuses deletion while any item or link group still
// references the vendor.
func (s *service) DeleteVendor(ctx context.Context, vendorCode string) error {
	vendor, err := s.loadVendor(ctx, vendorCode)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		itemCount, err := repo.CountItems(ctx, vendor.VendorCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count items")
		}
		if itemCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("vendor %s still has %d items", vendor.VendorCode, itemCount))
		}

		groupCount, err := repo.CountLinkGroups(ctx, vendor.VendorCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count link groups")
		}
		if groupCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("vendor %s still has %d link groups", vendor.VendorCode, groupCount))
		}

		if err := repo.DeleteVendor(ctx, vendor.VendorCode); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vendor")
		}
		return nil
	})
}

func (s *service) CreateLinkGroup(ctx context.Context, vendorCode string, input LinkGroupInput) (*models.LinkGroup, error) {
	vendor, err := s.loadVendor(ctx, vendorCode)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.LinkCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link code required")
	}
	if strings.TrimSpace(input.LinkGroupName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link group name required")
	}

	group := &models.LinkGroup{
		VendorCode:    vendor.VendorCode,
		LinkCode:      code,
		LinkGroupName: strings.TrimSpace(input.LinkGroupName),
		IsActive:      true,
	}

	created, err := s.repo.CreateLinkGroup(ctx, group)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert link group")
	}
	return created, nil
}

func (s *service) ListLinkGroups(ctx context.Context, vendorCode string) ([]models.LinkGroup, error) {
	if _, err := s.loadVendor(ctx, vendorCode); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListLinkGroups(ctx, strings.ToUpper(strings.TrimSpace(vendorCode)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list link groups")
	}
	return rows, nil
}

// DeleteLinkGroup detaches the group's items before removing the group, in
// one transaction.
func (s *service) DeleteLinkGroup(ctx context.Context, vendorCode string, linkGroupID int64) error {
	group, err := s.repo.FindLinkGroup(ctx, linkGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "link group not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load link group")
	}
	if !strings.EqualFold(group.VendorCode, strings.TrimSpace(vendorCode)) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "link group not found for vendor")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DetachItems(ctx, group.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach items")
		}
		if err := repo.DeleteLinkGroup(ctx, group.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete link group")
		}
		return nil
	})
}

func (s *service) loadVendor(ctx context.Context, vendorCode string) (*models.Vendor, error) {
	code := strings.ToUpper(strings.TrimSpace(vendorCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor code required")
	}
	vendor, err := s.repo.FindVendor(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func validateTargetMargin(margin decimal.Decimal) error {
	if margin.Sign() <= 0 || margin.Cmp(decimal.NewFromInt(1)) >= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "target margin must be strictly between 0 and 1")
	}
	return nil
}
