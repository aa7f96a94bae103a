package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/api/responses"
	"github.com/costlessmarkets/pricebook-backend/api/validators"
	"github.com/costlessmarkets/pricebook-backend/internal/vendors"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

type vendorCreateRequest struct {
	VendorCode   string           `json:"vendor_code" validate:"required,max=20"`
	VendorName   string           `json:"vendor_name" validate:"required"`
	RepName      *string          `json:"rep_name,omitempty"`
	RepEmail     *string          `json:"rep_email,omitempty" validate:"omitempty,email"`
	RepPhone     *string          `json:"rep_phone,omitempty"`
	CommMethod   string           `json:"comm_method,omitempty"`
	TargetMargin *decimal.Decimal `json:"target_margin,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

func (p vendorCreateRequest) toInput() (vendors.CreateVendorInput, error) {
	input := vendors.CreateVendorInput{
		VendorCode: p.VendorCode,
		VendorName: p.VendorName,
		RepName:    p.RepName,
		RepEmail:   p.RepEmail,
		RepPhone:   p.RepPhone,
		Notes:      p.Notes,
	}
	if p.CommMethod != "" {
		method, err := enums.ParseCommMethod(p.CommMethod)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid comm method")
		}
		input.CommMethod = method
	}
	if p.TargetMargin != nil {
		input.TargetMargin = *p.TargetMargin
	}
	return input, nil
}

// VendorCreate registers a new supplier.
func VendorCreate(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		var payload vendorCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.CreateVendor(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vendors.FromModel(vendor))
	}
}

// VendorList returns all vendors, optionally filtered to active ones.
func VendorList(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")

		list, err := svc.ListVendors(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendors.FromModels(list))
	}
}

// VendorDetail returns one vendor with its summary counts.
func VendorDetail(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		detail, err := svc.GetVendor(r.Context(), vendorCodeParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendors.DetailFromModel(detail))
	}
}

type vendorUpdateRequest struct {
	VendorName   *string          `json:"vendor_name,omitempty" validate:"omitempty,min=1"`
	RepName      *string          `json:"rep_name,omitempty"`
	RepEmail     *string          `json:"rep_email,omitempty" validate:"omitempty,email"`
	RepPhone     *string          `json:"rep_phone,omitempty"`
	CommMethod   *string          `json:"comm_method,omitempty"`
	TargetMargin *decimal.Decimal `json:"target_margin,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

func (p vendorUpdateRequest) toInput() (vendors.UpdateVendorInput, error) {
	input := vendors.UpdateVendorInput{
		VendorName:   p.VendorName,
		RepName:      p.RepName,
		RepEmail:     p.RepEmail,
		RepPhone:     p.RepPhone,
		TargetMargin: p.TargetMargin,
		IsActive:     p.IsActive,
		Notes:        p.Notes,
	}
	if p.CommMethod != nil {
		method, err := enums.ParseCommMethod(*p.CommMethod)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid comm method")
		}
		input.CommMethod = &method
	}
	return input, nil
}

// VendorUpdate adjusts the mutable vendor fields.
func VendorUpdate(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		var payload vendorUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.UpdateVendor(r.Context(), vendorCodeParam(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendors.FromModel(vendor))
	}
}

// VendorDelete removes a vendor with no remaining items or link groups.
func VendorDelete(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		if err := svc.DeleteVendor(r.Context(), vendorCodeParam(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

type linkGroupCreateRequest struct {
	LinkCode      string `json:"link_code" validate:"required,max=20"`
	LinkGroupName string `json:"link_group_name,omitempty"`
}

// LinkGroupCreate adds a pricing link group under a vendor.
func LinkGroupCreate(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		var payload linkGroupCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateLinkGroup(r.Context(), vendorCodeParam(r), vendors.LinkGroupInput{
			LinkCode:      payload.LinkCode,
			LinkGroupName: payload.LinkGroupName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vendors.LinkGroupFromModel(group))
	}
}

// LinkGroupList returns a vendor's link groups.
func LinkGroupList(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		groups, err := svc.ListLinkGroups(r.Context(), vendorCodeParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendors.LinkGroupsFromModels(groups))
	}
}

// LinkGroupDelete removes a link group, detaching its items.
func LinkGroupDelete(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		id, err := int64URLParam(r, "linkGroupID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteLinkGroup(r.Context(), vendorCodeParam(r), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func vendorCodeParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "vendorCode"))
}

func int64URLParam(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetails(map[string]any{"param": key, "value": raw})
	}
	return id, nil
}
