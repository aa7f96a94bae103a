package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/api/middleware"
	"github.com/costlessmarkets/pricebook-backend/api/responses"
	"github.com/costlessmarkets/pricebook-backend/api/validators"
	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type changeSubmitRequest struct {
	NewCaseCost    decimal.Decimal  `json:"new_case_cost"`
	NewAllowance   decimal.Decimal  `json:"new_allowance"`
	EffectiveDate  string           `json:"effective_date" validate:"required"`
	RetailOverride *decimal.Decimal `json:"retail_override,omitempty"`
	Source         string           `json:"source,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

// ChangeSubmit files a proposed cost change for one item. A resubmission
// while a change is still pending overwrites it.
func ChangeSubmit(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change service unavailable"))
			return
		}

		var payload changeSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		effective, err := time.Parse(dateLayout, payload.EffectiveDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "effective_date must be YYYY-MM-DD"))
			return
		}

		input := changes.SubmitInput{
			VendorCode:     vendorCodeParam(r),
			UPC:            upcParam(r),
			NewCaseCost:    payload.NewCaseCost,
			NewAllowance:   payload.NewAllowance,
			EffectiveDate:  effective,
			RetailOverride: payload.RetailOverride,
			Notes:          payload.Notes,
			User:           middleware.UserFromContext(r.Context()),
		}
		if payload.Source != "" {
			source, err := enums.ParseChangeSource(payload.Source)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid change source"))
				return
			}
			input.Source = source
		}

		change, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, changes.FromModel(change))
	}
}

// ChangeList returns the worklist, filtered by status and optionally vendor.
func ChangeList(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change service unavailable"))
			return
		}

		status := enums.ChangeStatusPending
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseChangeStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = parsed
		}

		list, err := svc.ListByStatus(r.Context(), status, strings.TrimSpace(r.URL.Query().Get("vendor")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, changes.FromModels(list))
	}
}

// ChangeDetail returns one pending cost change.
func ChangeDetail(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change service unavailable"))
			return
		}

		id, err := int64URLParam(r, "changeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		change, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, changes.FromModel(change))
	}
}

type changeApproveRequest struct {
	RetailOverride *decimal.Decimal `json:"retail_override,omitempty"`
}

// ChangeApprove moves a pending change to APPROVED, optionally overriding
// the suggested retail.
func ChangeApprove(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change service unavailable"))
			return
		}

		id, err := int64URLParam(r, "changeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeApproveRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		change, err := svc.Approve(r.Context(), id, middleware.UserFromContext(r.Context()), payload.RetailOverride)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, changes.FromModel(change))
	}
}

// ChangeReject moves a pending change to REJECTED.
func ChangeReject(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change service unavailable"))
			return
		}

		id, err := int64URLParam(r, "changeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		change, err := svc.Reject(r.Context(), id, middleware.UserFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, changes.FromModel(change))
	}
}

// ChangeApply writes an approved change through to the live item, audit row
// first.
func ChangeApply(svc changes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "change service unavailable"))
			return
		}

		id, err := int64URLParam(r, "changeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		change, err := svc.Apply(r.Context(), id, middleware.UserFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, changes.FromModel(change))
	}
}
