package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/api/middleware"
	"github.com/costlessmarkets/pricebook-backend/api/responses"
	"github.com/costlessmarkets/pricebook-backend/api/validators"
	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/internal/items"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
	"github.com/costlessmarkets/pricebook-backend/pkg/pagination"
)

type itemCreateRequest struct {
	VendorCode   string           `json:"vendor_code" validate:"required,max=20"`
	UPC          string           `json:"upc" validate:"required"`
	Seq          *int             `json:"seq,omitempty"`
	LinkGroupID  *int64           `json:"link_group_id,omitempty"`
	BRDataItemNo *string          `json:"brdata_item_no,omitempty"`
	Description  string           `json:"description" validate:"required,max=100"`
	CasePack     int              `json:"case_pack" validate:"required,min=1"`
	SizeAlpha    *string          `json:"size_alpha,omitempty"`
	CaseCost     decimal.Decimal  `json:"case_cost"`
	Allowance    decimal.Decimal  `json:"allowance"`
	PriceQty     int              `json:"price_qty,omitempty"`
	RetailPrice  *decimal.Decimal `json:"retail_price,omitempty"`
	IsDisco      bool             `json:"is_disco,omitempty"`
	IsTPR        bool             `json:"is_tpr,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// ItemCreate adds one price book line.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var payload itemCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), items.CreateItemInput{
			VendorCode:   payload.VendorCode,
			UPC:          payload.UPC,
			Seq:          payload.Seq,
			LinkGroupID:  payload.LinkGroupID,
			BRDataItemNo: payload.BRDataItemNo,
			Description:  payload.Description,
			CasePack:     payload.CasePack,
			SizeAlpha:    payload.SizeAlpha,
			CaseCost:     payload.CaseCost,
			Allowance:    payload.Allowance,
			PriceQty:     payload.PriceQty,
			RetailPrice:  payload.RetailPrice,
			IsDisco:      payload.IsDisco,
			IsTPR:        payload.IsTPR,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, items.FromModel(item))
	}
}

// ItemDetail returns one item by its natural key.
func ItemDetail(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		item, err := svc.Get(r.Context(), vendorCodeParam(r), upcParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items.FromModel(item))
	}
}

type itemUpdateRequest struct {
	Seq            *int             `json:"seq,omitempty"`
	LinkGroupID    *int64           `json:"link_group_id,omitempty"`
	ClearLinkGroup bool             `json:"clear_link_group,omitempty"`
	BRDataItemNo   *string          `json:"brdata_item_no,omitempty"`
	Description    *string          `json:"description,omitempty" validate:"omitempty,min=1,max=100"`
	CasePack       *int             `json:"case_pack,omitempty" validate:"omitempty,min=1"`
	SizeAlpha      *string          `json:"size_alpha,omitempty"`
	CaseCost       *decimal.Decimal `json:"case_cost,omitempty"`
	Allowance      *decimal.Decimal `json:"allowance,omitempty"`
	PriceQty       *int             `json:"price_qty,omitempty" validate:"omitempty,min=1"`
	IsDisco        *bool            `json:"is_disco,omitempty"`
	IsTPR          *bool            `json:"is_tpr,omitempty"`
	VendorComments *string          `json:"vendor_comments,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// ItemUpdate adjusts the mutable item fields. Retail price is deliberately
// absent here; it only moves through the retail or cost-change endpoints so
// every price move leaves an audit row.
func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var payload itemUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), vendorCodeParam(r), upcParam(r), items.UpdateItemInput{
			Seq:            payload.Seq,
			LinkGroupID:    payload.LinkGroupID,
			ClearLinkGroup: payload.ClearLinkGroup,
			BRDataItemNo:   payload.BRDataItemNo,
			Description:    payload.Description,
			CasePack:       payload.CasePack,
			SizeAlpha:      payload.SizeAlpha,
			CaseCost:       payload.CaseCost,
			Allowance:      payload.Allowance,
			PriceQty:       payload.PriceQty,
			IsDisco:        payload.IsDisco,
			IsTPR:          payload.IsTPR,
			VendorComments: payload.VendorComments,
			Notes:          payload.Notes,
			IsActive:       payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items.FromModel(item))
	}
}

type retailChangeRequest struct {
	NewRetail decimal.Decimal `json:"new_retail"`
	Reason    string          `json:"reason" validate:"required"`
	Notes     *string         `json:"notes,omitempty"`
}

// ItemChangeRetail records a buyer-initiated retail move with its audit row.
func ItemChangeRetail(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var payload retailChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := enums.ParsePriceChangeReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price change reason"))
			return
		}

		item, err := svc.ChangeRetail(r.Context(), vendorCodeParam(r), upcParam(r), items.ChangeRetailInput{
			NewRetail: payload.NewRetail,
			Reason:    reason,
			User:      middleware.UserFromContext(r.Context()),
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items.FromModel(item))
	}
}

type movementUpdateRequest struct {
	Movement int `json:"movement" validate:"min=0"`
}

// ItemUpdateMovement records an externally sourced weekly movement figure.
func ItemUpdateMovement(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var payload movementUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateMovement(r.Context(), vendorCodeParam(r), upcParam(r), payload.Movement)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items.FromModel(item))
	}
}

// ItemHistory returns the audit trail for one item, newest first.
func ItemHistory(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.History(r.Context(), vendorCodeParam(r), upcParam(r), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history.PageFromRepo(page))
	}
}

// VendorPriceBook returns a vendor's items grouped for display.
func VendorPriceBook(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		groups, err := svc.PriceBook(r.Context(), vendorCodeParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items.GroupsFromService(groups))
	}
}

func upcParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "upc"))
}
