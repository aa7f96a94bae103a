package controllers

import (
	"net/http"
	"time"

	"github.com/costlessmarkets/pricebook-backend/api/middleware"
	"github.com/costlessmarkets/pricebook-backend/api/responses"
	"github.com/costlessmarkets/pricebook-backend/api/validators"
	"github.com/costlessmarkets/pricebook-backend/internal/export"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

type exportRunRequest struct {
	AsOf string `json:"as_of,omitempty"`
}

// ExportRun emits the BRData file for every approved change due as of the
// given date (today when omitted).
func ExportRun(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		var payload exportRunRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var asOf time.Time
		if payload.AsOf != "" {
			parsed, err := time.Parse(dateLayout, payload.AsOf)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "as_of must be YYYY-MM-DD"))
				return
			}
			asOf = parsed
		}

		result, err := svc.Run(r.Context(), asOf, middleware.UserFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, export.ResultFromService(result))
	}
}

// ExportLog returns recent export log entries, newest first.
func ExportLog(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Log(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, export.LogEntriesFromModels(entries))
	}
}
