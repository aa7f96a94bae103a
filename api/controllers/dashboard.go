package controllers

import (
	"net/http"
	"time"

	"github.com/costlessmarkets/pricebook-backend/api/responses"
	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

const recentHistoryLimit = 10

type dashboardResponse struct {
	PendingCount  int64               `json:"pending_count"`
	ApprovedCount int64               `json:"approved_count"`
	DueCount      int64               `json:"due_count"`
	DueChanges    []changes.ChangeDTO `json:"due_changes"`
	RecentHistory []history.RecordDTO `json:"recent_history"`
}

// Dashboard returns the buyer landing page counts: worklist sizes, changes
// due for export, and the latest audit activity.
func Dashboard(changesRepo *changes.Repository, historyRepo *history.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if changesRepo == nil || historyRepo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard dependencies unavailable"))
			return
		}

		ctx := r.Context()
		now := time.Now()

		pending, err := changesRepo.CountByStatus(ctx, enums.ChangeStatusPending)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending changes"))
			return
		}

		approved, err := changesRepo.CountByStatus(ctx, enums.ChangeStatusApproved)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved changes"))
			return
		}

		due, err := changesRepo.ListDue(ctx, now)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list due changes"))
			return
		}

		recent, err := historyRepo.Recent(ctx, recentHistoryLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent history"))
			return
		}

		responses.WriteSuccess(w, dashboardResponse{
			PendingCount:  pending,
			ApprovedCount: approved,
			DueCount:      int64(len(due)),
			DueChanges:    changes.FromModels(due),
			RecentHistory: history.FromModels(recent),
		})
	}
}
