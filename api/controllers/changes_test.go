package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/api/middleware"
	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

type testChangesService struct {
	submitFn  func(ctx context.Context, input changes.SubmitInput) (*models.PendingCostChange, error)
	approveFn func(ctx context.Context, changeID int64, user string, override *decimal.Decimal) (*models.PendingCostChange, error)
	rejectFn  func(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error)
	applyFn   func(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error)
	getFn     func(ctx context.Context, changeID int64) (*models.PendingCostChange, error)
	listFn    func(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error)
}

func (s *testChangesService) Submit(ctx context.Context, input changes.SubmitInput) (*models.PendingCostChange, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, input)
	}
	return nil, nil
}

func (s *testChangesService) Approve(ctx context.Context, changeID int64, user string, override *decimal.Decimal) (*models.PendingCostChange, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, changeID, user, override)
	}
	return nil, nil
}

func (s *testChangesService) Reject(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, changeID, user)
	}
	return nil, nil
}

func (s *testChangesService) Apply(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error) {
	if s.applyFn != nil {
		return s.applyFn(ctx, changeID, user)
	}
	return nil, nil
}

func (s *testChangesService) Get(ctx context.Context, changeID int64) (*models.PendingCostChange, error) {
	if s.getFn != nil {
		return s.getFn(ctx, changeID)
	}
	return nil, nil
}

func (s *testChangesService) ListByStatus(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error) {
	if s.listFn != nil {
		return s.listFn(ctx, status, vendorCode)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func samplePendingChange() *models.PendingCostChange {
	suggested := decimal.RequireFromString("3.88")
	return &models.PendingCostChange{
		ID:              42,
		ItemID:          7,
		VendorCode:      "FRITO",
		UPC:             "028400043025",
		NewCaseCost:     decimal.RequireFromString("11.00"),
		NewAllowance:    decimal.Zero,
		EffectiveDate:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		SuggestedRetail: &suggested,
		PrevCaseCost:    decimal.RequireFromString("10.00"),
		PrevAllowance:   decimal.Zero,
		PrevCasePack:    4,
		Status:          enums.ChangeStatusPending,
		ChangeSource:    enums.ChangeSourceManual,
		SubmittedBy:     "rep",
	}
}

func TestChangeSubmitSuccess(t *testing.T) {
	var got changes.SubmitInput
	svc := &testChangesService{
		submitFn: func(ctx context.Context, input changes.SubmitInput) (*models.PendingCostChange, error) {
			got = input
			return samplePendingChange(), nil
		},
	}

	body := `{"new_case_cost":"11.00","new_allowance":"0.50","effective_date":"2025-07-15","notes":"price letter"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/FRITO/028400043025/cost-changes", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), "rep"))
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ChangeSubmit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.VendorCode != "FRITO" || got.UPC != "028400043025" {
		t.Fatalf("unexpected item key %s/%s", got.VendorCode, got.UPC)
	}
	if got.User != "rep" {
		t.Fatalf("expected acting user from context, got %q", got.User)
	}
	if !got.NewCaseCost.Equal(decimal.RequireFromString("11.00")) {
		t.Fatalf("unexpected case cost %s", got.NewCaseCost)
	}
	if !got.EffectiveDate.Equal(time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected effective date %s", got.EffectiveDate)
	}

	var envelope struct {
		Data changes.ChangeDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != 42 {
		t.Fatalf("unexpected change id %d", envelope.Data.ID)
	}
	if envelope.Data.Status != enums.ChangeStatusPending {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestChangeSubmitRejectsBadDate(t *testing.T) {
	called := false
	svc := &testChangesService{
		submitFn: func(ctx context.Context, input changes.SubmitInput) (*models.PendingCostChange, error) {
			called = true
			return nil, nil
		},
	}

	body := `{"new_case_cost":"11.00","effective_date":"07/15/2025"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/FRITO/028400043025/cost-changes", strings.NewReader(body))
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ChangeSubmit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if called {
		t.Fatal("service must not be called on a malformed date")
	}
}

func TestChangeApprovePassesOverride(t *testing.T) {
	var gotID int64
	var gotUser string
	var gotOverride *decimal.Decimal
	svc := &testChangesService{
		approveFn: func(ctx context.Context, changeID int64, user string, override *decimal.Decimal) (*models.PendingCostChange, error) {
			gotID, gotUser, gotOverride = changeID, user, override
			change := samplePendingChange()
			change.Status = enums.ChangeStatusApproved
			return change, nil
		},
	}

	body := `{"retail_override":"3.98"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cost-changes/42/approve", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), "buyer1"))
	req = withURLParams(req, map[string]string{"changeID": "42"})

	resp := httptest.NewRecorder()
	ChangeApprove(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotID != 42 || gotUser != "buyer1" {
		t.Fatalf("unexpected call %d/%q", gotID, gotUser)
	}
	if gotOverride == nil || !gotOverride.Equal(decimal.RequireFromString("3.98")) {
		t.Fatalf("override not forwarded: %v", gotOverride)
	}
}

func TestChangeApproveWithoutBody(t *testing.T) {
	var gotOverride *decimal.Decimal
	overrideSeen := false
	svc := &testChangesService{
		approveFn: func(ctx context.Context, changeID int64, user string, override *decimal.Decimal) (*models.PendingCostChange, error) {
			gotOverride, overrideSeen = override, true
			change := samplePendingChange()
			change.Status = enums.ChangeStatusApproved
			return change, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cost-changes/42/approve", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), "buyer1"))
	req = withURLParams(req, map[string]string{"changeID": "42"})

	resp := httptest.NewRecorder()
	ChangeApprove(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !overrideSeen {
		t.Fatal("service was not called")
	}
	if gotOverride != nil {
		t.Fatalf("empty body must mean no override, got %v", gotOverride)
	}
}

func TestChangeApplyMapsStateConflict(t *testing.T) {
	svc := &testChangesService{
		applyFn: func(ctx context.Context, changeID int64, user string) (*models.PendingCostChange, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot apply a PENDING change")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cost-changes/42/apply", nil)
	req = withURLParams(req, map[string]string{"changeID": "42"})

	resp := httptest.NewRecorder()
	ChangeApply(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "cannot apply a PENDING change" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestChangeListParsesFilters(t *testing.T) {
	var gotStatus enums.ChangeStatus
	var gotVendor string
	svc := &testChangesService{
		listFn: func(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error) {
			gotStatus, gotVendor = status, vendorCode
			return []models.PendingCostChange{*samplePendingChange()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cost-changes?status=APPROVED&vendor=FRITO", nil)
	resp := httptest.NewRecorder()
	ChangeList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotStatus != enums.ChangeStatusApproved {
		t.Fatalf("unexpected status filter %s", gotStatus)
	}
	if gotVendor != "FRITO" {
		t.Fatalf("unexpected vendor filter %q", gotVendor)
	}
}

func TestChangeListDefaultsToPending(t *testing.T) {
	var gotStatus enums.ChangeStatus
	svc := &testChangesService{
		listFn: func(ctx context.Context, status enums.ChangeStatus, vendorCode string) ([]models.PendingCostChange, error) {
			gotStatus = status
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cost-changes", nil)
	resp := httptest.NewRecorder()
	ChangeList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotStatus != enums.ChangeStatusPending {
		t.Fatalf("worklist should default to PENDING, got %s", gotStatus)
	}
}
