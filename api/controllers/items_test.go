package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/costlessmarkets/pricebook-backend/api/middleware"
	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/internal/items"
	"github.com/costlessmarkets/pricebook-backend/pkg/db/models"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	pkgerrors "github.com/costlessmarkets/pricebook-backend/pkg/errors"
	"github.com/costlessmarkets/pricebook-backend/pkg/pagination"
)

type testItemsService struct {
	createFn         func(ctx context.Context, input items.CreateItemInput) (*models.Item, error)
	updateFn         func(ctx context.Context, vendorCode, upc string, input items.UpdateItemInput) (*models.Item, error)
	getFn            func(ctx context.Context, vendorCode, upc string) (*models.Item, error)
	priceBookFn      func(ctx context.Context, vendorCode string) ([]items.PriceBookGroup, error)
	changeRetailFn   func(ctx context.Context, vendorCode, upc string, input items.ChangeRetailInput) (*models.Item, error)
	updateMovementFn func(ctx context.Context, vendorCode, upc string, movement int) (*models.Item, error)
	historyFn        func(ctx context.Context, vendorCode, upc string, params pagination.Params) (*history.Page, error)
}

func (s *testItemsService) Create(ctx context.Context, input items.CreateItemInput) (*models.Item, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s *testItemsService) Update(ctx context.Context, vendorCode, upc string, input items.UpdateItemInput) (*models.Item, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, vendorCode, upc, input)
	}
	return nil, nil
}

func (s *testItemsService) Get(ctx context.Context, vendorCode, upc string) (*models.Item, error) {
	if s.getFn != nil {
		return s.getFn(ctx, vendorCode, upc)
	}
	return nil, nil
}

func (s *testItemsService) PriceBook(ctx context.Context, vendorCode string) ([]items.PriceBookGroup, error) {
	if s.priceBookFn != nil {
		return s.priceBookFn(ctx, vendorCode)
	}
	return nil, nil
}

func (s *testItemsService) ChangeRetail(ctx context.Context, vendorCode, upc string, input items.ChangeRetailInput) (*models.Item, error) {
	if s.changeRetailFn != nil {
		return s.changeRetailFn(ctx, vendorCode, upc, input)
	}
	return nil, nil
}

func (s *testItemsService) UpdateMovement(ctx context.Context, vendorCode, upc string, movement int) (*models.Item, error) {
	if s.updateMovementFn != nil {
		return s.updateMovementFn(ctx, vendorCode, upc, movement)
	}
	return nil, nil
}

func (s *testItemsService) History(ctx context.Context, vendorCode, upc string, params pagination.Params) (*history.Page, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, vendorCode, upc, params)
	}
	return nil, nil
}

func sampleItem() *models.Item {
	retail := decimal.RequireFromString("3.88")
	return &models.Item{
		ID:          7,
		VendorCode:  "FRITO",
		UPC:         "028400043025",
		Description: "LAYS CLASSIC 8OZ",
		CasePack:    4,
		CaseCost:    decimal.RequireFromString("10.00"),
		Allowance:   decimal.Zero,
		PriceQty:    1,
		RetailPrice: &retail,
		IsActive:    true,
	}
}

func TestItemDetailReturnsDerivedFields(t *testing.T) {
	svc := &testItemsService{
		getFn: func(ctx context.Context, vendorCode, upc string) (*models.Item, error) {
			if vendorCode != "FRITO" || upc != "028400043025" {
				t.Fatalf("unexpected lookup %s/%s", vendorCode, upc)
			}
			return sampleItem(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/FRITO/028400043025", nil)
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ItemDetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data items.ItemDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.NetCaseCost.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected net case cost %s", envelope.Data.NetCaseCost)
	}
	if envelope.Data.UnitCost == nil || !envelope.Data.UnitCost.Equal(decimal.RequireFromString("2.50")) {
		t.Fatalf("unexpected unit cost %v", envelope.Data.UnitCost)
	}
}

func TestItemDetailNotFound(t *testing.T) {
	svc := &testItemsService{
		getFn: func(ctx context.Context, vendorCode, upc string) (*models.Item, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/FRITO/000000000000", nil)
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "000000000000"})

	resp := httptest.NewRecorder()
	ItemDetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestItemChangeRetailForwardsActingUser(t *testing.T) {
	var got items.ChangeRetailInput
	svc := &testItemsService{
		changeRetailFn: func(ctx context.Context, vendorCode, upc string, input items.ChangeRetailInput) (*models.Item, error) {
			got = input
			return sampleItem(), nil
		},
	}

	body := `{"new_retail":"4.18","reason":"COMPETITIVE","notes":"match winco"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/FRITO/028400043025/retail", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), "buyer1"))
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ItemChangeRetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.User != "buyer1" {
		t.Fatalf("expected acting user from context, got %q", got.User)
	}
	if got.Reason != enums.PriceChangeReasonCompetitive {
		t.Fatalf("unexpected reason %s", got.Reason)
	}
	if !got.NewRetail.Equal(decimal.RequireFromString("4.18")) {
		t.Fatalf("unexpected retail %s", got.NewRetail)
	}
}

func TestItemChangeRetailRejectsUnknownReason(t *testing.T) {
	called := false
	svc := &testItemsService{
		changeRetailFn: func(ctx context.Context, vendorCode, upc string, input items.ChangeRetailInput) (*models.Item, error) {
			called = true
			return nil, nil
		},
	}

	body := `{"new_retail":"4.18","reason":"BECAUSE"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/FRITO/028400043025/retail", strings.NewReader(body))
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ItemChangeRetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if called {
		t.Fatal("service must not be called for an unknown reason")
	}
}

func TestItemHistoryPassesPagination(t *testing.T) {
	var gotParams pagination.Params
	svc := &testItemsService{
		historyFn: func(ctx context.Context, vendorCode, upc string, params pagination.Params) (*history.Page, error) {
			gotParams = params
			return &history.Page{NextCursor: "42"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/FRITO/028400043025/history?limit=5&cursor=99", nil)
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ItemHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotParams.Limit != 5 || gotParams.Cursor != "99" {
		t.Fatalf("unexpected params %+v", gotParams)
	}

	var envelope struct {
		Data history.PageDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.NextCursor != "42" {
		t.Fatalf("unexpected cursor %q", envelope.Data.NextCursor)
	}
}

func TestItemHistoryRejectsBadLimit(t *testing.T) {
	svc := &testItemsService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/FRITO/028400043025/history?limit=nope", nil)
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO", "upc": "028400043025"})

	resp := httptest.NewRecorder()
	ItemHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestVendorPriceBookGroupsItems(t *testing.T) {
	svc := &testItemsService{
		priceBookFn: func(ctx context.Context, vendorCode string) ([]items.PriceBookGroup, error) {
			if vendorCode != "FRITO" {
				t.Fatalf("unexpected vendor %q", vendorCode)
			}
			return []items.PriceBookGroup{
				{LinkCode: "CHIPS", LinkGroupName: "Chips 2/$5", Items: []models.Item{*sampleItem()}},
				{LinkCode: "", LinkGroupName: "", Items: []models.Item{*sampleItem()}},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/FRITO/pricebook", nil)
	req = withURLParams(req, map[string]string{"vendorCode": "FRITO"})

	resp := httptest.NewRecorder()
	VendorPriceBook(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []items.PriceBookGroupDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(envelope.Data))
	}
	if envelope.Data[0].LinkCode != "CHIPS" {
		t.Fatalf("unexpected group order: %+v", envelope.Data[0])
	}
	if len(envelope.Data[1].Items) != 1 {
		t.Fatalf("ungrouped section missing items")
	}
}
