package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/api/middleware"
	cartsvc "github.com/quickshop/quickshop-backend/internal/cart"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
)

type stubCartService struct {
	quote          *cartsvc.Quote
	record         *models.CartRecord
	err            error
	lastQuoteInput cartsvc.QuoteInput
}

func (s *stubCartService) UpsertCart(ctx context.Context, input cartsvc.UpsertCartInput) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) GetActiveCart(ctx context.Context, storeID uuid.UUID, customerID string) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) Quote(ctx context.Context, input cartsvc.QuoteInput) (*cartsvc.Quote, error) {
	s.lastQuoteInput = input
	return s.quote, s.err
}

func storefrontContext(req *http.Request, storeID uuid.UUID) *http.Request {
	ctx := middleware.WithStoreID(req.Context(), storeID.String())
	ctx = middleware.WithCustomerID(ctx, "cust-1")
	return req.WithContext(ctx)
}

func storefrontOnlyStore(ctx context.Context, storeID uuid.UUID) context.Context {
	return middleware.WithStoreID(ctx, storeID.String())
}

func TestCartQuoteSuccess(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	stub := &stubCartService{
		quote: &cartsvc.Quote{
			Result: &pricing.PricingResult{
				Lines: []pricing.PricedLine{{
					CartLine: pricing.CartLine{
						ID:             "line-0",
						ProductID:      productID,
						UnitPriceCents: 1000,
						Quantity:       2,
					},
					OriginalTotalCents: 2000,
					FinalTotalCents:    1800,
				}},
				SubtotalCents:      2000,
				TotalDiscountCents: 200,
				TotalCents:         1800,
				Currency:           enums.CurrencyUSD,
			},
		},
	}
	handler := CartQuote(stub, nil)

	body := fmt.Sprintf(`{"lines":[{"product_id":%q,"qty":2}],"code":"SAVE10"}`, productID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", strings.NewReader(body))
	req = storefrontContext(req, storeID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data quoteResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalCents != 1800 {
		t.Fatalf("unexpected total: %d", envelope.Data.TotalCents)
	}
	if stub.lastQuoteInput.RedeemedCode != "SAVE10" {
		t.Fatalf("code not forwarded, got %q", stub.lastQuoteInput.RedeemedCode)
	}
	if stub.lastQuoteInput.CustomerID != "cust-1" {
		t.Fatalf("customer not forwarded, got %q", stub.lastQuoteInput.CustomerID)
	}
}

func TestCartQuoteRejectsEmptyLines(t *testing.T) {
	handler := CartQuote(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", strings.NewReader(`{"lines":[]}`))
	req = storefrontContext(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartQuoteMissingStoreContext(t *testing.T) {
	handler := CartQuote(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCartFetchSuccess(t *testing.T) {
	storeID := uuid.New()
	record := &models.CartRecord{
		ID:       uuid.New(),
		StoreID:  storeID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
	}
	handler := CartFetch(&stubCartService{record: record}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = storefrontContext(req, storeID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != record.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartFetchNotFound(t *testing.T) {
	handler := CartFetch(&stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = storefrontContext(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
