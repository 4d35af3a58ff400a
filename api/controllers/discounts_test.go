package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/api/middleware"
	"github.com/quickshop/quickshop-backend/internal/discounts"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
)

type stubDiscountsService struct {
	rule      *models.DiscountRule
	rules     []models.DiscountRule
	err       error
	lastInput discounts.RuleInput
	deleted   []uuid.UUID
}

func (s *stubDiscountsService) Create(ctx context.Context, storeID uuid.UUID, input discounts.RuleInput) (*models.DiscountRule, error) {
	s.lastInput = input
	return s.rule, s.err
}

func (s *stubDiscountsService) Update(ctx context.Context, storeID, ruleID uuid.UUID, input discounts.RuleInput) (*models.DiscountRule, error) {
	s.lastInput = input
	return s.rule, s.err
}

func (s *stubDiscountsService) Get(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error) {
	return s.rule, s.err
}

func (s *stubDiscountsService) List(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error) {
	return s.rules, s.err
}

func (s *stubDiscountsService) SetStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error {
	return s.err
}

func (s *stubDiscountsService) Delete(ctx context.Context, storeID, ruleID uuid.UUID) error {
	s.deleted = append(s.deleted, ruleID)
	return s.err
}

func (s *stubDiscountsService) ActiveEngineRules(ctx context.Context, storeID uuid.UUID) ([]pricing.Rule, error) {
	return nil, nil
}

func (s *stubDiscountsService) EngineUsage(ctx context.Context, rules []pricing.Rule, customerID string) (map[uuid.UUID]pricing.Usage, error) {
	return nil, nil
}

func merchantContext(req *http.Request, storeID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithStoreID(req.Context(), storeID.String()))
}

func withRuleID(req *http.Request, ruleID uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("ruleId", ruleID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestDiscountCreateSuccess(t *testing.T) {
	storeID := uuid.New()
	rule := &models.DiscountRule{
		ID:      uuid.New(),
		StoreID: storeID,
		Title:   "Ten percent",
		Kind:    enums.DiscountKindPercentage,
		Status:  enums.DiscountStatusDraft,
	}
	stub := &stubDiscountsService{rule: rule}
	handler := DiscountCreate(stub, nil)

	body := `{"title":"Ten percent","kind":"percentage","params":{"percent":10}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts", strings.NewReader(body))
	req = merchantContext(req, storeID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastInput.Kind != enums.DiscountKindPercentage {
		t.Fatalf("kind not forwarded: %s", stub.lastInput.Kind)
	}
	if !stub.lastInput.Automatic || !stub.lastInput.Stackable {
		t.Fatalf("expected automatic/stackable defaults, got %+v", stub.lastInput)
	}

	var envelope struct {
		Data discountRuleResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != rule.ID {
		t.Fatalf("unexpected rule id: %s", envelope.Data.ID)
	}
}

func TestDiscountCreateRejectsMissingTitle(t *testing.T) {
	handler := DiscountCreate(&stubDiscountsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts", strings.NewReader(`{"kind":"percentage"}`))
	req = merchantContext(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDiscountListFiltersByStatus(t *testing.T) {
	storeID := uuid.New()
	stub := &stubDiscountsService{rules: []models.DiscountRule{{ID: uuid.New(), StoreID: storeID}}}
	handler := DiscountList(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts?status=active", nil)
	req = merchantContext(req, storeID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDiscountListRejectsUnknownStatus(t *testing.T) {
	handler := DiscountList(&stubDiscountsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts?status=bogus", nil)
	req = merchantContext(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDiscountGetNotFound(t *testing.T) {
	handler := DiscountGet(&stubDiscountsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/x", nil)
	req = merchantContext(req, uuid.New())
	req = withRuleID(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDiscountDelete(t *testing.T) {
	stub := &stubDiscountsService{}
	handler := DiscountDelete(stub, nil)
	ruleID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/discounts/"+ruleID.String(), nil)
	req = merchantContext(req, uuid.New())
	req = withRuleID(req, ruleID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(stub.deleted) != 1 || stub.deleted[0] != ruleID {
		t.Fatalf("delete not forwarded: %+v", stub.deleted)
	}
}
