package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/quickshop/quickshop-backend/internal/cart"
	checkoutsvc "github.com/quickshop/quickshop-backend/internal/checkout"
	"github.com/quickshop/quickshop-backend/internal/discounts"
	orderssvc "github.com/quickshop/quickshop-backend/internal/orders"
	pkgauth "github.com/quickshop/quickshop-backend/pkg/auth"
	"github.com/quickshop/quickshop-backend/pkg/config"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/pricing"
)

type routerDiscountsStub struct{}

func (routerDiscountsStub) Create(ctx context.Context, storeID uuid.UUID, input discounts.RuleInput) (*models.DiscountRule, error) {
	return &models.DiscountRule{ID: uuid.New(), StoreID: storeID}, nil
}

func (routerDiscountsStub) Update(ctx context.Context, storeID, ruleID uuid.UUID, input discounts.RuleInput) (*models.DiscountRule, error) {
	return &models.DiscountRule{ID: ruleID, StoreID: storeID}, nil
}

func (routerDiscountsStub) Get(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error) {
	return &models.DiscountRule{ID: ruleID, StoreID: storeID}, nil
}

func (routerDiscountsStub) List(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error) {
	return nil, nil
}

func (routerDiscountsStub) SetStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error {
	return nil
}

func (routerDiscountsStub) Delete(ctx context.Context, storeID, ruleID uuid.UUID) error {
	return nil
}

func (routerDiscountsStub) ActiveEngineRules(ctx context.Context, storeID uuid.UUID) ([]pricing.Rule, error) {
	return nil, nil
}

func (routerDiscountsStub) EngineUsage(ctx context.Context, rules []pricing.Rule, customerID string) (map[uuid.UUID]pricing.Usage, error) {
	return nil, nil
}

type routerCartStub struct{}

func (routerCartStub) UpsertCart(ctx context.Context, input cartsvc.UpsertCartInput) (*models.CartRecord, error) {
	return &models.CartRecord{ID: uuid.New(), StoreID: input.StoreID}, nil
}

func (routerCartStub) GetActiveCart(ctx context.Context, storeID uuid.UUID, customerID string) (*models.CartRecord, error) {
	return &models.CartRecord{ID: uuid.New(), StoreID: storeID, CustomerID: customerID}, nil
}

func (routerCartStub) Quote(ctx context.Context, input cartsvc.QuoteInput) (*cartsvc.Quote, error) {
	return &cartsvc.Quote{}, nil
}

type routerCheckoutStub struct{}

func (routerCheckoutStub) Checkout(ctx context.Context, input checkoutsvc.CheckoutInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), StoreID: input.StoreID}, nil
}

type routerOrdersStub struct{}

func (routerOrdersStub) Get(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID, StoreID: storeID}, nil
}

func (routerOrdersStub) List(ctx context.Context, input orderssvc.ListInput) ([]models.Order, error) {
	return []models.Order{}, nil
}

func testRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "quickshop",
			ExpirationMinutes: 5,
		},
	}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	handler := NewRouter(cfg, logg, nil, nil, nil, routerDiscountsStub{}, routerCartStub{}, routerCheckoutStub{}, routerOrdersStub{})
	return handler, cfg
}

func mintToken(t *testing.T, cfg *config.Config, role enums.ActorRole, storeID uuid.UUID, customerID string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		Role:       role,
		StoreID:    &storeID,
		CustomerID: customerID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthLive(t *testing.T) {
	handler, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterRejectsAnonymousRequests(t *testing.T) {
	handler, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterMerchantManagesDiscounts(t *testing.T) {
	handler, cfg := testRouter(t)
	token := mintToken(t, cfg, enums.ActorRoleMerchant, uuid.New(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterCustomerCannotManageDiscounts(t *testing.T) {
	handler, cfg := testRouter(t)
	token := mintToken(t, cfg, enums.ActorRoleCustomer, uuid.New(), "cust-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRouterMerchantCannotUseStorefront(t *testing.T) {
	handler, cfg := testRouter(t)
	token := mintToken(t, cfg, enums.ActorRoleMerchant, uuid.New(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRouterCustomerListsOrders(t *testing.T) {
	handler, cfg := testRouter(t)
	token := mintToken(t, cfg, enums.ActorRoleCustomer, uuid.New(), "cust-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterCheckoutRequiresIdempotencyKey(t *testing.T) {
	handler, cfg := testRouter(t)
	token := mintToken(t, cfg, enums.ActorRoleCustomer, uuid.New(), "cust-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
