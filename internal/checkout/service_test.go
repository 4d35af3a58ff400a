package checkout

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/internal/cart"
	"github.com/quickshop/quickshop-backend/internal/discounts"
	"github.com/quickshop/quickshop-backend/pkg/config"
	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/metrics"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOrderRepo struct {
	orders []*models.Order
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderLineItem) error {
	order.ID = uuid.New()
	for i := range items {
		items[i].OrderID = order.ID
	}
	order.LineItems = items
	f.orders = append(f.orders, order)
	return nil
}

type fakeCartRepo struct {
	store    *models.Store
	products map[uuid.UUID]models.Product
	variants map[uuid.UUID]models.ProductVariant
	carts    map[uuid.UUID]*models.CartRecord
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		store: &models.Store{
			ID:       uuid.New(),
			Slug:     "demo",
			Name:     "Demo Store",
			Currency: enums.CurrencyUSD,
			IsActive: true,
		},
		products: make(map[uuid.UUID]models.Product),
		variants: make(map[uuid.UUID]models.ProductVariant),
		carts:    make(map[uuid.UUID]*models.CartRecord),
	}
}

func (f *fakeCartRepo) addProduct(priceCents int64, categories ...string) models.Product {
	product := models.Product{
		ID:         uuid.New(),
		StoreID:    f.store.ID,
		SKU:        uuid.NewString()[:8],
		Title:      "Product",
		PriceCents: priceCents,
		Categories: categories,
		IsActive:   true,
	}
	f.products[product.ID] = product
	return product
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) cart.Repository { return f }

func (f *fakeCartRepo) FindActiveCart(ctx context.Context, storeID uuid.UUID, customerID string) (*models.CartRecord, error) {
	for _, record := range f.carts {
		if record.StoreID == storeID && record.CustomerID == customerID && record.Status == enums.CartStatusActive {
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) UpsertCart(ctx context.Context, record *models.CartRecord, items []models.CartItem) (*models.CartRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	record.Items = items
	f.carts[record.ID] = record
	return record, nil
}

func (f *fakeCartRepo) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	record, ok := f.carts[cartID]
	if !ok || record.Status != enums.CartStatusActive {
		return gorm.ErrRecordNotFound
	}
	record.Status = enums.CartStatusConverted
	return nil
}

func (f *fakeCartRepo) FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	if f.store.ID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.store, nil
}

func (f *fakeCartRepo) FindProducts(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := f.products[id]; ok && product.StoreID == storeID {
			out = append(out, product)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) FindVariants(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	var out []models.ProductVariant
	for _, id := range ids {
		if variant, ok := f.variants[id]; ok {
			out = append(out, variant)
		}
	}
	return out, nil
}

type fakeDiscountsRepo struct {
	rules       []models.DiscountRule
	usage       map[uuid.UUID]discounts.UsageCount
	redemptions []*models.DiscountRedemption
}

func (f *fakeDiscountsRepo) WithTx(tx *gorm.DB) discounts.Repository { return f }

func (f *fakeDiscountsRepo) Create(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	return rule, nil
}

func (f *fakeDiscountsRepo) Update(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error) {
	return rule, nil
}

func (f *fakeDiscountsRepo) FindByID(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDiscountsRepo) ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error) {
	return f.rules, nil
}

func (f *fakeDiscountsRepo) FindActiveByStore(ctx context.Context, storeID uuid.UUID) ([]models.DiscountRule, error) {
	var out []models.DiscountRule
	for _, rule := range f.rules {
		if rule.StoreID == storeID && rule.Status == enums.DiscountStatusActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeDiscountsRepo) UpdateStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error {
	return nil
}

func (f *fakeDiscountsRepo) Delete(ctx context.Context, storeID, ruleID uuid.UUID) error {
	return nil
}

func (f *fakeDiscountsRepo) CreateRedemption(ctx context.Context, redemption *models.DiscountRedemption) error {
	redemption.ID = uuid.New()
	f.redemptions = append(f.redemptions, redemption)
	return nil
}

func (f *fakeDiscountsRepo) UsageCounts(ctx context.Context, ruleIDs []uuid.UUID, customerID string) (map[uuid.UUID]discounts.UsageCount, error) {
	out := make(map[uuid.UUID]discounts.UsageCount)
	for _, id := range ruleIDs {
		if count, ok := f.usage[id]; ok {
			out[id] = count
		}
	}
	return out, nil
}

func percentRule(storeID uuid.UUID, percent int64) models.DiscountRule {
	value := decimal.NewFromInt(percent)
	return models.DiscountRule{
		ID:          uuid.New(),
		StoreID:     storeID,
		Title:       "Percent off",
		Kind:        enums.DiscountKindPercentage,
		Params:      types.DiscountParams{Percent: &value},
		TargetScope: enums.DiscountTargetAllProducts,
		Automatic:   true,
		Stackable:   true,
		Status:      enums.DiscountStatusActive,
	}
}

func newTestService(t *testing.T, orders *fakeOrderRepo, carts *fakeCartRepo, rules *fakeDiscountsRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: &bytes.Buffer{}})
	svc, err := NewService(fakeTx{}, orders, carts, rules, config.PricingConfig{}, logg, metrics.NewPricingMetrics(nil))
	require.NoError(t, err)
	return svc
}

func TestCheckoutPlacesOrderWithDiscount(t *testing.T) {
	carts := newFakeCartRepo()
	product := carts.addProduct(1000)
	rules := &fakeDiscountsRepo{rules: []models.DiscountRule{percentRule(carts.store.ID, 10)}}
	orders := &fakeOrderRepo{}
	svc := newTestService(t, orders, carts, rules)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		StoreID:    carts.store.ID,
		CustomerID: "cust-1",
		Lines:      []cart.LineInput{{ProductID: product.ID, Qty: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), order.SubtotalCents)
	assert.Equal(t, int64(200), order.DiscountCents)
	assert.Equal(t, int64(1800), order.TotalCents)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.CurrencyUSD, order.Currency)

	require.Len(t, order.LineItems, 1)
	assert.Equal(t, int64(2000), order.LineItems[0].OriginalTotalCents)
	assert.Equal(t, int64(1800), order.LineItems[0].FinalTotalCents)

	require.Len(t, order.AppliedDiscounts, 1)
	assert.Equal(t, rules.rules[0].ID, order.AppliedDiscounts[0].RuleID)
	assert.Equal(t, int64(200), order.AppliedDiscounts[0].AmountCents)

	require.Len(t, rules.redemptions, 1)
	assert.Equal(t, order.ID, rules.redemptions[0].OrderID)
	assert.Equal(t, "cust-1", rules.redemptions[0].CustomerID)
}

func TestCheckoutFromActiveCartConvertsIt(t *testing.T) {
	carts := newFakeCartRepo()
	product := carts.addProduct(500)
	code := "SAVE10"
	record := &models.CartRecord{
		ID:           uuid.New(),
		StoreID:      carts.store.ID,
		CustomerID:   "cust-1",
		Currency:     enums.CurrencyUSD,
		Status:       enums.CartStatusActive,
		RedeemedCode: &code,
		Items: []models.CartItem{
			{ProductID: product.ID, Qty: 4, UnitPriceCents: 500},
		},
	}
	carts.carts[record.ID] = record

	percent := decimal.NewFromInt(10)
	codeRule := models.DiscountRule{
		ID:          uuid.New(),
		StoreID:     carts.store.ID,
		Title:       "Code percent",
		Kind:        enums.DiscountKindPercentage,
		Params:      types.DiscountParams{Percent: &percent},
		TargetScope: enums.DiscountTargetAllProducts,
		Automatic:   false,
		Code:        &code,
		Stackable:   true,
		Status:      enums.DiscountStatusActive,
	}
	rules := &fakeDiscountsRepo{rules: []models.DiscountRule{codeRule}}
	orders := &fakeOrderRepo{}
	svc := newTestService(t, orders, carts, rules)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		StoreID:    carts.store.ID,
		CustomerID: "cust-1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), order.SubtotalCents)
	assert.Equal(t, int64(200), order.DiscountCents)
	require.NotNil(t, order.RedeemedCode)
	assert.Equal(t, "SAVE10", *order.RedeemedCode)
	assert.Equal(t, enums.CartStatusConverted, record.Status)
}

func TestCheckoutWithoutCartOrLinesRejected(t *testing.T) {
	carts := newFakeCartRepo()
	svc := newTestService(t, &fakeOrderRepo{}, carts, &fakeDiscountsRepo{})

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		StoreID:    carts.store.ID,
		CustomerID: "cust-1",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckoutEnforcesUsageLimit(t *testing.T) {
	carts := newFakeCartRepo()
	product := carts.addProduct(1000)

	rule := percentRule(carts.store.ID, 10)
	maxUses := 1
	rule.MaxUses = &maxUses
	rules := &fakeDiscountsRepo{
		rules: []models.DiscountRule{rule},
		usage: map[uuid.UUID]discounts.UsageCount{rule.ID: {Total: 1}},
	}
	orders := &fakeOrderRepo{}
	svc := newTestService(t, orders, carts, rules)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		StoreID:    carts.store.ID,
		CustomerID: "cust-1",
		Lines:      []cart.LineInput{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), order.DiscountCents)
	assert.Equal(t, int64(1000), order.TotalCents)
	assert.Empty(t, order.AppliedDiscounts)
	assert.Empty(t, rules.redemptions)
}

func TestCheckoutPersistsGrantedFreeItems(t *testing.T) {
	carts := newFakeCartRepo()
	product := carts.addProduct(300)

	buyQty, getQty := 2, 1
	rule := models.DiscountRule{
		ID:          uuid.New(),
		StoreID:     carts.store.ID,
		Title:       "Buy 2 get 1",
		Kind:        enums.DiscountKindBuyXGetY,
		Params:      types.DiscountParams{BuyQty: &buyQty, GetQty: &getQty},
		TargetScope: enums.DiscountTargetAllProducts,
		Automatic:   true,
		Stackable:   true,
		Status:      enums.DiscountStatusActive,
	}
	rules := &fakeDiscountsRepo{rules: []models.DiscountRule{rule}}
	orders := &fakeOrderRepo{}
	svc := newTestService(t, orders, carts, rules)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		StoreID:    carts.store.ID,
		CustomerID: "cust-1",
		Lines:      []cart.LineInput{{ProductID: product.ID, Qty: 2}},
	})
	require.NoError(t, err)

	// Grants never reduce the paid total.
	assert.Equal(t, int64(600), order.SubtotalCents)
	assert.Equal(t, int64(0), order.DiscountCents)
	assert.Equal(t, int64(600), order.TotalCents)

	require.Len(t, order.LineItems, 2)
	granted := order.LineItems[1]
	assert.True(t, granted.IsGranted)
	assert.Equal(t, product.ID, granted.ProductID)
	assert.Equal(t, 1, granted.Qty)
	assert.Equal(t, int64(300), granted.OriginalTotalCents)
	assert.Equal(t, int64(0), granted.FinalTotalCents)
}
