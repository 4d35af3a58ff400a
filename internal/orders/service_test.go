package orders

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
)

type fakeOrderRepo struct {
	orders []models.Order
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeOrderRepo) FindByID(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == orderID && f.orders[i].StoreID == storeID {
			return &f.orders[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) ListByCustomer(ctx context.Context, storeID uuid.UUID, customerID string, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.StoreID == storeID && order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(t *testing.T, repo *fakeOrderRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: &bytes.Buffer{}})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	return svc
}

func seedOrder(storeID uuid.UUID, customerID string, totalCents int64) models.Order {
	return models.Order{
		ID:            uuid.New(),
		StoreID:       storeID,
		CustomerID:    customerID,
		Status:        enums.OrderStatusPending,
		Currency:      enums.CurrencyUSD,
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
		CreatedAt:     time.Now(),
	}
}

func TestGetScopesToStore(t *testing.T) {
	storeID := uuid.New()
	order := seedOrder(storeID, "cust-1", 1500)
	repo := &fakeOrderRepo{orders: []models.Order{order}}
	svc := newTestService(t, repo)

	found, err := svc.Get(context.Background(), storeID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.Get(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListReturnsCustomerOrders(t *testing.T) {
	storeID := uuid.New()
	repo := &fakeOrderRepo{orders: []models.Order{
		seedOrder(storeID, "cust-1", 1000),
		seedOrder(storeID, "cust-1", 2000),
		seedOrder(storeID, "cust-2", 3000),
	}}
	svc := newTestService(t, repo)

	orders, err := svc.List(context.Background(), ListInput{StoreID: storeID, CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestListRequiresCustomer(t *testing.T) {
	svc := newTestService(t, &fakeOrderRepo{})

	_, err := svc.List(context.Background(), ListInput{StoreID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
