package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
)

// Repository persists placed orders. Reads live in the orders package; this
// side only ever writes inside the checkout transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderLineItem) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order write repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderLineItem) error {
	if err := r.db.WithContext(ctx).Omit("LineItems").Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	order.LineItems = items
	return nil
}
