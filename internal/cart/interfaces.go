package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
)

// Repository defines persistence for carts plus the catalog reads needed to
// assemble a pricing snapshot.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveCart(ctx context.Context, storeID uuid.UUID, customerID string) (*models.CartRecord, error)
	UpsertCart(ctx context.Context, record *models.CartRecord, items []models.CartItem) (*models.CartRecord, error)
	MarkConverted(ctx context.Context, cartID uuid.UUID) error
	FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	FindProducts(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
	FindVariants(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error)
}
