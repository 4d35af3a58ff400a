package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
)

// Repository defines the read side of order persistence. Writes happen in
// the checkout package only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, storeID uuid.UUID, customerID string, limit, offset int) ([]models.Order, error)
}
