package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickshop/quickshop-backend/pkg/db/models"
	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// Repository defines persistence operations for discount rules and their
// redemption history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error)
	Update(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error)
	FindByID(ctx context.Context, storeID, ruleID uuid.UUID) (*models.DiscountRule, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.DiscountStatus) ([]models.DiscountRule, error)
	FindActiveByStore(ctx context.Context, storeID uuid.UUID) ([]models.DiscountRule, error)
	UpdateStatus(ctx context.Context, storeID, ruleID uuid.UUID, status enums.DiscountStatus) error
	Delete(ctx context.Context, storeID, ruleID uuid.UUID) error
	CreateRedemption(ctx context.Context, redemption *models.DiscountRedemption) error
	UsageCounts(ctx context.Context, ruleIDs []uuid.UUID, customerID string) (map[uuid.UUID]UsageCount, error)
}

// UsageCount is the point-in-time redemption tally for one rule.
type UsageCount struct {
	Total      int
	ByCustomer int
}
