package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

// DiscountRule is the persisted form of one discount definition. The pricing
// engine consumes a point-in-time copy of these rows; it never reads the table
// itself.
type DiscountRule struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID          uuid.UUID                 `gorm:"column:store_id;type:uuid;not null;index"`
	Title            string                    `gorm:"column:title;not null"`
	Kind             enums.DiscountKind        `gorm:"column:kind;not null"`
	Params           types.DiscountParams      `gorm:"column:params;type:jsonb;not null"`
	TargetScope      enums.DiscountTargetScope `gorm:"column:target_scope;not null;default:'all_products'"`
	ProductIDs       pq.StringArray            `gorm:"column:product_ids;type:text[];not null;default:ARRAY[]::text[]"`
	VariantIDs       pq.StringArray            `gorm:"column:variant_ids;type:text[];not null;default:ARRAY[]::text[]"`
	Categories       pq.StringArray            `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	Audience         types.AudienceSpec        `gorm:"column:audience;type:jsonb;not null;default:'{}'"`
	Automatic        bool                      `gorm:"column:automatic;not null;default:true"`
	Code             *string                   `gorm:"column:code"`
	Stackable        bool                      `gorm:"column:stackable;not null;default:true"`
	Priority         int                       `gorm:"column:priority;not null;default:0"`
	MaxUses          *int                      `gorm:"column:max_uses"`
	PerCustomerLimit *int                      `gorm:"column:per_customer_limit"`
	StartsAt         *time.Time                `gorm:"column:starts_at"`
	EndsAt           *time.Time                `gorm:"column:ends_at"`
	MinSubtotalCents *int64                    `gorm:"column:min_subtotal_cents"`
	MinItemCount     *int                      `gorm:"column:min_item_count"`
	Status           enums.DiscountStatus      `gorm:"column:status;not null;default:'draft'"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
