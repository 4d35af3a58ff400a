package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

// Order is a placed checkout, including the applied-discount snapshot the
// pricing engine produced for it.
type Order struct {
	ID               uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID          uuid.UUID                      `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID       string                         `gorm:"column:customer_id;not null;index"`
	Status           enums.OrderStatus              `gorm:"column:status;not null;default:'pending'"`
	Currency         enums.Currency                 `gorm:"column:currency;not null;default:'USD'"`
	SubtotalCents    int64                          `gorm:"column:subtotal_cents;not null"`
	DiscountCents    int64                          `gorm:"column:discount_cents;not null;default:0"`
	TotalCents       int64                          `gorm:"column:total_cents;not null"`
	FreeShipping     bool                           `gorm:"column:free_shipping;not null;default:false"`
	RedeemedCode     *string                        `gorm:"column:redeemed_code"`
	AppliedDiscounts types.AppliedDiscountSnapshots `gorm:"column:applied_discounts;type:jsonb;not null;default:'[]'"`
	LineItems        []OrderLineItem                `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}
