package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountRedemption is one use of a discount rule by one order. Usage counts
// fed to the pricing engine are aggregates over this table, written only
// inside the checkout transaction.
type DiscountRedemption struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RuleID     uuid.UUID `gorm:"column:rule_id;type:uuid;not null;index"`
	StoreID    uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CustomerID string    `gorm:"column:customer_id;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
