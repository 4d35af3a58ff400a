package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is one priced line of an order. FinalTotalCents reflects every
// discount the engine applied; OriginalTotalCents is the pre-discount amount.
// Granted lines (IsGranted) are free units added by buy_x_get_y discounts.
type OrderLineItem struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID          uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID          *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Qty                int        `gorm:"column:qty;not null"`
	UnitPriceCents     int64      `gorm:"column:unit_price_cents;not null"`
	OriginalTotalCents int64      `gorm:"column:original_total_cents;not null"`
	FinalTotalCents    int64      `gorm:"column:final_total_cents;not null"`
	IsGranted          bool       `gorm:"column:is_granted;not null;default:false"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
}
