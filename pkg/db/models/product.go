package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is one catalog listing; prices live in integer minor units.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	SKU        string           `gorm:"column:sku;not null"`
	Title      string           `gorm:"column:title;not null"`
	PriceCents int64            `gorm:"column:price_cents;not null"`
	Categories pq.StringArray   `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive   bool             `gorm:"column:is_active;not null;default:true"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
