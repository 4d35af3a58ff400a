package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/types"
)

// CartRecord is the persisted active cart for one storefront customer.
type CartRecord struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID      string                `gorm:"column:customer_id;not null;index"`
	Status          enums.CartStatus      `gorm:"column:status;not null;default:'active'"`
	Currency        enums.Currency        `gorm:"column:currency;not null;default:'USD'"`
	CustomerContext types.CustomerContext `gorm:"column:customer_context;type:jsonb;not null;default:'{}'"`
	RedeemedCode    *string               `gorm:"column:redeemed_code"`
	ConvertedAt     *time.Time            `gorm:"column:converted_at"`
	Items           []CartItem            `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
