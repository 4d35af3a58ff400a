package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// Store is one merchant tenant on the platform.
type Store struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string         `gorm:"column:slug;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null"`
	Currency  enums.Currency `gorm:"column:currency;not null;default:'USD'"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
