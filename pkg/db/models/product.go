package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents the canonical vendor listing.
type Product struct {
	ID                  uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID            uuid.UUID      `gorm:"column:vendor_id;type:uuid;not null"`
	SKU                 string         `gorm:"column:sku;not null"`
	Title               string         `gorm:"column:title;not null"`
	Description         *string        `gorm:"column:description"`
	Tags                pq.StringArray `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	PriceCents          int64          `gorm:"column:price_cents;not null"`
	CompareAtPriceCents *int64         `gorm:"column:compare_at_price_cents"`
	IsActive            bool           `gorm:"column:is_active;not null;default:true"`
	Inventory           *InventoryItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Vendor              *Vendor        `gorm:"foreignKey:VendorID"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
