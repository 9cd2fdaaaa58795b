package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ermiasgashu/suq-backend/pkg/types"
)

// CartItem persists product-level snapshots tied to a CartRecord. The unit
// price is captured at add time; stale prices surface as warnings rather
// than silently repricing the line.
type CartItem struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID            uuid.UUID              `gorm:"column:cart_id;type:uuid;not null"`
	ProductID         uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	VendorID          uuid.UUID              `gorm:"column:vendor_id;type:uuid;not null"`
	Quantity          int                    `gorm:"column:quantity;not null"`
	UnitPriceCents    int64                  `gorm:"column:unit_price_cents;not null"`
	CustomizationNote *string                `gorm:"column:customization_note"`
	Warnings          types.CartItemWarnings `gorm:"column:warnings;type:jsonb;serializer:json"`
	LineSubtotalCents int64                  `gorm:"column:line_subtotal_cents;not null"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
