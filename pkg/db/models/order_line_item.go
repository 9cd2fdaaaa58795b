package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures the snapshot of each item within an order. Product
// identity survives as a nullable reference so deleted listings do not
// orphan historical orders.
type OrderLineItem struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID         *uuid.UUID `gorm:"column:product_id;type:uuid"`
	VendorID          uuid.UUID  `gorm:"column:vendor_id;type:uuid;not null"`
	Title             string     `gorm:"column:title;not null"`
	SKU               string     `gorm:"column:sku;not null"`
	UnitPriceCents    int64      `gorm:"column:unit_price_cents;not null"`
	Quantity          int        `gorm:"column:quantity;not null"`
	LineSubtotalCents int64      `gorm:"column:line_subtotal_cents;not null"`
	CustomizationNote *string    `gorm:"column:customization_note"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
