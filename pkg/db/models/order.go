package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ermiasgashu/suq-backend/pkg/enums"
	"github.com/ermiasgashu/suq-backend/pkg/types"
)

// Order is the frozen snapshot produced when a checkout session confirms.
// Monetary fields are copied from the pricing breakdown at placement and
// never recomputed afterwards.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     int64               `gorm:"column:order_number;not null;default:nextval('orders_order_number_seq');uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CartID          uuid.UUID           `gorm:"column:cart_id;type:uuid;not null"`
	OrderStatus     enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Currency        enums.Currency      `gorm:"column:currency;not null;default:'ETB'"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	SubtotalCents   int64               `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int64               `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents        int64               `gorm:"column:tax_cents;not null;default:0"`
	DiscountCents   int64               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents      int64               `gorm:"column:total_cents;not null"`
	TrackingNumber  *string             `gorm:"column:tracking_number"`
	Notes           *string             `gorm:"column:notes"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	ShippedAt       *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	Items           []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
