package orders

import (
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	"github.com/google/uuid"
)

// Actor identifies who is requesting an order mutation. VendorID is set only
// for vendor tokens and scopes which orders the actor may touch.
type Actor struct {
	UserID   uuid.UUID
	VendorID *uuid.UUID
	Role     enums.ActorRole
}

// AdvanceInput carries a fulfillment advance request.
type AdvanceInput struct {
	OrderID        uuid.UUID
	Target         enums.OrderStatus
	TrackingNumber *string
	Actor          Actor
}

// CancelInput carries a cancellation or return request.
type CancelInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Reason  *string
	Actor   Actor
}

// PaymentInput carries a payment status change.
type PaymentInput struct {
	OrderID uuid.UUID
	Target  enums.PaymentStatus
	Actor   Actor
}
