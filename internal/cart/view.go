package cart

import (
	"github.com/ermiasgashu/suq-backend/pkg/money"
	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/ermiasgashu/suq-backend/pkg/types"
	"github.com/google/uuid"
)

// ItemView is a single cart line enriched with catalog data.
type ItemView struct {
	ProductID          uuid.UUID              `json:"product_id"`
	VendorID           uuid.UUID              `json:"vendor_id"`
	Title              string                 `json:"title"`
	SKU                string                 `json:"sku"`
	Quantity           int                    `json:"quantity"`
	UnitPriceCents     int64                  `json:"unit_price_cents"`
	UnitPriceFormatted string                 `json:"unit_price_formatted"`
	LineSubtotalCents  int64                  `json:"line_subtotal_cents"`
	CustomizationNote  *string                `json:"customization_note,omitempty"`
	Warnings           types.CartItemWarnings `json:"warnings,omitempty"`
}

// View is the cart as presented to the customer: lines plus the full
// pricing breakdown derived from them.
type View struct {
	CartID *uuid.UUID `json:"cart_id,omitempty"`
	Items  []ItemView `json:"items"`
	// ItemCount sums line quantities, not lines; it feeds badge displays.
	ItemCount      int               `json:"item_count"`
	Breakdown      pricing.Breakdown `json:"breakdown"`
	TotalFormatted string            `json:"total_formatted"`
}

func emptyView(cfg pricing.Config) (*View, error) {
	breakdown, err := pricing.Compute(0, 0, cfg)
	if err != nil {
		return nil, err
	}
	// An empty cart owes nothing, including shipping.
	breakdown.ShippingCents = 0
	breakdown.TotalCents = 0
	return &View{
		Items:          []ItemView{},
		Breakdown:      breakdown,
		TotalFormatted: money.FormatCents(0),
	}, nil
}
