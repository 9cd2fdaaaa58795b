package pricing

import (
	"fmt"

	"github.com/ermiasgashu/suq-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// Config carries the pricing knobs applied to every breakdown. Rates are
// decimals ("0.15" is 15%), amounts are integer cents.
type Config struct {
	FreeShippingThresholdCents int64
	FlatShippingCostCents      int64
	TaxRate                    decimal.Decimal
	CommissionRate             decimal.Decimal
}

// Validate rejects configurations that would produce nonsense totals.
func (c Config) Validate() error {
	if c.FreeShippingThresholdCents < 0 {
		return fmt.Errorf("free shipping threshold must not be negative")
	}
	if c.FlatShippingCostCents < 0 {
		return fmt.Errorf("flat shipping cost must not be negative")
	}
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("tax rate must not be negative")
	}
	if c.CommissionRate.IsNegative() {
		return fmt.Errorf("commission rate must not be negative")
	}
	return nil
}

// Breakdown is the full order-total decomposition. Total is always the
// arithmetic sum of its components, clamped at zero; it is never set
// independently.
type Breakdown struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// Compute derives the breakdown for a subtotal. Pure and deterministic: the
// cart page, the checkout review step, and the frozen order snapshot all call
// this with the same inputs and must agree on the same total.
func Compute(subtotalCents, discountCents int64, cfg Config) (Breakdown, error) {
	if subtotalCents < 0 {
		return Breakdown{}, fmt.Errorf("subtotal must not be negative, got %d", subtotalCents)
	}
	if discountCents < 0 {
		discountCents = 0
	}

	// The free-shipping boundary is inclusive: a subtotal exactly at the
	// threshold ships free.
	var shipping int64
	if subtotalCents < cfg.FreeShippingThresholdCents {
		shipping = cfg.FlatShippingCostCents
	}

	tax, err := money.TaxCents(subtotalCents, cfg.TaxRate)
	if err != nil {
		return Breakdown{}, err
	}

	total := subtotalCents + shipping + tax - discountCents
	if total < 0 {
		total = 0
	}

	return Breakdown{
		SubtotalCents: subtotalCents,
		ShippingCents: shipping,
		TaxCents:      tax,
		DiscountCents: discountCents,
		TotalCents:    total,
	}, nil
}

// CommissionCents returns the platform's cut of an order total, rounded to
// the nearest cent.
func CommissionCents(totalCents int64, rate decimal.Decimal) int64 {
	if rate.IsNegative() || totalCents <= 0 {
		return 0
	}
	return decimal.NewFromInt(totalCents).Mul(rate).Round(0).IntPart()
}
