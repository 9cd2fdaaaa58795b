package enums

import "fmt"

// CartItemWarningType flags non-fatal conditions surfaced on a cart line.
type CartItemWarningType string

const (
	// CartItemWarningLimitedStock is raised when a requested quantity was
	// clamped down to the product's available stock.
	CartItemWarningLimitedStock CartItemWarningType = "limited_stock"
	// CartItemWarningPriceChanged is raised when the live catalog price has
	// drifted from the captured unit price on the line.
	CartItemWarningPriceChanged CartItemWarningType = "price_changed"
)

var validCartItemWarningTypes = []CartItemWarningType{
	CartItemWarningLimitedStock,
	CartItemWarningPriceChanged,
}

// String implements fmt.Stringer.
func (c CartItemWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartItemWarningType.
func (c CartItemWarningType) IsValid() bool {
	for _, candidate := range validCartItemWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemWarningType converts raw input into a CartItemWarningType.
func ParseCartItemWarningType(value string) (CartItemWarningType, error) {
	for _, candidate := range validCartItemWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item warning type %q", value)
}
