package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySuffix is appended to every formatted amount; the platform is
// single-currency.
const CurrencySuffix = "ETB"

var centsPerUnit = decimal.NewFromInt(100)

// FromFloat converts a float amount in whole currency units into cents.
// NaN and infinite inputs are rejected instead of producing garbage output.
func FromFloat(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("invalid amount %v", amount)
	}
	return decimal.NewFromFloat(amount).Mul(centsPerUnit).Round(0).IntPart(), nil
}

// FormatCents renders an amount in cents as "1,825.00 ETB".
func FormatCents(cents int64) string {
	units := decimal.NewFromInt(cents).Div(centsPerUnit)
	return groupThousands(units.StringFixed(2)) + " " + CurrencySuffix
}

// FormatPrice validates and renders a float amount in whole currency units.
func FormatPrice(amount float64) (string, error) {
	cents, err := FromFloat(amount)
	if err != nil {
		return "", err
	}
	return FormatCents(cents), nil
}

// DiscountPercent returns the rounded percentage drop from compareAtCents to
// priceCents, in 0..100. A compare-at price at or below the selling price, or
// a zero compare-at price, means no discount.
func DiscountPercent(priceCents, compareAtCents int64) int {
	if compareAtCents <= 0 || compareAtCents <= priceCents {
		return 0
	}
	drop := decimal.NewFromInt(compareAtCents - priceCents).
		Div(decimal.NewFromInt(compareAtCents)).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	if drop > 100 {
		drop = 100
	}
	return int(drop)
}

// TaxCents computes tax on a subtotal at the given rate, rounded to the
// nearest cent. Negative rates are a configuration error.
func TaxCents(subtotalCents int64, rate decimal.Decimal) (int64, error) {
	if rate.IsNegative() {
		return 0, fmt.Errorf("tax rate must not be negative, got %s", rate)
	}
	return decimal.NewFromInt(subtotalCents).Mul(rate).Round(0).IntPart(), nil
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
