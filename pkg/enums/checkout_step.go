package enums

import "fmt"

// CheckoutStep tracks progress through the guarded checkout flow.
type CheckoutStep string

const (
	CheckoutStepShipping CheckoutStep = "shipping"
	CheckoutStepPayment  CheckoutStep = "payment"
	CheckoutStepReview   CheckoutStep = "review"
	CheckoutStepPlaced   CheckoutStep = "placed"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepShipping,
	CheckoutStepPayment,
	CheckoutStepReview,
	CheckoutStepPlaced,
}

var checkoutStepOrder = map[CheckoutStep]int{
	CheckoutStepShipping: 0,
	CheckoutStepPayment:  1,
	CheckoutStepReview:   2,
	CheckoutStepPlaced:   3,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// Before reports whether the step comes earlier than other in the flow.
func (c CheckoutStep) Before(other CheckoutStep) bool {
	a, okA := checkoutStepOrder[c]
	b, okB := checkoutStepOrder[other]
	return okA && okB && a < b
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range validCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
