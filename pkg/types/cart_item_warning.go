package types

import "github.com/ermiasgashu/suq-backend/pkg/enums"

// CartItemWarning is a non-fatal signal attached to a cart line, surfaced to
// the caller alongside the otherwise-successful mutation.
type CartItemWarning struct {
	Type    enums.CartItemWarningType `json:"type"`
	Message string                    `json:"message"`
}

// CartItemWarnings is the jsonb-serialized warning list stored per line.
type CartItemWarnings []CartItemWarning

// Has reports whether a warning of the given type is present.
func (w CartItemWarnings) Has(t enums.CartItemWarningType) bool {
	for _, warning := range w {
		if warning.Type == t {
			return true
		}
	}
	return false
}
