package types

import "strings"

// DefaultCountry is the only country the platform ships to.
const DefaultCountry = "Ethiopia"

// Address is the shipping/billing address shape stored on carts, checkout
// sessions, and orders (persisted as jsonb).
type Address struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	SubCity   *string `json:"sub_city,omitempty"`
	Country   string  `json:"country"`
	IsDefault bool    `json:"is_default,omitempty"`
}

// Normalize trims whitespace and pins the country to the platform default.
func (a Address) Normalize() Address {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.Region = strings.TrimSpace(a.Region)
	if a.SubCity != nil {
		sub := strings.TrimSpace(*a.SubCity)
		if sub == "" {
			a.SubCity = nil
		} else {
			a.SubCity = &sub
		}
	}
	a.Country = DefaultCountry
	return a
}

// Validate reports the first missing required field, or "" when complete.
func (a Address) Validate() string {
	if strings.TrimSpace(a.Street) == "" {
		return "street"
	}
	if strings.TrimSpace(a.City) == "" {
		return "city"
	}
	if strings.TrimSpace(a.Region) == "" {
		return "region"
	}
	return ""
}
