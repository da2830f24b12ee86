package models

import "time"

// UserConfirmations price entries a user has vouched for.
type UserConfirmations struct {
	UserID            string    `json:"user_id"`
	ConfirmedPriceIDs []string  `json:"confirmed_price_ids"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Contains reports whether priceID is already confirmed.
func (u *UserConfirmations) Contains(priceID string) bool {
	for _, id := range u.ConfirmedPriceIDs {
		if id == priceID {
			return true
		}
	}
	return false
}

// ConfirmationStats per-user confirmation counters.
type ConfirmationStats struct {
	UserID         string     `json:"user_id"`
	TotalConfirmed int        `json:"total_confirmed"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Preferences display preferences for the device owner.
type Preferences struct {
	Currency string `json:"currency"`
	Unit     string `json:"unit"`
}

// Default preference values.
const (
	DefaultCurrency = "UYU"
	DefaultUnit     = "unit"
)

// DefaultPreferences returns the preferences used before anything is saved.
func DefaultPreferences() Preferences {
	return Preferences{Currency: DefaultCurrency, Unit: DefaultUnit}
}
