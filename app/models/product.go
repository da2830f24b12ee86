package models

import "time"

// Trend direction of a product's recent prices against its older history.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Sentinel merchant labels used by price aggregation.
const (
	NoDataMerchant  = "No data"
	UnknownMerchant = "Unknown merchant"
)

// Product a tracked item and its full price history.
type Product struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Barcode           string       `json:"barcode,omitempty"`
	Brand             string       `json:"brand,omitempty"`
	Category          string       `json:"category,omitempty"`
	Image             string       `json:"image,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	LastInteractionAt *time.Time   `json:"last_interaction_at,omitempty"`
	Prices            []PriceEntry `json:"prices"`

	// Derived on every price mutation.
	BestPrice    float64 `json:"best_price"`
	BestMerchant string  `json:"best_merchant"`
	PriceSpread  float64 `json:"price_spread"`
	Trend        Trend   `json:"trend"`
	TrendPercent int     `json:"trend_percent"`
}

// RecentActivity is the last interaction time, falling back to the last update.
func (p *Product) RecentActivity() time.Time {
	if p.LastInteractionAt != nil {
		return *p.LastInteractionAt
	}
	return p.UpdatedAt
}

// PriceEntry one observed price at one merchant branch.
type PriceEntry struct {
	ID            string    `json:"id"`
	MerchantID    string    `json:"merchant_id,omitempty"`
	AddressID     string    `json:"address_id,omitempty"`
	Merchant      string    `json:"merchant,omitempty"`
	Address       string    `json:"address,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	Value         float64   `json:"value"`
	Currency      string    `json:"currency,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Confirmations int       `json:"confirmations"`
	UserID        string    `json:"user_id,omitempty"`
	IsBest        bool      `json:"is_best"`
}

// Label is the grouping key for aggregation: display name, then merchant
// name, then UnknownMerchant.
func (e PriceEntry) Label() string {
	switch {
	case e.DisplayName != "":
		return e.DisplayName
	case e.Merchant != "":
		return e.Merchant
	default:
		return UnknownMerchant
	}
}

// FindPrice returns the index of the entry with the given ID, or -1.
func (p *Product) FindPrice(priceID string) int {
	for i := range p.Prices {
		if p.Prices[i].ID == priceID {
			return i
		}
	}
	return -1
}

// ProductStats aggregate counters over every stored product.
type ProductStats struct {
	TotalProducts     int `json:"total_products"`
	TotalPrices       int `json:"total_prices"`
	AveragePerProduct int `json:"average_prices_per_product"`
}
