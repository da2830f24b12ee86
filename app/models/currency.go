package models

// Currencies supported ISO 4217 codes, grouped by region.
var Currencies = []string{
	// Americas
	"UYU", "ARS", "USD", "BRL", "CLP", "COP", "MXN", "PYG", "PEN", "CAD",
	// Europe
	"EUR", "GBP", "CHF", "SEK", "NOK", "DKK", "PLN", "CZK", "HUF", "RON",
	// Asia
	"JPY", "CNY", "INR", "KRW", "SGD", "HKD", "THB", "MYR", "IDR", "PHP", "VND",
	// Oceania, Africa, Middle East
	"AUD", "NZD", "ZAR", "EGP", "NGN", "AED", "SAR", "ILS", "TRY",
}

// IsSupportedCurrency reports whether code is in Currencies.
func IsSupportedCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}
