package requests

import (
	"time"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/app/services"
	"github.com/price-tracker/internal/pricing"
)

// CreateProductRequest body of POST /v1/products.
type CreateProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Barcode  string `json:"barcode,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
}

// ToModel builds an unsaved product.
func (r CreateProductRequest) ToModel() *models.Product {
	return &models.Product{
		Name:     r.Name,
		Barcode:  r.Barcode,
		Brand:    r.Brand,
		Category: r.Category,
		Image:    r.Image,
	}
}

// UpdateProductRequest body of PUT /v1/products/:id. Omitted fields are kept.
type UpdateProductRequest struct {
	Name     *string `json:"name,omitempty"`
	Barcode  *string `json:"barcode,omitempty"`
	Brand    *string `json:"brand,omitempty"`
	Category *string `json:"category,omitempty"`
	Image    *string `json:"image,omitempty"`
}

func (r UpdateProductRequest) ToPatch() services.ProductPatch {
	return services.ProductPatch{
		Name:     r.Name,
		Barcode:  r.Barcode,
		Brand:    r.Brand,
		Category: r.Category,
		Image:    r.Image,
	}
}

// AddPriceRequest body of POST /v1/products/:id/prices. A price naming both
// merchant_id and address_id refers to a stored branch; anything else is
// taken as a free-text label.
type AddPriceRequest struct {
	ID            string     `json:"id,omitempty"`
	MerchantID    string     `json:"merchant_id,omitempty"`
	AddressID     string     `json:"address_id,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	Merchant      string     `json:"merchant,omitempty"`
	Address       string     `json:"address,omitempty"`
	Value         float64    `json:"value"`
	Currency      string     `json:"currency,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Confirmations int        `json:"confirmations,omitempty"`
	UserID        string     `json:"user_id,omitempty"`
}

func (r AddPriceRequest) ToInput() pricing.PriceInput {
	in := pricing.PriceInput{
		ID:            r.ID,
		Value:         r.Value,
		Currency:      r.Currency,
		Confirmations: r.Confirmations,
		UserID:        r.UserID,
	}
	if r.Timestamp != nil {
		in.Timestamp = *r.Timestamp
	}

	if r.MerchantID != "" && r.AddressID != "" {
		in.Source = pricing.BranchSource{MerchantID: r.MerchantID, AddressID: r.AddressID}
	} else {
		in.Source = pricing.LegacySource{DisplayName: r.DisplayName, Merchant: r.Merchant, Address: r.Address}
	}
	return in
}
