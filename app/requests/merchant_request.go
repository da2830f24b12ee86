package requests

import (
	"github.com/price-tracker/app/services"
	"github.com/price-tracker/internal/dedup"
)

// CreateMerchantRequest body of POST /v1/merchants.
type CreateMerchantRequest struct {
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type,omitempty"`
	Photo        string `json:"photo,omitempty"`
	Street       string `json:"street" binding:"required"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	// Force creates the merchant even when it looks like a duplicate.
	Force bool `json:"force,omitempty"`
}

func (r CreateMerchantRequest) ToInput() services.MerchantInput {
	return services.MerchantInput{
		Name:         r.Name,
		Type:         r.Type,
		Photo:        r.Photo,
		Street:       r.Street,
		Neighborhood: r.Neighborhood,
		City:         r.City,
	}
}

func (r CreateMerchantRequest) ToCandidate() dedup.Candidate {
	return dedup.Candidate{Name: r.Name, Street: r.Street, Neighborhood: r.Neighborhood, City: r.City}
}

// CheckDuplicatesRequest body of POST /v1/merchants/duplicates.
type CheckDuplicatesRequest struct {
	Name         string `json:"name" binding:"required"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
}

func (r CheckDuplicatesRequest) ToCandidate() dedup.Candidate {
	return dedup.Candidate{Name: r.Name, Street: r.Street, Neighborhood: r.Neighborhood, City: r.City}
}

// UpdateMerchantRequest body of PUT /v1/merchants/:id.
type UpdateMerchantRequest struct {
	Name  *string `json:"name,omitempty"`
	Type  *string `json:"type,omitempty"`
	Photo *string `json:"photo,omitempty"`
}

func (r UpdateMerchantRequest) ToPatch() services.MerchantPatch {
	return services.MerchantPatch{Name: r.Name, Type: r.Type, Photo: r.Photo}
}

// AddAddressRequest body of POST /v1/merchants/:id/addresses.
type AddAddressRequest struct {
	Street       string `json:"street" binding:"required"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
}

func (r AddAddressRequest) ToInput() services.AddressInput {
	return services.AddressInput{Street: r.Street, Neighborhood: r.Neighborhood, City: r.City}
}

// RecordUsageRequest body of POST /v1/merchants/:id/usage.
type RecordUsageRequest struct {
	AddressID string `json:"address_id,omitempty"`
}

// UpdatePreferencesRequest body of PUT /v1/preferences.
type UpdatePreferencesRequest struct {
	Currency *string `json:"currency,omitempty"`
	Unit     *string `json:"unit,omitempty"`
}
