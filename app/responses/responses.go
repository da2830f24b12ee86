package responses

import (
	"github.com/price-tracker/app/models"
	"github.com/price-tracker/app/services"
	"github.com/price-tracker/internal/dedup"
)

// ErrorResponse body of every non-2xx reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// HealthCheckResponse body of /health, /ready and /live.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

type MerchantListResponse struct {
	Merchants []models.Merchant `json:"merchants"`
	Total     int               `json:"total"`
}

type ChainListResponse struct {
	Chains []models.MerchantChain `json:"chains"`
	Total  int                    `json:"total"`
}

// DuplicateMerchantResponse returned with 409 when a create looks like a duplicate.
type DuplicateMerchantResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Verdict dedup.Verdict `json:"verdict"`
}

// ConfirmationResponse body of confirm and unconfirm.
type ConfirmationResponse struct {
	Confirmations int             `json:"confirmations"`
	Product       *models.Product `json:"product"`
}

func NewConfirmationResponse(r *services.ConfirmResult) ConfirmationResponse {
	return ConfirmationResponse{Confirmations: r.Confirmations, Product: r.Product}
}

// UserConfirmationsResponse body of GET /v1/users/:userID/confirmations.
type UserConfirmationsResponse struct {
	ConfirmedPriceIDs []string                 `json:"confirmed_price_ids"`
	Stats             models.ConfirmationStats `json:"stats"`
}
