package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/price-tracker/app/controllers"
	"github.com/price-tracker/app/models"
	"github.com/price-tracker/app/responses"
	"github.com/price-tracker/app/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := services.NewMemoryStore(logger)
	merchants := services.NewMerchantService(store, nil, logger)
	products := services.NewProductService(store, merchants, nil, nil, logger)
	confirmations := services.NewConfirmationService(store, products, nil, logger)
	preferences := services.NewPreferencesService(store, logger)

	router := gin.New()
	SetupAllRoutes(router, Controllers{
		Products:  controllers.NewProductController(products, confirmations, logger),
		Merchants: controllers.NewMerchantController(merchants, logger),
		Users:     controllers.NewUserController(confirmations, preferences, logger),
		Health:    controllers.NewHealthController(store, "memory", logger),
	}, logger)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/live", "/ready", "/v1/health"} {
		w := do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		health := decode[responses.HealthCheckResponse](t, w)
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "memory", health.Services["store_driver"])
	}

	w := do(t, router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNotFoundRoute(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")
}

func TestProductLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/v1/products", map[string]any{"name": "Yerba Canarias 1kg", "barcode": "7790387000010"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[models.Product](t, w)
	require.NotEmpty(t, product.ID)

	w = do(t, router, http.MethodPost, "/v1/products/"+product.ID+"/prices", map[string]any{
		"display_name": "Disco - Av. Italia 4000",
		"value":        289,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/v1/products/"+product.ID+"/prices", map[string]any{
		"display_name": "Tata - Colonia 1200",
		"value":        275,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	product = decode[models.Product](t, w)
	assert.Equal(t, 275.0, product.BestPrice)
	assert.Equal(t, "Tata - Colonia 1200", product.BestMerchant)
	assert.Equal(t, 14.0, product.PriceSpread)

	w = do(t, router, http.MethodPost, "/v1/products/"+product.ID+"/prices", map[string]any{"value": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[responses.ErrorResponse](t, w).Error)

	w = do(t, router, http.MethodGet, "/v1/products/barcode/7790387000010", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, product.ID, decode[models.Product](t, w).ID)

	w = do(t, router, http.MethodGet, "/v1/products/search?q=yerba", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[responses.ProductListResponse](t, w).Total)

	w = do(t, router, http.MethodGet, "/v1/products/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.ProductStats](t, w)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalPrices)

	w = do(t, router, http.MethodPut, "/v1/products/"+product.ID, map[string]any{"brand": "Canarias"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Canarias", decode[models.Product](t, w).Brand)

	w = do(t, router, http.MethodPost, "/v1/products/"+product.ID+"/interaction", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[models.Product](t, w).LastInteractionAt)

	w = do(t, router, http.MethodDelete, "/v1/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, "/v1/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProductRequiresName(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/v1/products", map[string]any{"brand": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[responses.ErrorResponse](t, w).Error)
}

func TestConfirmationRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/v1/products", map[string]any{"name": "Manteca"})
	require.Equal(t, http.StatusCreated, w.Code)
	product := decode[models.Product](t, w)
	w = do(t, router, http.MethodPost, "/v1/products/"+product.ID+"/prices", map[string]any{"display_name": "Disco", "value": 95})
	require.Equal(t, http.StatusCreated, w.Code)
	product = decode[models.Product](t, w)
	path := "/v1/products/" + product.ID + "/prices/" + product.Prices[0].ID + "/confirmations"

	w = do(t, router, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, path, nil, controllers.UserIDHeader, "u1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[responses.ConfirmationResponse](t, w).Confirmations)

	w = do(t, router, http.MethodPost, path, nil, controllers.UserIDHeader, "u1")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodGet, "/v1/users/u1/confirmations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	record := decode[responses.UserConfirmationsResponse](t, w)
	assert.Equal(t, []string{product.Prices[0].ID}, record.ConfirmedPriceIDs)
	assert.Equal(t, 1, record.Stats.TotalConfirmed)

	w = do(t, router, http.MethodDelete, path, nil, controllers.UserIDHeader, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[responses.ConfirmationResponse](t, w).Confirmations)

	w = do(t, router, http.MethodDelete, "/v1/users/u1/confirmations", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMerchantRoutes(t *testing.T) {
	router := newTestRouter(t)

	body := map[string]any{"name": "Tata", "street": "Av. Italia 4000", "city": "Montevideo"}
	w := do(t, router, http.MethodPost, "/v1/merchants", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	merchant := decode[models.Merchant](t, w)
	assert.Equal(t, "Other", merchant.Type)

	w = do(t, router, http.MethodPost, "/v1/merchants/duplicates", map[string]any{"name": "TATA", "street": "av. italia 4000", "city": "montevideo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"exact"`)

	w = do(t, router, http.MethodPost, "/v1/merchants", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_MERCHANT")

	body["force"] = true
	w = do(t, router, http.MethodPost, "/v1/merchants", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/v1/merchants/chains", nil)
	require.Equal(t, http.StatusOK, w.Code)
	chains := decode[responses.ChainListResponse](t, w)
	require.Equal(t, 1, chains.Total)
	assert.True(t, chains.Chains[0].IsChain)

	w = do(t, router, http.MethodPost, "/v1/merchants/"+merchant.ID+"/addresses", map[string]any{"street": "Colonia 1200"})
	require.Equal(t, http.StatusCreated, w.Code)
	merchant = decode[models.Merchant](t, w)
	require.Len(t, merchant.Addresses, 2)

	w = do(t, router, http.MethodPost, "/v1/merchants/"+merchant.ID+"/usage", map[string]any{"address_id": merchant.Addresses[1].ID})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodPost, "/v1/merchants/"+merchant.ID+"/usage", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/v1/merchants/"+merchant.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[models.Merchant](t, w).UsageCount)

	w = do(t, router, http.MethodGet, "/v1/merchants/search?q=tata", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[responses.MerchantListResponse](t, w).Total)

	w = do(t, router, http.MethodGet, "/v1/merchants?order=recent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, merchant.ID, decode[responses.MerchantListResponse](t, w).Merchants[0].ID)

	w = do(t, router, http.MethodDelete, "/v1/merchants/"+merchant.ID+"/addresses/"+merchant.Addresses[1].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodPut, "/v1/merchants/"+merchant.ID, map[string]any{"type": "Supermarket"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Supermarket", decode[models.Merchant](t, w).Type)

	w = do(t, router, http.MethodDelete, "/v1/merchants/"+merchant.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, "/v1/merchants/"+merchant.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBranchPriceUsesMerchantDirectory(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/v1/merchants", map[string]any{"name": "Disco", "street": "Rivera 100"})
	require.Equal(t, http.StatusCreated, w.Code)
	merchant := decode[models.Merchant](t, w)

	w = do(t, router, http.MethodPost, "/v1/products", map[string]any{"name": "Leche"})
	require.Equal(t, http.StatusCreated, w.Code)
	product := decode[models.Product](t, w)

	w = do(t, router, http.MethodPost, "/v1/products/"+product.ID+"/prices", map[string]any{
		"merchant_id": merchant.ID,
		"address_id":  merchant.Addresses[0].ID,
		"value":       52,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	product = decode[models.Product](t, w)
	assert.Equal(t, "Disco - Rivera 100", product.BestMerchant)
}

func TestPreferencesRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultPreferences(), decode[models.Preferences](t, w))

	w = do(t, router, http.MethodPut, "/v1/preferences", map[string]any{"currency": "usd", "unit": "kg"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Preferences{Currency: "USD", Unit: "kg"}, decode[models.Preferences](t, w))

	w = do(t, router, http.MethodPut, "/v1/preferences", map[string]any{"currency": "ZZZ"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
