package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/price-tracker/app/controllers"
)

// SetupWebRoutes serves the service description at /.
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Price Tracker Service",
			"version": controllers.Version,
			"endpoints": map[string]string{
				"products":    "/v1/products",
				"merchants":   "/v1/merchants",
				"chains":      "/v1/merchants/chains",
				"preferences": "/v1/preferences",
				"health":      "/health",
			},
		})
	})
}

// SetupHealthRoutes registers the probe endpoints.
func SetupHealthRoutes(router *gin.Engine, health *controllers.HealthController) {
	router.GET("/health", health.Live)
	router.GET("/live", health.Live)
	router.GET("/ready", health.Ready)
}
