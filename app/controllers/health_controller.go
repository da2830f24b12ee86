package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/price-tracker/app/responses"
	"github.com/price-tracker/app/services"
)

// Version reported by health endpoints.
const Version = "1.0.0"

const readinessProbeKey = "__readiness_probe"

// HealthController answers liveness and readiness probes.
type HealthController struct {
	store     services.KVStore
	driver    string
	startTime time.Time
	logger    *zap.Logger
}

// NewHealthController creates a HealthController for the store built from driver.
func NewHealthController(store services.KVStore, driver string, logger *zap.Logger) *HealthController {
	return &HealthController{
		store:     store,
		driver:    driver,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Live reports that the process is up.
func (hc *HealthController) Live(c *gin.Context) {
	c.JSON(http.StatusOK, hc.report("healthy", map[string]string{"api": "healthy"}))
}

// Ready also checks the store answers a read.
func (hc *HealthController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if _, _, err := hc.store.Get(ctx, readinessProbeKey); err != nil {
		hc.logger.Warn("Readiness check failed", zap.String("driver", hc.driver), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, hc.report("unhealthy", map[string]string{
			"api":   "healthy",
			"store": "unhealthy",
		}))
		return
	}
	c.JSON(http.StatusOK, hc.report("healthy", map[string]string{
		"api":   "healthy",
		"store": "healthy",
	}))
}

func (hc *HealthController) report(status string, deps map[string]string) responses.HealthCheckResponse {
	deps["store_driver"] = hc.driver
	return responses.HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(hc.startTime).String(),
		Version:   Version,
		Services:  deps,
	}
}
