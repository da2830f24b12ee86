// Package routes wires HTTP handlers onto a gin engine.
//
//   - api.go: /v1 resource routes
//   - web.go: service info and health probes
//   - middleware.go: recovery, request IDs, access logging
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/price-tracker/app/controllers"
)

// Controllers every route handler needs.
type Controllers struct {
	Products  *controllers.ProductController
	Merchants *controllers.MerchantController
	Users     *controllers.UserController
	Health    *controllers.HealthController
}

// SetupAllRoutes installs middleware and every route.
func SetupAllRoutes(router *gin.Engine, ctrl Controllers, logger *zap.Logger) {
	setupMiddleware(router, logger)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctrl.Health)
	SetupAPIRoutes(router, ctrl)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}
