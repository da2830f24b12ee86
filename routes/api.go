package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes registers the /v1 resource routes.
func SetupAPIRoutes(router *gin.Engine, ctrl Controllers) {
	v1 := router.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", ctrl.Products.List)
			products.POST("", ctrl.Products.Create)
			products.GET("/search", ctrl.Products.Search)
			products.GET("/stats", ctrl.Products.Stats)
			products.GET("/barcode/:code", ctrl.Products.FindByBarcode)
			products.GET("/:id", ctrl.Products.Get)
			products.PUT("/:id", ctrl.Products.Update)
			products.DELETE("/:id", ctrl.Products.Delete)
			products.POST("/:id/prices", ctrl.Products.AddPrice)
			products.POST("/:id/interaction", ctrl.Products.RecordInteraction)
			products.POST("/:id/prices/:priceID/confirmations", ctrl.Products.Confirm)
			products.DELETE("/:id/prices/:priceID/confirmations", ctrl.Products.Unconfirm)
		}

		merchants := v1.Group("/merchants")
		{
			merchants.GET("", ctrl.Merchants.List)
			merchants.POST("", ctrl.Merchants.Create)
			merchants.GET("/chains", ctrl.Merchants.Chains)
			merchants.GET("/search", ctrl.Merchants.Search)
			merchants.POST("/duplicates", ctrl.Merchants.CheckDuplicates)
			merchants.GET("/:id", ctrl.Merchants.Get)
			merchants.PUT("/:id", ctrl.Merchants.Update)
			merchants.DELETE("/:id", ctrl.Merchants.Delete)
			merchants.POST("/:id/addresses", ctrl.Merchants.AddAddress)
			merchants.DELETE("/:id/addresses/:addressID", ctrl.Merchants.DeleteAddress)
			merchants.POST("/:id/usage", ctrl.Merchants.RecordUsage)
		}

		users := v1.Group("/users")
		{
			users.GET("/:userID/confirmations", ctrl.Users.Confirmations)
			users.DELETE("/:userID/confirmations", ctrl.Users.ClearConfirmations)
		}

		v1.GET("/preferences", ctrl.Users.Preferences)
		v1.PUT("/preferences", ctrl.Users.UpdatePreferences)

		v1.GET("/health", ctrl.Health.Live)
	}
}
