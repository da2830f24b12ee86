package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/app/requests"
	"github.com/price-tracker/app/responses"
	"github.com/price-tracker/app/services"
)

// ProductController handles /v1/products.
type ProductController struct {
	products      *services.ProductService
	confirmations *services.ConfirmationService
	logger        *zap.Logger
}

// NewProductController creates a ProductController.
func NewProductController(products *services.ProductService, confirmations *services.ConfirmationService, logger *zap.Logger) *ProductController {
	return &ProductController{
		products:      products,
		confirmations: confirmations,
		logger:        logger,
	}
}

// List returns all products; ?order=recent sorts by last activity.
func (pc *ProductController) List(c *gin.Context) {
	var (
		products []models.Product
		err      error
	)
	if c.Query("order") == "recent" {
		products, err = pc.products.ListByRecentActivity(c.Request.Context())
	} else {
		products, err = pc.products.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.ProductListResponse{Products: products, Total: len(products)})
}

func (pc *ProductController) Search(c *gin.Context) {
	products, err := pc.products.SearchByName(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.ProductListResponse{Products: products, Total: len(products)})
}

func (pc *ProductController) FindByBarcode(c *gin.Context) {
	p, err := pc.products.FindByBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) Stats(c *gin.Context) {
	stats, err := pc.products.Stats(c.Request.Context())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (pc *ProductController) Create(c *gin.Context) {
	var req requests.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.products.Save(c.Request.Context(), req.ToModel())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *ProductController) Get(c *gin.Context) {
	p, err := pc.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) Update(c *gin.Context) {
	var req requests.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.products.Update(c.Request.Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) Delete(c *gin.Context) {
	if err := pc.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (pc *ProductController) AddPrice(c *gin.Context) {
	var req requests.AddPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.products.AddPrice(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *ProductController) RecordInteraction(c *gin.Context) {
	p, err := pc.products.RecordInteraction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Confirm upvotes a price on behalf of the X-User-ID user.
func (pc *ProductController) Confirm(c *gin.Context) {
	res, err := pc.confirmations.Confirm(c.Request.Context(),
		c.GetHeader(UserIDHeader), c.Param("id"), c.Param("priceID"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewConfirmationResponse(res))
}

func (pc *ProductController) Unconfirm(c *gin.Context) {
	res, err := pc.confirmations.Unconfirm(c.Request.Context(),
		c.GetHeader(UserIDHeader), c.Param("id"), c.Param("priceID"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewConfirmationResponse(res))
}
