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

// MerchantController handles /v1/merchants.
type MerchantController struct {
	merchants *services.MerchantService
	logger    *zap.Logger
}

// NewMerchantController creates a MerchantController.
func NewMerchantController(merchants *services.MerchantService, logger *zap.Logger) *MerchantController {
	return &MerchantController{merchants: merchants, logger: logger}
}

// List returns all merchants; ?order=recent sorts by last use.
func (mc *MerchantController) List(c *gin.Context) {
	var (
		merchants []models.Merchant
		err       error
	)
	if c.Query("order") == "recent" {
		merchants, err = mc.merchants.ListByRecentUse(c.Request.Context())
	} else {
		merchants, err = mc.merchants.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.MerchantListResponse{Merchants: merchants, Total: len(merchants)})
}

func (mc *MerchantController) Chains(c *gin.Context) {
	chains, err := mc.merchants.ListChains(c.Request.Context())
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.ChainListResponse{Chains: chains, Total: len(chains)})
}

func (mc *MerchantController) Search(c *gin.Context) {
	merchants, err := mc.merchants.SearchByName(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.MerchantListResponse{Merchants: merchants, Total: len(merchants)})
}

func (mc *MerchantController) CheckDuplicates(c *gin.Context) {
	var req requests.CheckDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	verdict, err := mc.merchants.CheckDuplicates(c.Request.Context(), req.ToCandidate())
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// Create adds a merchant. A likely duplicate is refused with 409 unless
// the request sets force.
func (mc *MerchantController) Create(c *gin.Context) {
	var req requests.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if !req.Force {
		verdict, err := mc.merchants.CheckDuplicates(c.Request.Context(), req.ToCandidate())
		if err != nil {
			respondError(c, mc.logger, err)
			return
		}
		if verdict.IsDuplicate {
			c.JSON(http.StatusConflict, responses.DuplicateMerchantResponse{
				Error:   "DUPLICATE_MERCHANT",
				Message: verdict.Message,
				Verdict: verdict,
			})
			return
		}
	}

	m, err := mc.merchants.Add(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (mc *MerchantController) Get(c *gin.Context) {
	m, err := mc.merchants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (mc *MerchantController) Update(c *gin.Context) {
	var req requests.UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := mc.merchants.Edit(c.Request.Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (mc *MerchantController) Delete(c *gin.Context) {
	if err := mc.merchants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (mc *MerchantController) AddAddress(c *gin.Context) {
	var req requests.AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := mc.merchants.AddAddress(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (mc *MerchantController) DeleteAddress(c *gin.Context) {
	if err := mc.merchants.DeleteAddress(c.Request.Context(), c.Param("id"), c.Param("addressID")); err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordUsage accepts an empty body.
func (mc *MerchantController) RecordUsage(c *gin.Context) {
	var req requests.RecordUsageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := mc.merchants.RecordUsage(c.Request.Context(), c.Param("id"), req.AddressID); err != nil {
		respondError(c, mc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
