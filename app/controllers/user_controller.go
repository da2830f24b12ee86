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

// UserController handles per-user confirmation records and preferences.
type UserController struct {
	confirmations *services.ConfirmationService
	preferences   *services.PreferencesService
	logger        *zap.Logger
}

// NewUserController creates a UserController.
func NewUserController(confirmations *services.ConfirmationService, preferences *services.PreferencesService, logger *zap.Logger) *UserController {
	return &UserController{
		confirmations: confirmations,
		preferences:   preferences,
		logger:        logger,
	}
}

func (uc *UserController) Confirmations(c *gin.Context) {
	userID := c.Param("userID")
	record, err := uc.confirmations.ForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	stats, err := uc.confirmations.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.UserConfirmationsResponse{
		ConfirmedPriceIDs: record.ConfirmedPriceIDs,
		Stats:             stats,
	})
}

func (uc *UserController) ClearConfirmations(c *gin.Context) {
	if err := uc.confirmations.Clear(c.Request.Context(), c.Param("userID")); err != nil {
		respondError(c, uc.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (uc *UserController) Preferences(c *gin.Context) {
	prefs, err := uc.preferences.Get(c.Request.Context())
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences applies currency then unit; either may be omitted.
func (uc *UserController) UpdatePreferences(c *gin.Context) {
	var req requests.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		prefs models.Preferences
		err   error
	)
	if req.Currency != nil {
		if prefs, err = uc.preferences.SetCurrency(ctx, *req.Currency); err != nil {
			respondError(c, uc.logger, err)
			return
		}
	}
	if req.Unit != nil {
		if prefs, err = uc.preferences.SetUnit(ctx, *req.Unit); err != nil {
			respondError(c, uc.logger, err)
			return
		}
	}
	if req.Currency == nil && req.Unit == nil {
		if prefs, err = uc.preferences.Get(ctx); err != nil {
			respondError(c, uc.logger, err)
			return
		}
	}
	c.JSON(http.StatusOK, prefs)
}
