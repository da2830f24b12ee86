package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/price-tracker/app/responses"
	"github.com/price-tracker/app/services"
)

// UserIDHeader carries the acting user for confirmation routes.
const UserIDHeader = "X-User-ID"

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, responses.ErrorResponse{
		Error:   "INVALID_REQUEST",
		Message: "Invalid request: " + err.Error(),
	})
}

// respondError maps service errors to status codes.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: strings.Join(validation.Reasons, "; "),
			Details: validation.Reasons,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrAlreadyConfirmed), errors.Is(err, services.ErrNotConfirmed):
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "CONFLICT",
			Message: err.Error(),
		})
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Message: "Internal error",
		})
	}
}
