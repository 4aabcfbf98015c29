package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stock-service/internal/middleware"
	"stock-service/internal/models"
	"stock-service/internal/services"
)

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

// respondError maps a service error onto its HTTP status and error code.
// Storage and unknown errors are attached to the gin context for the request
// logger and reported without internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrInvalidAmount):
		errorJSON(c, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
	case errors.Is(err, services.ErrValidation):
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrInsufficientStock):
		errorJSON(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, services.ErrAlreadyResolved):
		errorJSON(c, http.StatusConflict, "ALREADY_RESOLVED", err.Error())
	case errors.Is(err, services.ErrAlreadyExists):
		errorJSON(c, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, services.ErrStorageFailure):
		_ = c.Error(err)
		errorJSON(c, http.StatusInternalServerError, "STORAGE_FAILURE", "Storage is unavailable")
	default:
		_ = c.Error(err)
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

func bindError(c *gin.Context, err error) {
	errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

func currentUser(c *gin.Context) string {
	return middleware.UserID(c)
}

func stringPtr(s string) *string {
	return &s
}

// parseTimeQuery reads an RFC 3339 timestamp or a plain date. A plain date
// used as an upper bound covers the whole day.
func parseTimeQuery(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", key)
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}
