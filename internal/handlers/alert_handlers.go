package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock-service/internal/models"
	"stock-service/internal/repository"
	"stock-service/internal/services"
)

type AlertHandler struct {
	alerts *services.AlertService
}

func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListAlerts lists alerts filtered by productId, type, priority and resolved
// GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	filter := repository.AlertFilter{
		ProductID: c.Query("productId"),
		Type:      models.AlertType(c.Query("type")),
		Priority:  models.AlertPriority(c.Query("priority")),
	}
	if raw := c.Query("resolved"); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "resolved must be true or false")
			return
		}
		filter.Resolved = &resolved
	}

	alerts, err := h.alerts.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertListResponse{Success: true, Data: alerts, Total: len(alerts)})
}

// GetUrgentAlerts lists unresolved critical and high priority alerts
// GET /api/v1/alerts/urgent
func (h *AlertHandler) GetUrgentAlerts(c *gin.Context) {
	alerts, err := h.alerts.UrgentAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertListResponse{Success: true, Data: alerts, Total: len(alerts)})
}

// GetAlertSummary counts unresolved alerts by priority and type
// GET /api/v1/alerts/summary
func (h *AlertHandler) GetAlertSummary(c *gin.Context) {
	summary, err := h.alerts.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertSummaryResponse{Success: true, Data: summary})
}

// GetAlert retrieves an alert by ID
// GET /api/v1/alerts/:id
func (h *AlertHandler) GetAlert(c *gin.Context) {
	alert, err := h.alerts.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Data: alert})
}

// ResolveAlert resolves an alert on behalf of the authenticated user
// POST /api/v1/alerts/:id/resolve
func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	alert, err := h.alerts.Resolve(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AlertResponse{
		Success: true,
		Data:    alert,
		Message: stringPtr("Alert resolved successfully"),
	})
}

// DeleteAlert deletes an alert
// DELETE /api/v1/alerts/:id
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	if err := h.alerts.DeleteAlert(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Alert deleted successfully"),
	})
}
