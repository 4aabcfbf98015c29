package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-service/internal/services"
	"stock-service/internal/sheets"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetReport builds the named report as JSON, CSV or XLSX. from and to bound
// the sales report.
// GET /api/v1/reports/:kind?format=&from=&to=
func (h *ReportHandler) GetReport(c *gin.Context) {
	kind, err := services.ParseReportKind(c.Param("kind"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	raw := c.DefaultQuery("format", "json")
	var format sheets.Format
	if raw != "json" {
		if format, err = sheets.ParseFormat(raw); err != nil {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be json, csv or xlsx")
			return
		}
	}

	from, err := parseTimeQuery(c, "from", false)
	if err != nil {
		bindError(c, err)
		return
	}
	to, err := parseTimeQuery(c, "to", true)
	if err != nil {
		bindError(c, err)
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), kind, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	if format == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
		return
	}
	base := strings.ReplaceAll(string(kind), "-", "_") + "_report"
	sendTable(c, format, base, report.Table())
}
