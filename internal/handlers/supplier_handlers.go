package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-service/internal/models"
	"stock-service/internal/services"
)

type SupplierHandler struct {
	suppliers *services.SupplierService
}

func NewSupplierHandler(suppliers *services.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

func (h *SupplierHandler) respond(c *gin.Context, status int, supplier *models.Supplier, err error, message string) {
	if err != nil {
		respondError(c, err)
		return
	}
	view := models.NewSupplierView(supplier)
	resp := models.SupplierResponse{Success: true, Data: &view}
	if message != "" {
		resp.Message = stringPtr(message)
	}
	c.JSON(status, resp)
}

// CreateSupplier creates a new supplier
// POST /api/v1/suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req models.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	supplier, err := h.suppliers.CreateSupplier(c.Request.Context(), req)
	h.respond(c, http.StatusCreated, supplier, err, "Supplier created successfully")
}

// GetSupplier retrieves a supplier by ID
// GET /api/v1/suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.suppliers.GetSupplier(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, supplier, err, "")
}

// ListSuppliers lists suppliers, optionally filtered by ?search= or ?active=true
// GET /api/v1/suppliers
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		suppliers []models.Supplier
		err       error
	)
	switch {
	case strings.TrimSpace(c.Query("search")) != "":
		suppliers, err = h.suppliers.SearchSuppliers(ctx, c.Query("search"))
	case c.Query("active") == "true":
		suppliers, err = h.suppliers.ActiveSuppliers(ctx)
	default:
		suppliers, err = h.suppliers.ListSuppliers(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]models.SupplierView, 0, len(suppliers))
	for i := range suppliers {
		views = append(views, models.NewSupplierView(&suppliers[i]))
	}
	c.JSON(http.StatusOK, models.SupplierListResponse{Success: true, Data: views, Total: len(views)})
}

// UpdateSupplier applies a partial update
// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req models.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	supplier, err := h.suppliers.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	h.respond(c, http.StatusOK, supplier, err, "Supplier updated successfully")
}

// DeleteSupplier deletes a supplier
// DELETE /api/v1/suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.suppliers.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Supplier deleted successfully"),
	})
}

// RateSupplier folds a new rating into the supplier's running average
// POST /api/v1/suppliers/:id/rating
func (h *SupplierHandler) RateSupplier(c *gin.Context) {
	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	supplier, err := h.suppliers.UpdateRating(c.Request.Context(), c.Param("id"), *req.Rating)
	h.respond(c, http.StatusOK, supplier, err, "Supplier rating updated")
}

// ActivateSupplier marks a supplier active
// POST /api/v1/suppliers/:id/activate
func (h *SupplierHandler) ActivateSupplier(c *gin.Context) {
	supplier, err := h.suppliers.Activate(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, supplier, err, "")
}

// DeactivateSupplier marks a supplier inactive
// POST /api/v1/suppliers/:id/deactivate
func (h *SupplierHandler) DeactivateSupplier(c *gin.Context) {
	supplier, err := h.suppliers.Deactivate(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, supplier, err, "")
}
