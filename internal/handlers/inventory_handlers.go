package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-service/internal/models"
	"stock-service/internal/services"
)

type InventoryHandler struct {
	inventory *services.InventoryService
}

func NewInventoryHandler(inventory *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// ========== Product Handlers ==========

// CreateProduct creates a new product
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventory.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	view := models.NewProductView(product)
	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    &view,
		Message: stringPtr("Product created successfully"),
	})
}

// GetProduct retrieves a product by ID
// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *gin.Context) {
	product, err := h.inventory.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	view := models.NewProductView(product)
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: &view})
}

// ListProducts lists products, optionally filtered by ?search= or ?category=
// GET /api/v1/products
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		products []models.Product
		err      error
	)
	switch {
	case strings.TrimSpace(c.Query("search")) != "":
		products, err = h.inventory.SearchProducts(ctx, c.Query("search"))
	case strings.TrimSpace(c.Query("category")) != "":
		products, err = h.inventory.ProductsByCategory(ctx, c.Query("category"))
	default:
		products, err = h.inventory.ListProducts(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    models.NewProductViews(products),
		Total:   len(products),
	})
}

// GetLowStockProducts lists products at or below their minimum stock level
// GET /api/v1/products/low-stock
func (h *InventoryHandler) GetLowStockProducts(c *gin.Context) {
	products, err := h.inventory.LowStockProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    models.NewProductViews(products),
		Total:   len(products),
	})
}

// GetInventoryValue returns the value of all stock on hand
// GET /api/v1/products/value
func (h *InventoryHandler) GetInventoryValue(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.inventory.TotalInventoryValue(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := h.inventory.ProductCount(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryValueResponse{
		Success:      true,
		TotalValue:   total,
		ProductCount: count,
	})
}

// UpdateProduct applies a partial update
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventory.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	view := models.NewProductView(product)
	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    &view,
		Message: stringPtr("Product updated successfully"),
	})
}

// DeleteProduct deletes a product
// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	if err := h.inventory.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Product deleted successfully"),
	})
}

// ========== Stock Handlers ==========

// AddStock increases stock on hand
// POST /api/v1/products/:id/stock/add
func (h *InventoryHandler) AddStock(c *gin.Context) {
	var req models.StockChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventory.AddStock(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	view := models.NewProductView(product)
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: &view})
}

// ReduceStock decreases stock on hand
// POST /api/v1/products/:id/stock/reduce
func (h *InventoryHandler) ReduceStock(c *gin.Context) {
	var req models.StockChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventory.ReduceStock(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	view := models.NewProductView(product)
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: &view})
}

// SetStock overwrites stock on hand, typically after a physical count
// PUT /api/v1/products/:id/stock
func (h *InventoryHandler) SetStock(c *gin.Context) {
	var req models.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventory.SetStock(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	view := models.NewProductView(product)
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: &view})
}
