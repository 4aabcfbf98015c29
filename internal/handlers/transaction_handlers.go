package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-service/internal/models"
	"stock-service/internal/repository"
	"stock-service/internal/services"
)

type TransactionHandler struct {
	recorder *services.TransactionService
}

func NewTransactionHandler(recorder *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{recorder: recorder}
}

func (h *TransactionHandler) created(c *gin.Context, tx *models.Transaction, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.TransactionResponse{
		Success: true,
		Data:    tx,
		Message: stringPtr("Transaction recorded successfully"),
	})
}

// RecordSale sells stock at the current product price
// POST /api/v1/transactions/sale
func (h *TransactionHandler) RecordSale(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.recorder.RecordSale(c.Request.Context(), req, currentUser(c))
	h.created(c, tx, err)
}

// RecordPurchase receives stock, optionally from a supplier
// POST /api/v1/transactions/purchase
func (h *TransactionHandler) RecordPurchase(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.recorder.RecordPurchase(c.Request.Context(), req, currentUser(c))
	h.created(c, tx, err)
}

// RecordAdjustment corrects stock by a signed quantity
// POST /api/v1/transactions/adjustment
func (h *TransactionHandler) RecordAdjustment(c *gin.Context) {
	var req models.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.recorder.RecordAdjustment(c.Request.Context(), req, currentUser(c))
	h.created(c, tx, err)
}

// RecordReturn restocks returned goods
// POST /api/v1/transactions/return
func (h *TransactionHandler) RecordReturn(c *gin.Context) {
	var req models.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.recorder.RecordReturn(c.Request.Context(), req, currentUser(c))
	h.created(c, tx, err)
}

// GetTransaction retrieves a transaction by ID
// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	tx, err := h.recorder.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TransactionResponse{Success: true, Data: tx})
}

// transactionFilter reads productId, type, from and to query parameters
func transactionFilter(c *gin.Context) (repository.TransactionFilter, bool) {
	filter := repository.TransactionFilter{ProductID: c.Query("productId")}
	if typ := c.Query("type"); typ != "" {
		t := models.TransactionType(typ)
		filter.Type = &t
	}

	from, err := parseTimeQuery(c, "from", false)
	if err != nil {
		bindError(c, err)
		return filter, false
	}
	to, err := parseTimeQuery(c, "to", true)
	if err != nil {
		bindError(c, err)
		return filter, false
	}
	filter.From, filter.To = from, to
	return filter, true
}

// ListTransactions lists transactions matching the query filters
// GET /api/v1/transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}

	txs, err := h.recorder.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TransactionListResponse{Success: true, Data: txs, Total: len(txs)})
}

// GetTotals sums total amounts over the matching transactions
// GET /api/v1/transactions/totals
func (h *TransactionHandler) GetTotals(c *gin.Context) {
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}

	totals, err := h.recorder.Totals(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TotalsResponse{
		Success: true,
		Type:    filter.Type,
		From:    filter.From,
		To:      filter.To,
		Total:   totals.Total,
		Count:   int64(totals.Count),
	})
}
