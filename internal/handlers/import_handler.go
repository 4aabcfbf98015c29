package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stock-service/internal/models"
	"stock-service/internal/services"
	"stock-service/internal/sheets"
)

// TemplateField describes one column a product import accepts
type TemplateField struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
	Hint     string `json:"hint"`
	Example  string `json:"example"`
}

type ImportTemplate struct {
	Entity  string          `json:"entity"`
	Fields  []TemplateField `json:"fields"`
	Samples [][]string      `json:"samples,omitempty"`
}

// RowProblem points at a rejected row, and at the column when one is to blame
type RowProblem struct {
	Line   int    `json:"line"`
	Field  string `json:"field,omitempty"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type ImportResult struct {
	Success    bool         `json:"success"`
	DryRun     bool         `json:"dryRun"`
	Rows       int          `json:"rows"`
	Accepted   int          `json:"accepted"`
	Rejected   int          `json:"rejected"`
	ProductIDs []string     `json:"productIds"`
	Problems   []RowProblem `json:"problems"`
}

type ImportHandler struct {
	inventory *services.InventoryService
	recorder  *services.TransactionService
}

func NewImportHandler(inventory *services.InventoryService, recorder *services.TransactionService) *ImportHandler {
	return &ImportHandler{inventory: inventory, recorder: recorder}
}

var productTemplate = ImportTemplate{
	Entity: "products",
	Fields: []TemplateField{
		{Name: "name", Kind: "string", Required: true, Hint: "Display name", Example: "Blue Mug"},
		{Name: "category", Kind: "string", Required: true, Hint: "Catalogue category", Example: "Kitchen"},
		{Name: "price", Kind: "decimal", Required: true, Hint: "Unit price above zero", Example: "12.50"},
		{Name: "quantity", Kind: "integer", Hint: "Opening stock, defaults to 0", Example: "40"},
		{Name: "minStockLevel", Kind: "integer", Hint: "Alert threshold, defaults to 0", Example: "10"},
		{Name: "supplierId", Kind: "string", Hint: "Existing supplier ID", Example: "S0001"},
		{Name: "description", Kind: "string", Hint: "Free text", Example: "Stoneware, 350ml"},
	},
	Samples: [][]string{
		{"Blue Mug", "Kitchen", "12.50", "40", "10", "S0001", "Stoneware, 350ml"},
		{"Tea Towel", "Kitchen", "4.00", "120", "25", "", ""},
	},
}

func (t ImportTemplate) table(title string) sheets.Table {
	cols := make([]sheets.Column, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = sheets.Column{Name: f.Name, Marked: f.Required, Width: 18}
	}
	return sheets.Table{Title: title, Columns: cols, Rows: t.Samples}
}

// sendTable streams a table as an attachment named base.<format>
func sendTable(c *gin.Context, format sheets.Format, base string, t sheets.Table) {
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", base, format))
	c.Status(http.StatusOK)
	if err := sheets.Write(c.Writer, format, t); err != nil {
		_ = c.Error(err)
	}
}

// GetProductImportTemplate serves the template as JSON, CSV or XLSX
// GET /api/v1/products/import/template?format=
func (h *ImportHandler) GetProductImportTemplate(c *gin.Context) {
	raw := c.DefaultQuery("format", "json")
	if raw == "json" {
		c.JSON(http.StatusOK, gin.H{"success": true, "template": productTemplate})
		return
	}
	format, err := sheets.ParseFormat(raw)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be json, csv or xlsx")
		return
	}
	sendTable(c, format, "products_import_template", productTemplate.table("Products"))
}

// ImportProducts creates one product per row of an uploaded CSV or XLSX
// file. Rows go through CreateProduct, so rows at or below their minimum
// raise alerts. With validateOnly=true nothing is written.
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	upload, err := c.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	format, err := sheets.FormatOf(upload.Filename)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}
	file, err := upload.Open()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}
	defer file.Close()

	records, err := sheets.Read(file, format)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}
	if len(records) == 0 {
		errorJSON(c, http.StatusBadRequest, "EMPTY_FILE", "The file contains no data rows")
		return
	}

	dryRun, _ := strconv.ParseBool(c.DefaultPostForm("validateOnly", "false"))
	result := ImportResult{
		DryRun:     dryRun,
		Rows:       len(records),
		ProductIDs: []string{},
		Problems:   []RowProblem{},
	}

	for _, rec := range records {
		req, problems := productFromRecord(rec)
		if len(problems) == 0 && !dryRun {
			product, err := h.inventory.CreateProduct(c.Request.Context(), req)
			if err != nil {
				problems = append(problems, RowProblem{Line: rec.Line, Code: "CREATE_FAILED", Detail: err.Error()})
			} else {
				result.ProductIDs = append(result.ProductIDs, product.ID)
			}
		}
		if len(problems) > 0 {
			result.Problems = append(result.Problems, problems...)
			result.Rejected++
			continue
		}
		result.Accepted++
	}

	if dryRun {
		result.Success = result.Rejected == 0
	} else {
		result.Success = result.Accepted > 0
	}
	c.JSON(http.StatusOK, result)
}

func productFromRecord(rec sheets.Record) (models.CreateProductRequest, []RowProblem) {
	var problems []RowProblem
	bad := func(field, code, detail string) {
		problems = append(problems, RowProblem{Line: rec.Line, Field: field, Code: code, Detail: detail})
	}

	for _, f := range productTemplate.Fields {
		if f.Required && rec.Get(f.Name) == "" {
			bad(f.Name, "REQUIRED_FIELD", f.Name+" is required")
		}
	}

	req := models.CreateProductRequest{
		Name:        rec.Get("name"),
		Category:    rec.Get("category"),
		Description: rec.Get("description"),
	}
	if raw := rec.Get("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			bad("price", "INVALID_NUMBER", fmt.Sprintf("price %q is not a decimal", raw))
		}
		req.Price = price
	}
	ints := []struct {
		field string
		dest  *int
	}{
		{"quantity", &req.Quantity},
		{"minStockLevel", &req.MinStockLevel},
	}
	for _, in := range ints {
		raw := rec.Get(in.field)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad(in.field, "INVALID_NUMBER", fmt.Sprintf("%s %q is not a whole number", in.field, raw))
			continue
		}
		*in.dest = n
	}
	if id := rec.Get("supplierId"); id != "" {
		req.SupplierID = stringPtr(id)
	}
	return req, problems
}

// ========== Transaction Export ==========

var transactionExportHeaders = []string{
	"id", "timestamp", "type", "productId", "quantity", "unitPrice", "totalAmount", "performedBy", "supplierId", "remarks",
}

func transactionExportTable(txs []models.Transaction) sheets.Table {
	cols := make([]sheets.Column, len(transactionExportHeaders))
	for i, name := range transactionExportHeaders {
		cols[i] = sheets.Column{Name: name}
	}
	rows := make([][]string, len(txs))
	for i := range txs {
		tx := &txs[i]
		supplierID := ""
		if tx.SupplierID != nil {
			supplierID = *tx.SupplierID
		}
		rows[i] = []string{
			tx.ID,
			tx.Timestamp.UTC().Format(time.RFC3339),
			string(tx.Type),
			tx.ProductID,
			strconv.Itoa(tx.Quantity),
			tx.UnitPrice.StringFixed(2),
			tx.TotalAmount.StringFixed(2),
			tx.PerformedBy,
			supplierID,
			tx.Remarks,
		}
	}
	return sheets.Table{Title: "Transactions", Columns: cols, Rows: rows}
}

// ExportTransactions downloads the transactions matching the list filters
// GET /api/v1/transactions/export?format=csv|xlsx
func (h *ImportHandler) ExportTransactions(c *gin.Context) {
	format, err := sheets.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be csv or xlsx")
		return
	}
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}

	txs, err := h.recorder.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	sendTable(c, format, "transactions", transactionExportTable(txs))
}
