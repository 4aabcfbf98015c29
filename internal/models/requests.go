package models

import "github.com/shopspring/decimal"

// Request models

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=255"`
	Category      string          `json:"category" binding:"required,min=1,max=100"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity" binding:"min=0"`
	MinStockLevel int             `json:"minStockLevel" binding:"min=0"`
	SupplierID    *string         `json:"supplierId,omitempty"`
	Description   string          `json:"description"`
}

// UpdateProductRequest carries a partial update; nil fields are left as is
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	MinStockLevel *int             `json:"minStockLevel,omitempty"`
	SupplierID    *string          `json:"supplierId,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

type StockChangeRequest struct {
	Amount int `json:"amount"`
}

type SetStockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type SaleRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Remarks   string `json:"remarks"`
}

type PurchaseRequest struct {
	ProductID  string          `json:"productId" binding:"required"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	SupplierID *string         `json:"supplierId,omitempty"`
	Remarks    string          `json:"remarks"`
}

// AdjustmentRequest carries a signed quantity: positive adds stock, negative removes it
type AdjustmentRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Remarks   string `json:"remarks"`
}

type ReturnRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Remarks   string `json:"remarks"`
}

type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=255"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
}

type UpdateSupplierRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" binding:"omitempty,email"`
	Address       *string `json:"address,omitempty"`
}

type RatingRequest struct {
	Rating *float64 `json:"rating" binding:"required"`
}
