package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus describes where a product sits relative to its minimum stock level
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Product is a stocked item. Quantity never drops below zero.
type Product struct {
	ID            string          `json:"id" gorm:"type:varchar(32);primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(255);not null;index"`
	Category      string          `json:"category" gorm:"type:varchar(100);not null;index"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity      int             `json:"quantity" gorm:"not null;default:0"`
	MinStockLevel int             `json:"minStockLevel" gorm:"not null;default:0"`
	SupplierID    *string         `json:"supplierId,omitempty" gorm:"type:varchar(32);index"`
	Description   string          `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime:false;not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime:false;not null"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) EntityID() string {
	return p.ID
}

// IsLowStock reports quantity at or below the minimum stock level
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}

func (p *Product) IsOutOfStock() bool {
	return p.Quantity == 0
}

func (p *Product) StockStatus() StockStatus {
	switch {
	case p.IsOutOfStock():
		return StockStatusOutOfStock
	case p.IsLowStock():
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// TotalValue is price times quantity on hand
func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Touch stamps the modification time. Setters never call it implicitly.
func (p *Product) Touch(now time.Time) {
	p.UpdatedAt = now
}

// ProductView is the API shape of a product with its derived stock fields
type ProductView struct {
	Product
	StockStatus StockStatus     `json:"stockStatus"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

func NewProductView(p *Product) ProductView {
	return ProductView{Product: *p, StockStatus: p.StockStatus(), TotalValue: p.TotalValue()}
}

func NewProductViews(products []Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, NewProductView(&products[i]))
	}
	return views
}

// Response models

type ProductResponse struct {
	Success bool         `json:"success"`
	Data    *ProductView `json:"data,omitempty"`
	Message *string      `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success bool          `json:"success"`
	Data    []ProductView `json:"data"`
	Total   int           `json:"total"`
}

type InventoryValueResponse struct {
	Success      bool            `json:"success"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	ProductCount int64           `json:"productCount"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
