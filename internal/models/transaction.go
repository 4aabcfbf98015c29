package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the economic event a transaction records
type TransactionType string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeAdjustment TransactionType = "adjustment"
	TransactionTypeReturn     TransactionType = "return"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypePurchase, TransactionTypeAdjustment, TransactionTypeReturn:
		return true
	}
	return false
}

// Transaction is an immutable record of one stock movement.
// TotalAmount always equals Quantity * UnitPrice.
type Transaction struct {
	ID          string          `json:"id" gorm:"type:varchar(40);primaryKey"`
	ProductID   string          `json:"productId" gorm:"type:varchar(32);not null;index"`
	Type        TransactionType `json:"type" gorm:"type:varchar(16);not null;index"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(14,2);not null"`
	PerformedBy string          `json:"performedBy" gorm:"type:varchar(64);not null"`
	Timestamp   time.Time       `json:"timestamp" gorm:"not null;index"`
	Remarks     string          `json:"remarks" gorm:"type:text"`
	SupplierID  *string         `json:"supplierId,omitempty" gorm:"type:varchar(32);index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) EntityID() string {
	return t.ID
}

// NewTransaction builds a transaction with its total already computed.
// Quantity is stored as a magnitude.
func NewTransaction(id, productID string, typ TransactionType, quantity int, unitPrice decimal.Decimal, performedBy string, at time.Time) *Transaction {
	t := &Transaction{
		ID:          id,
		ProductID:   productID,
		Type:        typ,
		UnitPrice:   unitPrice,
		PerformedBy: performedBy,
		Timestamp:   at.UTC(),
	}
	t.SetQuantity(quantity)
	return t
}

func (t *Transaction) SetQuantity(quantity int) {
	if quantity < 0 {
		quantity = -quantity
	}
	t.Quantity = quantity
	t.recalculate()
}

func (t *Transaction) SetUnitPrice(price decimal.Decimal) {
	t.UnitPrice = price
	t.recalculate()
}

func (t *Transaction) recalculate() {
	t.TotalAmount = t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// BeforeSave keeps the persisted total consistent with its inputs
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.recalculate()
	return nil
}

type TransactionResponse struct {
	Success bool         `json:"success"`
	Data    *Transaction `json:"data,omitempty"`
	Message *string      `json:"message,omitempty"`
}

type TransactionListResponse struct {
	Success bool          `json:"success"`
	Data    []Transaction `json:"data"`
	Total   int           `json:"total"`
}

type TotalsResponse struct {
	Success bool             `json:"success"`
	Type    *TransactionType `json:"type,omitempty"`
	From    *time.Time       `json:"from,omitempty"`
	To      *time.Time       `json:"to,omitempty"`
	Total   decimal.Decimal  `json:"total"`
	Count   int64            `json:"count"`
}
