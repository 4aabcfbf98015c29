package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stock-service/internal/idgen"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

type recorderMocks struct {
	txs       *MockTransactionRepository
	stock     *MockStockLedger
	suppliers *MockSupplierLedger
}

func newMockedRecorder() (*TransactionService, recorderMocks) {
	m := recorderMocks{
		txs:       new(MockTransactionRepository),
		stock:     new(MockStockLedger),
		suppliers: new(MockSupplierLedger),
	}
	clk := testClock()
	svc := NewTransactionService(m.txs, m.stock, m.suppliers, idgen.New(clk), clk, nil, nil, quietLogger())
	return svc, m
}

// ===== Sale Tests =====

func TestRecordSale_InsufficientStockFailsBeforeMutation(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 2, 1, "10"), nil)

	_, err := svc.RecordSale(ctx, models.SaleRequest{ProductID: "P0001", Quantity: 3}, "U001")

	require.ErrorIs(t, err, ErrInsufficientStock)
	m.stock.AssertNotCalled(t, "ReduceStock", mock.Anything, mock.Anything, mock.Anything)
	m.txs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRecordSale_UsesProductPrice(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 20, 5, "10.00"), nil)
	m.stock.On("ReduceStock", ctx, "P0001", 5).Return(testProduct("P0001", 15, 5, "10.00"), nil)
	m.txs.On("Save", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil)

	tx, err := svc.RecordSale(ctx, models.SaleRequest{ProductID: "P0001", Quantity: 5, Remarks: " walk-in "}, "U001")

	require.NoError(t, err)
	assert.Equal(t, "T20240601090000-0001", tx.ID)
	assert.Equal(t, models.TransactionTypeSale, tx.Type)
	assert.Equal(t, 5, tx.Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(tx.UnitPrice))
	assert.True(t, decimal.NewFromInt(50).Equal(tx.TotalAmount))
	assert.Equal(t, "U001", tx.PerformedBy)
	assert.Equal(t, "walk-in", tx.Remarks)
	assert.Nil(t, tx.SupplierID)
	m.stock.AssertExpectations(t)
	m.txs.AssertExpectations(t)
}

func TestRecordSale_RejectsInvalidInput(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, models.SaleRequest{ProductID: "P0001", Quantity: 0}, "U001")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordSale(ctx, models.SaleRequest{ProductID: "P0001", Quantity: 1}, " ")
	assert.ErrorIs(t, err, ErrValidation)

	m.stock.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestRecordSale_PersistFailureIsReported(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 20, 5, "10"), nil)
	m.stock.On("ReduceStock", ctx, "P0001", 1).Return(testProduct("P0001", 19, 5, "10"), nil)
	m.txs.On("Save", ctx, mock.Anything).Return(fmt.Errorf("%w: read-only", repository.ErrStorage))

	_, err := svc.RecordSale(ctx, models.SaleRequest{ProductID: "P0001", Quantity: 1}, "U001")

	assert.ErrorIs(t, err, ErrStorageFailure)
}

// ===== Purchase Tests =====

func TestRecordPurchase_UnknownSupplierFailsBeforeMutation(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()
	supplierID := "S0404"

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 0, 5, "10"), nil)
	m.suppliers.On("GetSupplier", ctx, "S0404").Return(nil, fmt.Errorf("S0404: %w", repository.ErrNotFound))

	_, err := svc.RecordPurchase(ctx, models.PurchaseRequest{
		ProductID:  "P0001",
		Quantity:   10,
		UnitPrice:  decimal.NewFromInt(6),
		SupplierID: &supplierID,
	}, "U001")

	require.ErrorIs(t, err, ErrNotFound)
	m.stock.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
	m.txs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRecordPurchase_CountsSupplierOrderButNeverRates(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()
	supplierID := "S0001"

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 0, 5, "10"), nil)
	m.suppliers.On("GetSupplier", ctx, "S0001").Return(&models.Supplier{ID: "S0001"}, nil)
	m.stock.On("AddStock", ctx, "P0001", 12).Return(testProduct("P0001", 12, 5, "10"), nil)
	m.suppliers.On("IncrementOrderCount", ctx, "S0001").Return(&models.Supplier{ID: "S0001", TotalOrders: 1}, nil)
	m.txs.On("Save", ctx, mock.Anything).Return(nil)

	tx, err := svc.RecordPurchase(ctx, models.PurchaseRequest{
		ProductID:  "P0001",
		Quantity:   12,
		UnitPrice:  decimal.RequireFromString("6.50"),
		SupplierID: &supplierID,
	}, "U001")

	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypePurchase, tx.Type)
	assert.True(t, decimal.NewFromInt(78).Equal(tx.TotalAmount))
	require.NotNil(t, tx.SupplierID)
	assert.Equal(t, "S0001", *tx.SupplierID)
	m.suppliers.AssertExpectations(t)
	m.suppliers.AssertNumberOfCalls(t, "IncrementOrderCount", 1)
}

func TestRecordPurchase_WithoutSupplier(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 0, 5, "10"), nil)
	m.stock.On("AddStock", ctx, "P0001", 4).Return(testProduct("P0001", 4, 5, "10"), nil)
	m.txs.On("Save", ctx, mock.Anything).Return(nil)

	tx, err := svc.RecordPurchase(ctx, models.PurchaseRequest{ProductID: "P0001", Quantity: 4, UnitPrice: decimal.NewFromInt(3)}, "U001")

	require.NoError(t, err)
	assert.Nil(t, tx.SupplierID)
	m.suppliers.AssertNotCalled(t, "IncrementOrderCount", mock.Anything, mock.Anything)
}

func TestRecordPurchase_RejectsNegativePrice(t *testing.T) {
	svc, m := newMockedRecorder()

	_, err := svc.RecordPurchase(context.Background(), models.PurchaseRequest{
		ProductID: "P0001",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(-1),
	}, "U001")

	assert.ErrorIs(t, err, ErrValidation)
	m.stock.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestRecordPurchase_RejectsSubCentPrice(t *testing.T) {
	svc, m := newMockedRecorder()

	_, err := svc.RecordPurchase(context.Background(), models.PurchaseRequest{
		ProductID: "P0001",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("0.125"),
	}, "U001")

	assert.ErrorIs(t, err, ErrValidation)
	m.stock.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
}

// ===== Adjustment Tests =====

func TestRecordAdjustment_NegativeStoresMagnitude(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 10, 2, "10"), nil)
	m.stock.On("ReduceStock", ctx, "P0001", 4).Return(testProduct("P0001", 6, 2, "10"), nil)
	m.txs.On("Save", ctx, mock.Anything).Return(nil)

	tx, err := svc.RecordAdjustment(ctx, models.AdjustmentRequest{ProductID: "P0001", Quantity: -4, Remarks: "breakage"}, "U001")

	require.NoError(t, err)
	assert.Equal(t, 4, tx.Quantity)
	assert.True(t, tx.UnitPrice.IsZero())
	assert.True(t, tx.TotalAmount.IsZero())
	m.stock.AssertExpectations(t)
}

func TestRecordAdjustment_PositiveAddsStock(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 1, 2, "10"), nil)
	m.stock.On("AddStock", ctx, "P0001", 9).Return(testProduct("P0001", 10, 2, "10"), nil)
	m.txs.On("Save", ctx, mock.Anything).Return(nil)

	tx, err := svc.RecordAdjustment(ctx, models.AdjustmentRequest{ProductID: "P0001", Quantity: 9}, "U001")

	require.NoError(t, err)
	assert.Equal(t, 9, tx.Quantity)
	m.stock.AssertNotCalled(t, "ReduceStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordAdjustment_NegativeBeyondStock(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 3, 2, "10"), nil)

	_, err := svc.RecordAdjustment(ctx, models.AdjustmentRequest{ProductID: "P0001", Quantity: -4}, "U001")

	assert.ErrorIs(t, err, ErrInsufficientStock)
	m.stock.AssertNotCalled(t, "ReduceStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordAdjustment_ZeroIsInvalid(t *testing.T) {
	svc, _ := newMockedRecorder()

	_, err := svc.RecordAdjustment(context.Background(), models.AdjustmentRequest{ProductID: "P0001"}, "U001")

	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// ===== Return Tests =====

func TestRecordReturn_RestocksAtCurrentPrice(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	m.stock.On("GetProduct", ctx, "P0001").Return(testProduct("P0001", 5, 2, "4.00"), nil)
	m.stock.On("AddStock", ctx, "P0001", 2).Return(testProduct("P0001", 7, 2, "4.00"), nil)
	m.txs.On("Save", ctx, mock.Anything).Return(nil)

	tx, err := svc.RecordReturn(ctx, models.ReturnRequest{ProductID: "P0001", Quantity: 2}, "U001")

	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeReturn, tx.Type)
	assert.True(t, decimal.NewFromInt(8).Equal(tx.TotalAmount))
}

// ===== Totals Tests =====

func TestTotalSales_SumsMatchingTransactions(t *testing.T) {
	svc, m := newMockedRecorder()
	ctx := context.Background()

	sale := models.TransactionTypeSale
	from := testStart
	to := testStart.Add(24 * time.Hour)
	filter := repository.TransactionFilter{Type: &sale, From: &from, To: &to}
	m.txs.On("Find", ctx, filter).Return([]models.Transaction{
		*models.NewTransaction("T1", "P0001", sale, 2, decimal.RequireFromString("1.25"), "U001", from),
		*models.NewTransaction("T2", "P0002", sale, 1, decimal.NewFromInt(7), "U001", to),
	}, nil)

	total, err := svc.TotalSales(ctx, filter)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.50").Equal(total), total.String())
}

func TestTotals_RejectsInvertedRange(t *testing.T) {
	svc, m := newMockedRecorder()

	from := testStart.Add(time.Hour)
	to := testStart
	_, err := svc.Totals(context.Background(), repository.TransactionFilter{From: &from, To: &to})

	assert.ErrorIs(t, err, ErrValidation)
	m.txs.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}
