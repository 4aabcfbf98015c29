package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-service/internal/clock"
	"stock-service/internal/events"
	"stock-service/internal/idgen"
	"stock-service/internal/metrics"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// StockLedger is the part of InventoryService the recorder drives
type StockLedger interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	AddStock(ctx context.Context, productID string, amount int) (*models.Product, error)
	ReduceStock(ctx context.Context, productID string, amount int) (*models.Product, error)
}

// SupplierLedger is the part of SupplierService the recorder drives
type SupplierLedger interface {
	GetSupplier(ctx context.Context, supplierID string) (*models.Supplier, error)
	IncrementOrderCount(ctx context.Context, supplierID string) (*models.Supplier, error)
}

// TransactionTotals is the result of an aggregation over transactions
type TransactionTotals struct {
	Total decimal.Decimal
	Count int
}

// TransactionService records economic events. Each one validates against
// the stock ledger, mutates stock and appends exactly one transaction.
type TransactionService struct {
	transactions repository.TransactionRepositoryInterface
	stock        StockLedger
	suppliers    SupplierLedger
	ids          IDGenerator
	clock        clock.Clock
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *logrus.Entry
}

func NewTransactionService(
	transactions repository.TransactionRepositoryInterface,
	stock StockLedger,
	suppliers SupplierLedger,
	ids IDGenerator,
	clk clock.Clock,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *TransactionService {
	if clk == nil {
		clk = clock.System{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TransactionService{
		transactions: transactions,
		stock:        stock,
		suppliers:    suppliers,
		ids:          ids,
		clock:        clk,
		publisher:    publisher,
		metrics:      m,
		logger:       logger.WithField("component", "transaction-recorder"),
	}
}

func requirePerformer(performedBy string) (string, error) {
	performedBy = strings.TrimSpace(performedBy)
	if performedBy == "" {
		return "", validationError("performing user is required")
	}
	return performedBy, nil
}

// ========== Recording ==========

// RecordSale sells from stock at the product's current price. Insufficient
// stock fails before anything is written.
func (s *TransactionService) RecordSale(ctx context.Context, req models.SaleRequest, performedBy string) (*models.Transaction, error) {
	performedBy, err := requirePerformer(performedBy)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalidAmount(req.Quantity)
	}

	product, err := s.stock.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Quantity < req.Quantity {
		return nil, &InsufficientStockError{ProductID: product.ID, Available: product.Quantity, Requested: req.Quantity}
	}

	tx := s.newTransaction(product.ID, models.TransactionTypeSale, req.Quantity, product.Price, performedBy, req.Remarks)

	if _, err := s.stock.ReduceStock(ctx, product.ID, req.Quantity); err != nil {
		return nil, err
	}
	return s.persist(ctx, tx)
}

// RecordPurchase receives stock at a caller-supplied unit price and counts
// the order against the supplier when one is given.
func (s *TransactionService) RecordPurchase(ctx context.Context, req models.PurchaseRequest, performedBy string) (*models.Transaction, error) {
	performedBy, err := requirePerformer(performedBy)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalidAmount(req.Quantity)
	}
	if req.UnitPrice.IsNegative() {
		return nil, validationError("unit price cannot be negative")
	}
	if err := validatePriceScale("unit price", req.UnitPrice); err != nil {
		return nil, err
	}

	product, err := s.stock.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var supplierID *string
	if req.SupplierID != nil && strings.TrimSpace(*req.SupplierID) != "" {
		id := strings.TrimSpace(*req.SupplierID)
		if _, err := s.suppliers.GetSupplier(ctx, id); err != nil {
			return nil, err
		}
		supplierID = &id
	}

	tx := s.newTransaction(product.ID, models.TransactionTypePurchase, req.Quantity, req.UnitPrice, performedBy, req.Remarks)
	tx.SupplierID = supplierID

	if _, err := s.stock.AddStock(ctx, product.ID, req.Quantity); err != nil {
		return nil, err
	}
	if supplierID != nil {
		if _, err := s.suppliers.IncrementOrderCount(ctx, *supplierID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"productId":  product.ID,
				"supplierId": *supplierID,
			}).WithError(err).Error("Stock received but supplier order count was not updated")
			return nil, err
		}
	}
	return s.persist(ctx, tx)
}

// RecordAdjustment applies a signed correction. The transaction stores the
// magnitude at a unit price of zero.
func (s *TransactionService) RecordAdjustment(ctx context.Context, req models.AdjustmentRequest, performedBy string) (*models.Transaction, error) {
	performedBy, err := requirePerformer(performedBy)
	if err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		return nil, invalidAmount(req.Quantity)
	}

	product, err := s.stock.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	tx := s.newTransaction(product.ID, models.TransactionTypeAdjustment, req.Quantity, decimal.Zero, performedBy, req.Remarks)

	if req.Quantity > 0 {
		_, err = s.stock.AddStock(ctx, product.ID, req.Quantity)
	} else {
		magnitude := -req.Quantity
		if product.Quantity < magnitude {
			return nil, &InsufficientStockError{ProductID: product.ID, Available: product.Quantity, Requested: magnitude}
		}
		_, err = s.stock.ReduceStock(ctx, product.ID, magnitude)
	}
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, tx)
}

// RecordReturn puts customer-returned units back into stock at the current price
func (s *TransactionService) RecordReturn(ctx context.Context, req models.ReturnRequest, performedBy string) (*models.Transaction, error) {
	performedBy, err := requirePerformer(performedBy)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalidAmount(req.Quantity)
	}

	product, err := s.stock.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	tx := s.newTransaction(product.ID, models.TransactionTypeReturn, req.Quantity, product.Price, performedBy, req.Remarks)

	if _, err := s.stock.AddStock(ctx, product.ID, req.Quantity); err != nil {
		return nil, err
	}
	return s.persist(ctx, tx)
}

func (s *TransactionService) newTransaction(productID string, typ models.TransactionType, quantity int, unitPrice decimal.Decimal, performedBy, remarks string) *models.Transaction {
	tx := models.NewTransaction(s.ids.Next(idgen.KindTransaction), productID, typ, quantity, unitPrice, performedBy, s.clock.Now())
	tx.Remarks = strings.TrimSpace(remarks)
	return tx
}

// persist appends the transaction after stock has moved. A failure here is
// reported but does not roll the stock change back.
func (s *TransactionService) persist(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if err := s.transactions.Save(ctx, tx); err != nil {
		s.logger.WithFields(logrus.Fields{
			"transactionId": tx.ID,
			"productId":     tx.ProductID,
			"type":          tx.Type,
		}).WithError(err).Error("Stock moved but transaction was not persisted")
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	s.metrics.TransactionRecorded(string(tx.Type), tx.TotalAmount)
	_ = s.publisher.PublishTransactionRecorded(ctx, tx)
	s.logger.WithFields(logrus.Fields{
		"transactionId": tx.ID,
		"productId":     tx.ProductID,
		"type":          tx.Type,
		"quantity":      tx.Quantity,
		"totalAmount":   tx.TotalAmount.String(),
	}).Info("Transaction recorded")
	return tx, nil
}

// ========== Queries ==========

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.transactions.FindByID(ctx, id)
}

func validateFilter(filter repository.TransactionFilter) error {
	if filter.Type != nil && !filter.Type.Valid() {
		return validationError("unknown transaction type %q", *filter.Type)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return validationError("date range start is after its end")
	}
	return nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.transactions.Find(ctx, filter)
}

func (s *TransactionService) TransactionsByProduct(ctx context.Context, productID string) ([]models.Transaction, error) {
	return s.transactions.Find(ctx, repository.TransactionFilter{ProductID: productID})
}

func (s *TransactionService) TransactionsByType(ctx context.Context, typ models.TransactionType) ([]models.Transaction, error) {
	return s.ListTransactions(ctx, repository.TransactionFilter{Type: &typ})
}

func (s *TransactionService) TransactionsByDateRange(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	return s.ListTransactions(ctx, repository.TransactionFilter{From: &from, To: &to})
}

func (s *TransactionService) TransactionCount(ctx context.Context, filter repository.TransactionFilter) (int64, error) {
	if err := validateFilter(filter); err != nil {
		return 0, err
	}
	return s.transactions.Count(ctx, filter)
}

// Totals sums TotalAmount over transactions matching the optional type and
// inclusive time window
func (s *TransactionService) Totals(ctx context.Context, filter repository.TransactionFilter) (*TransactionTotals, error) {
	txs, err := s.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &TransactionTotals{Total: repository.SumTotalAmount(txs), Count: len(txs)}, nil
}

// TotalSales is Totals reduced to the amount
func (s *TransactionService) TotalSales(ctx context.Context, filter repository.TransactionFilter) (decimal.Decimal, error) {
	totals, err := s.Totals(ctx, filter)
	if err != nil {
		return decimal.Zero, err
	}
	return totals.Total, nil
}
