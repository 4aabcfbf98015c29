package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-service/internal/clock"
	"stock-service/internal/events"
	"stock-service/internal/idgen"
	"stock-service/internal/metrics"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// IDGenerator issues identifiers per entity kind
type IDGenerator interface {
	Next(kind idgen.Kind) string
}

// AlertEvaluator is the alert side channel the stock ledger drives after
// every committed quantity change. Implementations never return errors.
type AlertEvaluator interface {
	EvaluateStock(ctx context.Context, product *models.Product) *models.Alert
	ResolveStockAlerts(ctx context.Context, productID string) int
}

// InventoryService is the stock ledger. It owns product records and never
// lets quantity go negative.
type InventoryService struct {
	products  repository.ProductRepositoryInterface
	alerts    AlertEvaluator
	ids       IDGenerator
	clock     clock.Clock
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Entry

	mu sync.Mutex
}

func NewInventoryService(
	products repository.ProductRepositoryInterface,
	alerts AlertEvaluator,
	ids IDGenerator,
	clk clock.Clock,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *InventoryService {
	if clk == nil {
		clk = clock.System{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &InventoryService{
		products:  products,
		alerts:    alerts,
		ids:       ids,
		clock:     clk,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithField("component", "stock-ledger"),
	}
}

// ========== Stock Mutations ==========

// AddStock increases quantity by amount. Crossing back above the minimum
// stock level resolves open stock alerts. An amount that would overflow the
// quantity is rejected with ErrInvalidAmount and nothing changes.
func (s *InventoryService) AddStock(ctx context.Context, productID string, amount int) (*models.Product, error) {
	if amount <= 0 {
		return nil, invalidAmount(amount)
	}

	product, _, err := s.mutate(ctx, productID, "add", false, func(p *models.Product) error {
		if amount > math.MaxInt-p.Quantity {
			return fmt.Errorf("%w: adding %d to %d overflows the quantity", ErrInvalidAmount, amount, p.Quantity)
		}
		p.Quantity += amount
		return nil
	})
	s.metrics.StockMutation("add", err)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId": productID,
		"amount":    amount,
		"quantity":  product.Quantity,
	}).Info("Stock added")
	return product, nil
}

// ReduceStock decreases quantity by amount, failing with InsufficientStockError
// when amount exceeds what is on hand.
func (s *InventoryService) ReduceStock(ctx context.Context, productID string, amount int) (*models.Product, error) {
	if amount <= 0 {
		return nil, invalidAmount(amount)
	}

	product, _, err := s.mutate(ctx, productID, "reduce", true, func(p *models.Product) error {
		if p.Quantity < amount {
			return &InsufficientStockError{ProductID: p.ID, Available: p.Quantity, Requested: amount}
		}
		p.Quantity -= amount
		return nil
	})
	s.metrics.StockMutation("reduce", err)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId": productID,
		"amount":    amount,
		"quantity":  product.Quantity,
	}).Info("Stock reduced")
	return product, nil
}

// SetStock overwrites the quantity on hand
func (s *InventoryService) SetStock(ctx context.Context, productID string, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative, got %d", ErrInvalidAmount, quantity)
	}

	product, previous, err := s.mutate(ctx, productID, "set", true, func(p *models.Product) error {
		p.Quantity = quantity
		return nil
	})
	s.metrics.StockMutation("set", err)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId": productID,
		"previous":  previous,
		"quantity":  product.Quantity,
	}).Info("Stock set")
	return product, nil
}

// mutate loads a fresh copy, applies fn, writes it back and settles alerts
// under the ledger lock, so alert state always follows the last committed
// quantity. Nothing is written when fn or the update fails.
func (s *InventoryService) mutate(ctx context.Context, productID, reason string, evaluate bool, fn func(p *models.Product) error) (*models.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	previous := product.Quantity

	if err := fn(product); err != nil {
		return nil, previous, err
	}
	product.Touch(s.clock.Now())

	if err := s.products.Update(ctx, product); err != nil {
		return nil, previous, fmt.Errorf("failed to update product %s: %w", productID, err)
	}
	s.settle(ctx, product, previous, evaluate, reason)
	return product, previous, nil
}

// settle runs the alert and event side effects of a committed change.
// Caller holds mu.
func (s *InventoryService) settle(ctx context.Context, product *models.Product, previous int, evaluate bool, reason string) {
	if product.Quantity != previous {
		_ = s.publisher.PublishStockAdjusted(ctx, product, previous, reason)
	}
	if product.Quantity > previous && !product.IsLowStock() {
		s.alerts.ResolveStockAlerts(ctx, product.ID)
	}
	if evaluate {
		s.alerts.EvaluateStock(ctx, product)
	}
}

// ========== Product Catalogue ==========

func validateProduct(name, category string, price decimal.Decimal, quantity, minStock int) error {
	if strings.TrimSpace(name) == "" {
		return validationError("product name is required")
	}
	if strings.TrimSpace(category) == "" {
		return validationError("product category is required")
	}
	if !price.IsPositive() {
		return validationError("price must be greater than zero")
	}
	if err := validatePriceScale("price", price); err != nil {
		return err
	}
	if quantity < 0 {
		return validationError("quantity cannot be negative")
	}
	if minStock < 0 {
		return validationError("minimum stock level cannot be negative")
	}
	return nil
}

// CreateProduct registers a product and raises an alert when it starts at or
// below its minimum stock level.
func (s *InventoryService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := validateProduct(req.Name, req.Category, req.Price, req.Quantity, req.MinStockLevel); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	product := &models.Product{
		ID:            s.ids.Next(idgen.KindProduct),
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		Price:         req.Price,
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
		SupplierID:    req.SupplierID,
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"productId": product.ID,
		"name":      product.Name,
		"quantity":  product.Quantity,
	}).Info("Product created")
	s.alerts.EvaluateStock(ctx, product)
	return product, nil
}

// UpdateProduct applies a partial update. A quantity change behaves like SetStock.
func (s *InventoryService) UpdateProduct(ctx context.Context, productID string, req models.UpdateProductRequest) (*models.Product, error) {
	product, _, err := s.mutate(ctx, productID, "update", true, func(p *models.Product) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			p.Category = strings.TrimSpace(*req.Category)
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.MinStockLevel != nil {
			p.MinStockLevel = *req.MinStockLevel
		}
		if req.SupplierID != nil {
			if *req.SupplierID == "" {
				p.SupplierID = nil
			} else {
				supplierID := *req.SupplierID
				p.SupplierID = &supplierID
			}
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return fmt.Errorf("%w: quantity cannot be negative, got %d", ErrInvalidAmount, *req.Quantity)
			}
			p.Quantity = *req.Quantity
		}
		return validateProduct(p.Name, p.Category, p.Price, p.Quantity, p.MinStockLevel)
	})
	s.metrics.StockMutation("update", err)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("productId", productID).Info("Product updated")
	return product, nil
}

// ReconcileAlerts brings a product's stock alerts in line with its current
// quantity: low stock gets an open alert, healthy stock has its alerts
// resolved. The product is re-read under the ledger lock, so a mutation
// racing with the caller cannot leave a stale outcome behind.
func (s *InventoryService) ReconcileAlerts(ctx context.Context, productID string) (raised bool, resolved int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return false, 0, err
	}
	if product.IsLowStock() {
		return s.alerts.EvaluateStock(ctx, product) != nil, 0, nil
	}
	return false, s.alerts.ResolveStockAlerts(ctx, productID), nil
}

// DeleteProduct removes the record. Historical transactions keep pointing at it.
func (s *InventoryService) DeleteProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	err := s.products.Delete(ctx, productID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.WithField("productId", productID).Info("Product deleted")
	return nil
}

func (s *InventoryService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return s.products.FindByID(ctx, productID)
}

func (s *InventoryService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *InventoryService) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	return s.products.SearchByName(ctx, strings.TrimSpace(name))
}

func (s *InventoryService) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.products.FindByCategory(ctx, strings.TrimSpace(category))
}

func (s *InventoryService) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.FindLowStock(ctx)
}

func (s *InventoryService) ProductCount(ctx context.Context) (int64, error) {
	return s.products.Count(ctx)
}

// TotalInventoryValue sums price times quantity over every product
func (s *InventoryService) TotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range products {
		total = total.Add(products[i].TotalValue())
	}
	return total, nil
}

// validatePriceScale rejects amounts with more than two decimal places,
// which a decimal(12,2) column would silently round.
func validatePriceScale(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(2)) {
		return validationError("%s %s has more than two decimal places", field, v.String())
	}
	return nil
}
