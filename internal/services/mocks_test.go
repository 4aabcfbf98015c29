package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// ===== Repository Mocks =====

type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepositoryInterface = (*MockProductRepository)(nil)

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

type MockAlertRepository struct {
	mock.Mock
}

var _ repository.AlertRepositoryInterface = (*MockAlertRepository)(nil)

func (m *MockAlertRepository) Save(ctx context.Context, alert *models.Alert) error {
	return m.Called(ctx, alert).Error(0)
}

func (m *MockAlertRepository) Update(ctx context.Context, alert *models.Alert) error {
	return m.Called(ctx, alert).Error(0)
}

func (m *MockAlertRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id string) (*models.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertRepository) FindAll(ctx context.Context) ([]models.Alert, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockAlertRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) Find(ctx context.Context, filter repository.AlertFilter) ([]models.Alert, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockAlertRepository) FindUnresolvedByProduct(ctx context.Context, productID string, types ...models.AlertType) ([]models.Alert, error) {
	args := m.Called(ctx, productID, types)
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockAlertRepository) CountUnresolved(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

var _ repository.TransactionRepositoryInterface = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) Save(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) Find(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter repository.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockSupplierRepository struct {
	mock.Mock
}

var _ repository.SupplierRepositoryInterface = (*MockSupplierRepository)(nil)

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *models.Supplier) error {
	return m.Called(ctx, supplier).Error(0)
}

func (m *MockSupplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	return m.Called(ctx, supplier).Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id string) (*models.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context) ([]models.Supplier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) SearchByName(ctx context.Context, name string) ([]models.Supplier, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindActive(ctx context.Context) ([]models.Supplier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Supplier), args.Error(1)
}

// ===== Collaborator Mocks =====

type MockAlertEvaluator struct {
	mock.Mock
}

var _ AlertEvaluator = (*MockAlertEvaluator)(nil)

func (m *MockAlertEvaluator) EvaluateStock(ctx context.Context, product *models.Product) *models.Alert {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Alert)
}

func (m *MockAlertEvaluator) ResolveStockAlerts(ctx context.Context, productID string) int {
	return m.Called(ctx, productID).Int(0)
}

type MockStockLedger struct {
	mock.Mock
}

var _ StockLedger = (*MockStockLedger)(nil)

func (m *MockStockLedger) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockStockLedger) AddStock(ctx context.Context, productID string, amount int) (*models.Product, error) {
	args := m.Called(ctx, productID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockStockLedger) ReduceStock(ctx context.Context, productID string, amount int) (*models.Product, error) {
	args := m.Called(ctx, productID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type MockSupplierLedger struct {
	mock.Mock
}

var _ SupplierLedger = (*MockSupplierLedger)(nil)

func (m *MockSupplierLedger) GetSupplier(ctx context.Context, supplierID string) (*models.Supplier, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockSupplierLedger) IncrementOrderCount(ctx context.Context, supplierID string) (*models.Supplier, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}
