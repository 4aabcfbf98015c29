package services

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock-service/internal/clock"
	"stock-service/internal/idgen"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

var testStart = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testClock() *clock.Manual {
	return clock.NewManual(testStart)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testProduct(id string, qty, minStock int, price string) *models.Product {
	return &models.Product{
		ID:            id,
		Name:          "Product " + id,
		Category:      "General",
		Price:         decimal.RequireFromString(price),
		Quantity:      qty,
		MinStockLevel: minStock,
		CreatedAt:     testStart,
		UpdatedAt:     testStart,
	}
}

// testEnv wires real services over an in-memory SQLite database
type testEnv struct {
	clock        *clock.Manual
	products     *repository.ProductRepository
	alertRepo    *repository.AlertRepository
	txRepo       *repository.TransactionRepository
	inventory    *InventoryService
	alerts       *AlertService
	transactions *TransactionService
	suppliers    *SupplierService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Alert{}, &models.Transaction{}, &models.Supplier{}))

	clk := testClock()
	ids := idgen.New(clk)
	log := quietLogger()

	env := &testEnv{
		clock:     clk,
		products:  repository.NewProductRepository(db, nil),
		alertRepo: repository.NewAlertRepository(db),
		txRepo:    repository.NewTransactionRepository(db),
	}
	env.alerts = NewAlertService(env.alertRepo, ids, clk, nil, nil, log)
	env.inventory = NewInventoryService(env.products, env.alerts, ids, clk, nil, nil, log)
	env.suppliers = NewSupplierService(repository.NewSupplierRepository(db), ids, clk, log)
	env.transactions = NewTransactionService(env.txRepo, env.inventory, env.suppliers, ids, clk, nil, nil, log)
	return env
}

func (e *testEnv) createProduct(t *testing.T, name string, qty, minStock int, price string) *models.Product {
	t.Helper()
	p, err := e.inventory.CreateProduct(context.Background(), models.CreateProductRequest{
		Name:          name,
		Category:      "General",
		Price:         decimal.RequireFromString(price),
		Quantity:      qty,
		MinStockLevel: minStock,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) openAlerts(t *testing.T, productID string) []models.Alert {
	t.Helper()
	alerts, err := e.alertRepo.FindUnresolvedByProduct(context.Background(), productID)
	require.NoError(t, err)
	return alerts
}
