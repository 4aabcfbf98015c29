package features

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock-service/internal/app"
	"stock-service/internal/clock"
	"stock-service/internal/models"
	"stock-service/internal/repository"
	"stock-service/internal/services"
)

var scenarioStart = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type ledgerTestContext struct {
	app       *app.App
	clock     *clock.Manual
	products  map[string]string
	suppliers map[string]string
	lastTx    *models.Transaction
	lastAlert string
	err       error
}

func (c *ledgerTestContext) reset() error {
	if c.app != nil {
		c.app.Close()
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	log := logrus.New()
	log.SetOutput(io.Discard)

	c.clock = clock.NewManual(scenarioStart)
	c.app, err = app.NewWithDB(context.Background(), db, c.clock, log)
	if err != nil {
		return err
	}
	c.products = map[string]string{}
	c.suppliers = map[string]string{}
	c.lastTx = nil
	c.lastAlert = ""
	c.err = nil
	return nil
}

func (c *ledgerTestContext) productID(name string) (string, error) {
	id, ok := c.products[name]
	if !ok {
		return "", fmt.Errorf("unknown product %q", name)
	}
	return id, nil
}

// Given

func (c *ledgerTestContext) aProductPricedAtWithQuantityAndMinimumStock(name, price string, qty, minStock int) error {
	p, err := c.app.Inventory.CreateProduct(context.Background(), models.CreateProductRequest{
		Name:          name,
		Category:      "General",
		Price:         decimal.RequireFromString(price),
		Quantity:      qty,
		MinStockLevel: minStock,
	})
	if err != nil {
		return err
	}
	c.products[name] = p.ID
	return nil
}

func (c *ledgerTestContext) aSupplierRated(name string, rating float64) error {
	ctx := context.Background()
	s, err := c.app.SupplierBook.CreateSupplier(ctx, models.CreateSupplierRequest{Name: name})
	if err != nil {
		return err
	}
	if _, err := c.app.SupplierBook.UpdateRating(ctx, s.ID, rating); err != nil {
		return err
	}
	c.suppliers[name] = s.ID
	return nil
}

// When

func (c *ledgerTestContext) record(tx *models.Transaction, err error) error {
	c.err = err
	if err == nil {
		c.lastTx = tx
	}
	return nil
}

func (c *ledgerTestContext) userSellsOf(user string, qty int, product string) error {
	id, err := c.productID(product)
	if err != nil {
		return err
	}
	return c.record(c.app.Recorder.RecordSale(context.Background(), models.SaleRequest{ProductID: id, Quantity: qty}, user))
}

func (c *ledgerTestContext) userPurchasesOfAtFrom(user string, qty int, product, price, supplier string) error {
	id, err := c.productID(product)
	if err != nil {
		return err
	}
	supplierID, ok := c.suppliers[supplier]
	if !ok {
		return fmt.Errorf("unknown supplier %q", supplier)
	}
	return c.record(c.app.Recorder.RecordPurchase(context.Background(), models.PurchaseRequest{
		ProductID:  id,
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(price),
		SupplierID: &supplierID,
	}, user))
}

func (c *ledgerTestContext) userAdjustsBy(user, product string, qty int) error {
	id, err := c.productID(product)
	if err != nil {
		return err
	}
	return c.record(c.app.Recorder.RecordAdjustment(context.Background(), models.AdjustmentRequest{ProductID: id, Quantity: qty}, user))
}

func (c *ledgerTestContext) timePasses(n int, unit string) error {
	d := time.Minute
	if strings.HasPrefix(unit, "hour") {
		d = time.Hour
	}
	c.clock.Advance(time.Duration(n) * d)
	return nil
}

func (c *ledgerTestContext) openAlerts(product, alertType string) ([]models.Alert, error) {
	id, err := c.productID(product)
	if err != nil {
		return nil, err
	}
	unresolved := false
	return c.app.AlertEngine.ListAlerts(context.Background(), repository.AlertFilter{
		ProductID: id,
		Type:      models.AlertType(alertType),
		Resolved:  &unresolved,
	})
}

func (c *ledgerTestContext) userResolvesTheOpenAlertFor(user, alertType, product string) error {
	alerts, err := c.openAlerts(product, alertType)
	if err != nil {
		return err
	}
	if len(alerts) != 1 {
		return fmt.Errorf("expected one open %s alert, found %d", alertType, len(alerts))
	}
	c.lastAlert = alerts[0].ID
	_, c.err = c.app.AlertEngine.Resolve(context.Background(), c.lastAlert, user)
	return nil
}

func (c *ledgerTestContext) userResolvesTheLastAlertAgain(user string) error {
	if c.lastAlert == "" {
		return errors.New("no alert has been resolved yet")
	}
	_, c.err = c.app.AlertEngine.Resolve(context.Background(), c.lastAlert, user)
	return nil
}

// Then

func (c *ledgerTestContext) theOperationSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

var failureKinds = map[string]error{
	"insufficient stock": services.ErrInsufficientStock,
	"invalid amount":     services.ErrInvalidAmount,
	"validation":         services.ErrValidation,
	"already resolved":   services.ErrAlreadyResolved,
	"not found":          services.ErrNotFound,
}

func (c *ledgerTestContext) theOperationFailsWith(kind string) error {
	target, ok := failureKinds[kind]
	if !ok {
		return fmt.Errorf("unknown failure kind %q", kind)
	}
	if !errors.Is(c.err, target) {
		return fmt.Errorf("expected %s, got %v", kind, c.err)
	}
	return nil
}

func (c *ledgerTestContext) productHasQuantity(product string, qty int) error {
	id, err := c.productID(product)
	if err != nil {
		return err
	}
	p, err := c.app.Inventory.GetProduct(context.Background(), id)
	if err != nil {
		return err
	}
	if p.Quantity != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, p.Quantity)
	}
	return nil
}

func (c *ledgerTestContext) theLastTransactionIsAOfAtTotalling(typ string, qty int, price, total string) error {
	if c.lastTx == nil {
		return errors.New("no transaction was recorded")
	}
	tx := c.lastTx
	if string(tx.Type) != typ || tx.Quantity != qty {
		return fmt.Errorf("expected %s of %d, got %s of %d", typ, qty, tx.Type, tx.Quantity)
	}
	if !tx.UnitPrice.Equal(decimal.RequireFromString(price)) {
		return fmt.Errorf("expected unit price %s, got %s", price, tx.UnitPrice)
	}
	if !tx.TotalAmount.Equal(decimal.RequireFromString(total)) {
		return fmt.Errorf("expected total %s, got %s", total, tx.TotalAmount)
	}
	return nil
}

func (c *ledgerTestContext) thereAreTransactions(n int) error {
	count, err := c.app.Recorder.TransactionCount(context.Background(), repository.TransactionFilter{})
	if err != nil {
		return err
	}
	if count != int64(n) {
		return fmt.Errorf("expected %d transactions, got %d", n, count)
	}
	return nil
}

func (c *ledgerTestContext) productHasOpenAlerts(product string, n int, alertType string) error {
	alerts, err := c.openAlerts(product, alertType)
	if err != nil {
		return err
	}
	if len(alerts) != n {
		return fmt.Errorf("expected %d open %s alerts, got %d", n, alertType, len(alerts))
	}
	return nil
}

func (c *ledgerTestContext) theAlertForWasResolvedBy(alertType, product, user string) error {
	id, err := c.productID(product)
	if err != nil {
		return err
	}
	resolved := true
	alerts, err := c.app.AlertEngine.ListAlerts(context.Background(), repository.AlertFilter{
		ProductID: id,
		Type:      models.AlertType(alertType),
		Resolved:  &resolved,
	})
	if err != nil {
		return err
	}
	if len(alerts) != 1 {
		return fmt.Errorf("expected one resolved %s alert, got %d", alertType, len(alerts))
	}
	a := alerts[0]
	if a.ResolvedBy == nil || *a.ResolvedBy != user {
		return fmt.Errorf("expected resolver %s, got %v", user, a.ResolvedBy)
	}
	if a.ResolvedAt == nil || a.ResolvedAt.Before(a.CreatedAt) {
		return fmt.Errorf("resolution time %v precedes creation %v", a.ResolvedAt, a.CreatedAt)
	}
	return nil
}

func (c *ledgerTestContext) supplierHasRatingAndOrders(supplier string, rating float64, orders int) error {
	id, ok := c.suppliers[supplier]
	if !ok {
		return fmt.Errorf("unknown supplier %q", supplier)
	}
	s, err := c.app.SupplierBook.GetSupplier(context.Background(), id)
	if err != nil {
		return err
	}
	if s.Rating != rating || s.TotalOrders != orders {
		return fmt.Errorf("expected rating %.2f with %d orders, got %.2f with %d", rating, orders, s.Rating, s.TotalOrders)
	}
	return nil
}

func (c *ledgerTestContext) totalsBetween(typ, total, from, to string) error {
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return err
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return err
	}
	t := models.TransactionType(typ)
	totals, err := c.app.Recorder.Totals(context.Background(), repository.TransactionFilter{Type: &t, From: &start, To: &end})
	if err != nil {
		return err
	}
	if !totals.Total.Equal(decimal.RequireFromString(total)) {
		return fmt.Errorf("expected %s total %s, got %s", typ, total, totals.Total)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &ledgerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc.app != nil {
			tc.app.Close()
			tc.app = nil
		}
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced at ([\d.]+) with quantity (\d+) and minimum stock (\d+)$`, tc.aProductPricedAtWithQuantityAndMinimumStock)
	ctx.Step(`^a supplier "([^"]*)" rated ([\d.]+)$`, tc.aSupplierRated)

	// When steps
	ctx.Step(`^user "([^"]*)" sells (-?\d+) of "([^"]*)"$`, tc.userSellsOf)
	ctx.Step(`^user "([^"]*)" purchases (\d+) of "([^"]*)" at ([\d.]+) from "([^"]*)"$`, tc.userPurchasesOfAtFrom)
	ctx.Step(`^user "([^"]*)" adjusts "([^"]*)" by (-?\d+)$`, tc.userAdjustsBy)
	ctx.Step(`^(\d+) (minutes?|hours?) pass(?:es)?$`, tc.timePasses)
	ctx.Step(`^user "([^"]*)" resolves the open "([^"]*)" alert for "([^"]*)"$`, tc.userResolvesTheOpenAlertFor)
	ctx.Step(`^user "([^"]*)" resolves the last alert again$`, tc.userResolvesTheLastAlertAgain)

	// Then steps
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^"([^"]*)" has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the last transaction is a "([^"]*)" of (\d+) at ([\d.]+) totalling ([\d.]+)$`, tc.theLastTransactionIsAOfAtTotalling)
	ctx.Step(`^there (?:is|are) (\d+) transactions?$`, tc.thereAreTransactions)
	ctx.Step(`^"([^"]*)" has (\d+) open "([^"]*)" alerts?$`, tc.productHasOpenAlerts)
	ctx.Step(`^the "([^"]*)" alert for "([^"]*)" was resolved by "([^"]*)"$`, tc.theAlertForWasResolvedBy)
	ctx.Step(`^supplier "([^"]*)" has rating ([\d.]+) and (\d+) orders?$`, tc.supplierHasRatingAndOrders)
	ctx.Step(`^"([^"]*)" totals ([\d.]+) between "([^"]*)" and "([^"]*)"$`, tc.totalsBetween)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"stock_ledger.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
