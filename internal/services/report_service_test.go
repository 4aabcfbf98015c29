package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-service/internal/models"
)

func newTestReports(env *testEnv) *ReportService {
	return NewReportService(env.inventory, env.transactions, env.suppliers, env.alerts, env.clock, quietLogger())
}

func TestReports_InventoryAndLowStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createProduct(t, "Drill", 8, 2, "45.00")
	env.createProduct(t, "Bit", 0, 10, "1.25")
	env.createProduct(t, "Saw", 3, 3, "20.00")
	reports := newTestReports(env)

	inventory, err := reports.Generate(ctx, ReportInventory, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "3", inventory.Figure("Total products"))
	assert.Equal(t, "420.00", inventory.Figure("Total value"))
	assert.True(t, inventory.GeneratedAt.Equal(testStart))
	statuses := map[string]string{}
	for _, row := range inventory.Rows {
		statuses[row[1]] = row[5]
	}
	assert.Equal(t, map[string]string{"Drill": "OK", "Bit": "OUT", "Saw": "LOW"}, statuses)

	low, err := reports.Generate(ctx, ReportLowStock, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", low.Figure("Products at or below minimum"))
	reorder := map[string]string{}
	for _, row := range low.Rows {
		reorder[row[1]] = row[4]
	}
	assert.Equal(t, map[string]string{"Bit": "20", "Saw": "10"}, reorder)
}

func TestReports_SalesWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProduct(t, "Tape", 50, 0, "3.00")

	_, err := env.transactions.RecordSale(ctx, models.SaleRequest{ProductID: p.ID, Quantity: 2}, "U001")
	require.NoError(t, err)
	env.clock.Advance(48 * time.Hour)
	_, err = env.transactions.RecordSale(ctx, models.SaleRequest{ProductID: p.ID, Quantity: 5}, "U002")
	require.NoError(t, err)
	_, err = env.transactions.RecordPurchase(ctx, models.PurchaseRequest{ProductID: p.ID, Quantity: 9, UnitPrice: decimal.NewFromInt(1)}, "U002")
	require.NoError(t, err)

	reports := newTestReports(env)
	all, err := reports.Generate(ctx, ReportSales, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", all.Figure("Transactions"))
	assert.Equal(t, "7", all.Figure("Items sold"))
	assert.Equal(t, "21.00", all.Figure("Total amount"))

	from := testStart
	to := testStart.Add(24 * time.Hour)
	first, err := reports.Generate(ctx, ReportSales, &from, &to)
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	assert.Equal(t, "U001", first.Rows[0][5])
	assert.Equal(t, "6.00", first.Figure("Total amount"))
	require.NotNil(t, first.From)
	assert.True(t, first.From.Equal(from))

	_, err = reports.Generate(ctx, ReportSales, &to, &from)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReports_SuppliersAndAlerts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.suppliers.CreateSupplier(ctx, models.CreateSupplierRequest{Name: "Acme", ContactPerson: "Sam", Phone: "555"})
	require.NoError(t, err)
	env.createProduct(t, "Fuse", 0, 4, "0.50")

	reports := newTestReports(env)
	sup, err := reports.Generate(ctx, ReportSuppliers, nil, nil)
	require.NoError(t, err)
	require.Len(t, sup.Rows, 1)
	assert.Equal(t, []string{"S0001", "Acme", "Sam", "555", "0", "0.0", "true"}, sup.Rows[0])

	alerts, err := reports.Generate(ctx, ReportAlerts, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", alerts.Figure("Unresolved alerts"))
	assert.Equal(t, "1", alerts.Figure("Critical"))
	assert.Equal(t, string(models.AlertTypeOutOfStock), alerts.Rows[0][1])

	table := alerts.Table()
	assert.Equal(t, "Alerts", table.Title)
	assert.Len(t, table.Columns, len(alerts.Columns))
}

func TestReports_UnknownKind(t *testing.T) {
	_, err := ParseReportKind("payroll")
	assert.ErrorIs(t, err, ErrValidation)

	kind, err := ParseReportKind(" Low-Stock ")
	require.NoError(t, err)
	assert.Equal(t, ReportLowStock, kind)

	_, err = newTestReports(newTestEnv(t)).Generate(context.Background(), ReportKind("payroll"), nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}
