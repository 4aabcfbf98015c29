package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-service/internal/clock"
	"stock-service/internal/models"
	"stock-service/internal/repository"
	"stock-service/internal/sheets"
)

type ReportKind string

const (
	ReportInventory ReportKind = "inventory"
	ReportLowStock  ReportKind = "low-stock"
	ReportSales     ReportKind = "sales"
	ReportSuppliers ReportKind = "suppliers"
	ReportAlerts    ReportKind = "alerts"
)

var ReportKinds = []ReportKind{ReportInventory, ReportLowStock, ReportSales, ReportSuppliers, ReportAlerts}

// reorderBuffer is added on top of the shortfall when suggesting a reorder
const reorderBuffer = 10

func ParseReportKind(name string) (ReportKind, error) {
	kind := ReportKind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range ReportKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", validationError("unknown report %q", name)
}

type Figure struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Report is a point-in-time table with headline figures. Cells are
// preformatted strings so every output format shows the same values.
type Report struct {
	Kind        ReportKind `json:"kind"`
	Title       string     `json:"title"`
	GeneratedAt time.Time  `json:"generatedAt"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Summary     []Figure   `json:"summary"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
}

// Figure looks a summary value up by label
func (r *Report) Figure(label string) string {
	for _, f := range r.Summary {
		if f.Label == label {
			return f.Value
		}
	}
	return ""
}

// Table renders the rows for CSV or XLSX download
func (r *Report) Table() sheets.Table {
	cols := make([]sheets.Column, len(r.Columns))
	for i, name := range r.Columns {
		cols[i] = sheets.Column{Name: name}
	}
	return sheets.Table{Title: r.Title, Columns: cols, Rows: r.Rows}
}

type ReportCatalogue interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	LowStockProducts(ctx context.Context) ([]models.Product, error)
}

type ReportLedger interface {
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error)
}

type SupplierLister interface {
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}

type UnresolvedAlertLister interface {
	UnresolvedAlerts(ctx context.Context) ([]models.Alert, error)
}

// ReportService builds read-only reports over the other services
type ReportService struct {
	catalogue ReportCatalogue
	ledger    ReportLedger
	suppliers SupplierLister
	alerts    UnresolvedAlertLister
	clock     clock.Clock
	logger    *logrus.Entry
}

func NewReportService(
	catalogue ReportCatalogue,
	ledger ReportLedger,
	suppliers SupplierLister,
	alerts UnresolvedAlertLister,
	clk clock.Clock,
	logger *logrus.Logger,
) *ReportService {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ReportService{
		catalogue: catalogue,
		ledger:    ledger,
		suppliers: suppliers,
		alerts:    alerts,
		clock:     clk,
		logger:    logger.WithField("component", "reports"),
	}
}

// Generate builds one report. The window only applies to the sales report;
// either bound may be nil.
func (s *ReportService) Generate(ctx context.Context, kind ReportKind, from, to *time.Time) (*Report, error) {
	var (
		report *Report
		err    error
	)
	switch kind {
	case ReportInventory:
		report, err = s.inventory(ctx)
	case ReportLowStock:
		report, err = s.lowStock(ctx)
	case ReportSales:
		report, err = s.sales(ctx, from, to)
	case ReportSuppliers:
		report, err = s.supplierReport(ctx)
	case ReportAlerts:
		report, err = s.alertReport(ctx)
	default:
		return nil, validationError("unknown report %q", kind)
	}
	if err != nil {
		return nil, err
	}

	report.Kind = kind
	report.GeneratedAt = s.clock.Now().UTC()
	if report.Rows == nil {
		report.Rows = [][]string{}
	}
	s.logger.WithFields(logrus.Fields{
		"report": kind,
		"rows":   len(report.Rows),
	}).Info("Report generated")
	return report, nil
}

func stockLabel(p *models.Product) string {
	switch {
	case p.IsOutOfStock():
		return "OUT"
	case p.IsLowStock():
		return "LOW"
	default:
		return "OK"
	}
}

func (s *ReportService) inventory(ctx context.Context) (*Report, error) {
	products, err := s.catalogue.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(products))
	for i := range products {
		p := &products[i]
		total = total.Add(p.TotalValue())
		rows = append(rows, []string{
			p.ID, p.Name, p.Category, p.Price.StringFixed(2), strconv.Itoa(p.Quantity), stockLabel(p),
		})
	}
	return &Report{
		Title: "Inventory",
		Summary: []Figure{
			{Label: "Total products", Value: strconv.Itoa(len(products))},
			{Label: "Total value", Value: total.StringFixed(2)},
		},
		Columns: []string{"ID", "Name", "Category", "Price", "Quantity", "Status"},
		Rows:    rows,
	}, nil
}

func (s *ReportService) lowStock(ctx context.Context) (*Report, error) {
	products, err := s.catalogue.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(products))
	for i := range products {
		p := &products[i]
		reorder := max(0, p.MinStockLevel-p.Quantity+reorderBuffer)
		rows = append(rows, []string{
			p.ID, p.Name, strconv.Itoa(p.Quantity), strconv.Itoa(p.MinStockLevel), strconv.Itoa(reorder),
		})
	}
	return &Report{
		Title:   "Low Stock",
		Summary: []Figure{{Label: "Products at or below minimum", Value: strconv.Itoa(len(products))}},
		Columns: []string{"ID", "Name", "Current", "Minimum", "Reorder"},
		Rows:    rows,
	}, nil
}

func (s *ReportService) sales(ctx context.Context, from, to *time.Time) (*Report, error) {
	sale := models.TransactionTypeSale
	txs, err := s.ledger.ListTransactions(ctx, repository.TransactionFilter{Type: &sale, From: from, To: to})
	if err != nil {
		return nil, err
	}

	items := 0
	rows := make([][]string, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		items += tx.Quantity
		rows = append(rows, []string{
			tx.Timestamp.UTC().Format(time.RFC3339),
			tx.ID,
			tx.ProductID,
			strconv.Itoa(tx.Quantity),
			tx.TotalAmount.StringFixed(2),
			tx.PerformedBy,
		})
	}
	return &Report{
		Title: "Sales",
		From:  utcPtr(from),
		To:    utcPtr(to),
		Summary: []Figure{
			{Label: "Transactions", Value: strconv.Itoa(len(txs))},
			{Label: "Items sold", Value: strconv.Itoa(items)},
			{Label: "Total amount", Value: repository.SumTotalAmount(txs).StringFixed(2)},
		},
		Columns: []string{"Date", "Transaction", "Product", "Quantity", "Amount", "Performed By"},
		Rows:    rows,
	}, nil
}

func (s *ReportService) supplierReport(ctx context.Context) (*Report, error) {
	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	active := 0
	rows := make([][]string, 0, len(suppliers))
	for i := range suppliers {
		sup := &suppliers[i]
		if sup.Active {
			active++
		}
		rows = append(rows, []string{
			sup.ID,
			sup.Name,
			sup.ContactPerson,
			sup.Phone,
			strconv.Itoa(sup.TotalOrders),
			fmt.Sprintf("%.1f", sup.Rating),
			strconv.FormatBool(sup.Active),
		})
	}
	return &Report{
		Title: "Suppliers",
		Summary: []Figure{
			{Label: "Suppliers", Value: strconv.Itoa(len(suppliers))},
			{Label: "Active", Value: strconv.Itoa(active)},
		},
		Columns: []string{"ID", "Name", "Contact", "Phone", "Orders", "Rating", "Active"},
		Rows:    rows,
	}, nil
}

func (s *ReportService) alertReport(ctx context.Context) (*Report, error) {
	alerts, err := s.alerts.UnresolvedAlerts(ctx)
	if err != nil {
		return nil, err
	}

	critical := 0
	rows := make([][]string, 0, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		if a.Priority == models.AlertPriorityCritical {
			critical++
		}
		rows = append(rows, []string{
			a.ID, string(a.Type), string(a.Priority), a.ProductID, a.CreatedAt.UTC().Format(time.RFC3339), a.Message,
		})
	}
	return &Report{
		Title: "Alerts",
		Summary: []Figure{
			{Label: "Unresolved alerts", Value: strconv.Itoa(len(alerts))},
			{Label: "Critical", Value: strconv.Itoa(critical)},
		},
		Columns: []string{"ID", "Type", "Priority", "Product", "Created", "Message"},
		Rows:    rows,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
