package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"stock-service/internal/clock"
	"stock-service/internal/events"
	"stock-service/internal/idgen"
	"stock-service/internal/metrics"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// AlertService is the alert engine. Stock alerts are derived only from a
// product's stock level and the alerts already open against it.
type AlertService struct {
	alerts    repository.AlertRepositoryInterface
	ids       IDGenerator
	clock     clock.Clock
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logrus.Entry

	mu sync.Mutex
}

var _ AlertEvaluator = (*AlertService)(nil)

func NewAlertService(
	alerts repository.AlertRepositoryInterface,
	ids IDGenerator,
	clk clock.Clock,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *AlertService {
	if clk == nil {
		clk = clock.System{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AlertService{
		alerts:    alerts,
		ids:       ids,
		clock:     clk,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithField("component", "alert-engine"),
	}
}

// stockAlertFor decides which stock alert, if any, the product's level calls for
func stockAlertFor(p *models.Product) (models.AlertType, models.AlertPriority, string, bool) {
	switch {
	case p.IsOutOfStock():
		return models.AlertTypeOutOfStock, models.AlertPriorityCritical,
			fmt.Sprintf("Product is out of stock: %s", p.Name), true
	case p.IsLowStock():
		return models.AlertTypeLowStock, models.AlertPriorityHigh,
			fmt.Sprintf("Low stock alert for: %s (Current: %d, Min: %d)", p.Name, p.Quantity, p.MinStockLevel), true
	default:
		return "", "", "", false
	}
}

// ========== Stock Side Channel ==========

// EvaluateStock makes sure exactly one open alert exists for the product's
// current stock condition. Open alerts of other types are left alone.
// Failures are logged and swallowed; the created alert is returned, or nil.
func (s *AlertService) EvaluateStock(ctx context.Context, product *models.Product) *models.Alert {
	alertType, priority, message, ok := stockAlertFor(product)
	if !ok {
		return nil
	}

	alert, err := s.ensureAlert(ctx, product.ID, alertType, priority, message)
	if err != nil {
		s.metrics.AlertSideEffectFailed()
		s.logger.WithFields(logrus.Fields{
			"productId": product.ID,
			"type":      alertType,
		}).WithError(err).Error("Failed to create stock alert")
		return nil
	}
	if alert == nil {
		return nil
	}

	s.metrics.AlertCreated(string(alert.Type), string(alert.Priority))
	s.logger.WithFields(logrus.Fields{
		"alertId":   alert.ID,
		"productId": product.ID,
		"type":      alert.Type,
		"priority":  alert.Priority,
	}).Warn("Stock alert raised")

	if alert.Type == models.AlertTypeOutOfStock {
		_ = s.publisher.PublishOutOfStock(ctx, product, alert)
	} else {
		_ = s.publisher.PublishLowStock(ctx, product, alert)
	}
	return alert
}

func (s *AlertService) ensureAlert(ctx context.Context, productID string, alertType models.AlertType, priority models.AlertPriority, message string) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	open, err := s.alerts.FindUnresolvedByProduct(ctx, productID, alertType)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, nil
	}

	alert := &models.Alert{
		ID:        s.ids.Next(idgen.KindAlert),
		Type:      alertType,
		Priority:  priority,
		ProductID: productID,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}
	if err := s.alerts.Save(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// ResolveStockAlerts resolves every open low_stock and out_of_stock alert of
// the product on behalf of the system. It returns how many were resolved.
func (s *AlertService) ResolveStockAlerts(ctx context.Context, productID string) int {
	s.mu.Lock()
	open, err := s.alerts.FindUnresolvedByProduct(ctx, productID, models.AlertTypeLowStock, models.AlertTypeOutOfStock)
	if err != nil {
		s.mu.Unlock()
		s.metrics.AlertSideEffectFailed()
		s.logger.WithField("productId", productID).WithError(err).Error("Failed to load stock alerts for resolution")
		return 0
	}

	now := s.clock.Now()
	resolved := make([]*models.Alert, 0, len(open))
	for i := range open {
		alert := &open[i]
		if !alert.Resolve(models.SystemResolver, now) {
			continue
		}
		if err := s.alerts.Update(ctx, alert); err != nil {
			s.metrics.AlertSideEffectFailed()
			s.logger.WithFields(logrus.Fields{
				"alertId":   alert.ID,
				"productId": productID,
			}).WithError(err).Error("Failed to auto-resolve stock alert")
			continue
		}
		resolved = append(resolved, alert)
	}
	s.mu.Unlock()

	for _, alert := range resolved {
		s.metrics.AlertResolved(true)
		_ = s.publisher.PublishAlertResolved(ctx, alert)
	}
	if len(resolved) > 0 {
		s.logger.WithFields(logrus.Fields{
			"productId": productID,
			"resolved":  len(resolved),
		}).Info("Stock alerts auto-resolved")
	}
	return len(resolved)
}

// ========== User Operations ==========

// Resolve marks an alert resolved by a user. The reserved system resolver is
// rejected, and a second resolution leaves the first one intact.
func (s *AlertService) Resolve(ctx context.Context, alertID, userID string) (*models.Alert, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, validationError("resolver id is required")
	}
	if strings.EqualFold(userID, models.SystemResolver) {
		return nil, validationError("%q is reserved for automatic resolution", models.SystemResolver)
	}

	s.mu.Lock()
	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !alert.Resolve(userID, s.clock.Now()) {
		s.mu.Unlock()
		return nil, fmt.Errorf("alert %s: %w", alertID, ErrAlreadyResolved)
	}
	err = s.alerts.Update(ctx, alert)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}

	s.metrics.AlertResolved(false)
	_ = s.publisher.PublishAlertResolved(ctx, alert)
	s.logger.WithFields(logrus.Fields{
		"alertId":    alertID,
		"resolvedBy": userID,
	}).Info("Alert resolved")
	return alert, nil
}

func (s *AlertService) DeleteAlert(ctx context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts.Delete(ctx, alertID)
}

// ========== Queries ==========

func (s *AlertService) GetAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	return s.alerts.FindByID(ctx, alertID)
}

func (s *AlertService) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]models.Alert, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, validationError("unknown alert type %q", filter.Type)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, validationError("unknown alert priority %q", filter.Priority)
	}
	return s.alerts.Find(ctx, filter)
}

func (s *AlertService) UnresolvedAlerts(ctx context.Context) ([]models.Alert, error) {
	unresolved := false
	return s.alerts.Find(ctx, repository.AlertFilter{Resolved: &unresolved})
}

// UrgentAlerts returns open alerts with critical or high priority
func (s *AlertService) UrgentAlerts(ctx context.Context) ([]models.Alert, error) {
	open, err := s.UnresolvedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	urgent := make([]models.Alert, 0, len(open))
	for _, a := range open {
		if a.IsUrgent() {
			urgent = append(urgent, a)
		}
	}
	return urgent, nil
}

func (s *AlertService) AlertsByProduct(ctx context.Context, productID string) ([]models.Alert, error) {
	return s.alerts.Find(ctx, repository.AlertFilter{ProductID: productID})
}

func (s *AlertService) AlertsByPriority(ctx context.Context, priority models.AlertPriority) ([]models.Alert, error) {
	return s.ListAlerts(ctx, repository.AlertFilter{Priority: priority})
}

func (s *AlertService) UnresolvedCount(ctx context.Context) (int64, error) {
	return s.alerts.CountUnresolved(ctx)
}

// Summary counts open alerts by priority and type
func (s *AlertService) Summary(ctx context.Context) (*models.AlertSummary, error) {
	open, err := s.UnresolvedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	summary := &models.AlertSummary{
		ByPriority: make(map[models.AlertPriority]int64),
		ByType:     make(map[models.AlertType]int64),
	}
	for _, a := range open {
		summary.Unresolved++
		if a.IsUrgent() {
			summary.Urgent++
		}
		summary.ByPriority[a.Priority]++
		summary.ByType[a.Type]++
	}
	return summary, nil
}
