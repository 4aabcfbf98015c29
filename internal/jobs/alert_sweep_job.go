package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"stock-service/internal/models"
	"stock-service/internal/repository"
)

const DefaultSweepInterval = 15 * time.Minute

// StockReconciler lists the catalogue and reconciles one product's alerts
// against its quantity at the time of the call, not the listed snapshot
type StockReconciler interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ReconcileAlerts(ctx context.Context, productID string) (raised bool, resolved int, err error)
}

// SweepResult summarises one pass
type SweepResult struct {
	Checked  int `json:"checked"`
	Raised   int `json:"raised"`
	Resolved int `json:"resolved"`
}

// AlertSweepJob periodically reconciles stock alerts with current stock.
// Alert side effects are best effort, so a failed creation or resolution is
// repaired on the next pass.
type AlertSweepJob struct {
	stock    StockReconciler
	logger   *logrus.Entry
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewAlertSweepJob(stock StockReconciler, interval time.Duration, logger *logrus.Logger) *AlertSweepJob {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AlertSweepJob{
		stock:    stock,
		logger:   logger.WithField("component", "alert-sweep"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a pass immediately and then on every tick until Stop or ctx ends
func (j *AlertSweepJob) Start(ctx context.Context) {
	j.logger.WithField("interval", j.interval.String()).Info("Alert sweep job started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			j.RunOnce(ctx)
		case <-j.stopCh:
			j.logger.Info("Alert sweep job stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Alert sweep job context cancelled")
			return
		}
	}
}

// Stop signals the job to stop. It is safe to call more than once.
func (j *AlertSweepJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

// RunOnce raises missing alerts for low and empty products and resolves
// stale stock alerts on products back above their minimum.
func (j *AlertSweepJob) RunOnce(ctx context.Context) SweepResult {
	var result SweepResult

	products, err := j.stock.ListProducts(ctx)
	if err != nil {
		j.logger.WithError(err).Error("Failed to list products for alert sweep")
		return result
	}

	for i := range products {
		if ctx.Err() != nil {
			break
		}
		id := products[i].ID
		raised, resolved, err := j.stock.ReconcileAlerts(ctx, id)
		if err != nil {
			// deleted since the listing
			if !errors.Is(err, repository.ErrNotFound) {
				j.logger.WithField("productId", id).WithError(err).Warn("Failed to reconcile stock alerts")
			}
			continue
		}
		result.Checked++
		if raised {
			result.Raised++
		}
		result.Resolved += resolved
	}

	entry := j.logger.WithFields(logrus.Fields{
		"checked":  result.Checked,
		"raised":   result.Raised,
		"resolved": result.Resolved,
	})
	if result.Raised > 0 || result.Resolved > 0 {
		entry.Info("Alert sweep repaired stock alerts")
	} else {
		entry.Debug("Alert sweep found nothing to repair")
	}
	return result
}
