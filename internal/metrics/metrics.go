// Package metrics exposes Prometheus instrumentation for stock-service.
//
// Every method is safe on a nil *Metrics so services can be built without it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "stock"

type Metrics struct {
	registry *prometheus.Registry

	transactions      *prometheus.CounterVec
	transactionAmount *prometheus.CounterVec
	stockMutations    *prometheus.CounterVec
	alertsCreated     *prometheus.CounterVec
	alertsResolved    *prometheus.CounterVec
	alertFailures     prometheus.Counter

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// New builds the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Recorded transactions by type.",
		}, []string{"type"}),
		transactionAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_amount_total",
			Help:      "Sum of transaction total amounts by type.",
		}, []string{"type"}),
		stockMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Stock ledger mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "created_total",
			Help:      "Alerts raised by type and priority.",
		}, []string{"type", "priority"}),
		alertsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "resolved_total",
			Help:      "Alerts resolved, split by system or user resolution.",
		}, []string{"resolver"}),
		alertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "side_effect_failures_total",
			Help:      "Alert creation or auto-resolution failures that were swallowed.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transactions,
		m.transactionAmount,
		m.stockMutations,
		m.alertsCreated,
		m.alertsResolved,
		m.alertFailures,
		m.requestDuration,
		m.requestTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) TransactionRecorded(typ string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(typ).Inc()
	m.transactionAmount.WithLabelValues(typ).Add(amount.InexactFloat64())
}

func (m *Metrics) StockMutation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.stockMutations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) AlertCreated(typ, priority string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(typ, priority).Inc()
}

func (m *Metrics) AlertResolved(system bool) {
	if m == nil {
		return
	}
	resolver := "user"
	if system {
		resolver = "system"
	}
	m.alertsResolved.WithLabelValues(resolver).Inc()
}

func (m *Metrics) AlertSideEffectFailed() {
	if m == nil {
		return
	}
	m.alertFailures.Inc()
}

// Middleware records request count and latency per route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
