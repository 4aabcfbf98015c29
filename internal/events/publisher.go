// Package events publishes stock and alert events to NATS JetStream
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-service/internal/clock"
	"stock-service/internal/models"
)

const StreamName = "STOCK_EVENTS"

const (
	SubjectLowStock            = "stock.low"
	SubjectOutOfStock          = "stock.out"
	SubjectStockAdjusted       = "stock.adjusted"
	SubjectAlertResolved       = "stock.alert.resolved"
	SubjectTransactionRecorded = "stock.transaction.recorded"
)

// Publisher is the outbound event channel. Services treat every call as best
// effort and only log failures.
type Publisher interface {
	PublishLowStock(ctx context.Context, product *models.Product, alert *models.Alert) error
	PublishOutOfStock(ctx context.Context, product *models.Product, alert *models.Alert) error
	PublishStockAdjusted(ctx context.Context, product *models.Product, previous int, reason string) error
	PublishAlertResolved(ctx context.Context, alert *models.Alert) error
	PublishTransactionRecorded(ctx context.Context, tx *models.Transaction) error
}

// StockEvent is the JSON payload on every subject
type StockEvent struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`

	ProductID     string `json:"productId,omitempty"`
	ProductName   string `json:"productName,omitempty"`
	CurrentStock  *int   `json:"currentStock,omitempty"`
	PreviousStock *int   `json:"previousStock,omitempty"`
	MinStockLevel *int   `json:"minStockLevel,omitempty"`
	Reason        string `json:"reason,omitempty"`

	AlertID    string               `json:"alertId,omitempty"`
	AlertType  models.AlertType     `json:"alertType,omitempty"`
	Priority   models.AlertPriority `json:"priority,omitempty"`
	ResolvedBy string               `json:"resolvedBy,omitempty"`
	Message    string               `json:"message,omitempty"`

	TransactionID   string                 `json:"transactionId,omitempty"`
	TransactionType models.TransactionType `json:"transactionType,omitempty"`
	Quantity        *int                   `json:"quantity,omitempty"`
	TotalAmount     *decimal.Decimal       `json:"totalAmount,omitempty"`
}

func newEvent(subject string, at time.Time) StockEvent {
	return StockEvent{EventID: uuid.NewString(), EventType: subject, Timestamp: at.UTC()}
}

func intPtr(v int) *int {
	return &v
}

// NoopPublisher is used when NATS is not configured
type NoopPublisher struct{}

func (NoopPublisher) PublishLowStock(context.Context, *models.Product, *models.Alert) error   { return nil }
func (NoopPublisher) PublishOutOfStock(context.Context, *models.Product, *models.Alert) error { return nil }
func (NoopPublisher) PublishStockAdjusted(context.Context, *models.Product, int, string) error {
	return nil
}
func (NoopPublisher) PublishAlertResolved(context.Context, *models.Alert) error { return nil }
func (NoopPublisher) PublishTransactionRecorded(context.Context, *models.Transaction) error {
	return nil
}

// streamPublisher is the part of jetstream.JetStream the publisher uses
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// StockEventPublisher handles publishing stock events to NATS
type StockEventPublisher struct {
	nc     *nats.Conn
	js     streamPublisher
	clock  clock.Clock
	logger *logrus.Entry
}

var _ Publisher = (*StockEventPublisher)(nil)

// NewStockEventPublisher connects to NATS and ensures the stock stream exists
func NewStockEventPublisher(natsURL string, clk clock.Clock, logger *logrus.Logger) (*StockEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}
	if clk == nil {
		clk = clock.System{}
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("component", "stock-events")

	nc, err := nats.Connect(natsURL,
		nats.Name("stock-service-publisher"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			entry.WithField("url", nc.ConnectedUrl()).Info("Reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			entry.WithError(err).Warn("Disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"stock.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		entry.WithError(err).Warn("Failed to ensure stock stream exists")
	}

	return &StockEventPublisher{nc: nc, js: js, clock: clk, logger: entry}, nil
}

func (p *StockEventPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

func (p *StockEventPublisher) publish(ctx context.Context, event StockEvent, fields logrus.Fields) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.EventType, err)
	}

	if _, err := p.js.Publish(ctx, event.EventType, data); err != nil {
		p.logger.WithFields(fields).WithError(err).Errorf("Failed to publish %s event", event.EventType)
		return err
	}

	p.logger.WithFields(fields).Infof("Published %s event", event.EventType)
	return nil
}

// PublishLowStock publishes a stock.low event
func (p *StockEventPublisher) PublishLowStock(ctx context.Context, product *models.Product, alert *models.Alert) error {
	event := newEvent(SubjectLowStock, p.clock.Now())
	event.ProductID = product.ID
	event.ProductName = product.Name
	event.CurrentStock = intPtr(product.Quantity)
	event.MinStockLevel = intPtr(product.MinStockLevel)
	event.AlertID = alert.ID
	event.AlertType = alert.Type
	event.Priority = alert.Priority
	event.Message = alert.Message

	return p.publish(ctx, event, logrus.Fields{
		"productId":    product.ID,
		"currentStock": product.Quantity,
		"threshold":    product.MinStockLevel,
	})
}

// PublishOutOfStock publishes a stock.out event
func (p *StockEventPublisher) PublishOutOfStock(ctx context.Context, product *models.Product, alert *models.Alert) error {
	event := newEvent(SubjectOutOfStock, p.clock.Now())
	event.ProductID = product.ID
	event.ProductName = product.Name
	event.CurrentStock = intPtr(0)
	event.AlertID = alert.ID
	event.AlertType = alert.Type
	event.Priority = alert.Priority
	event.Message = alert.Message

	return p.publish(ctx, event, logrus.Fields{"productId": product.ID})
}

// PublishStockAdjusted publishes a stock.adjusted event
func (p *StockEventPublisher) PublishStockAdjusted(ctx context.Context, product *models.Product, previous int, reason string) error {
	event := newEvent(SubjectStockAdjusted, p.clock.Now())
	event.ProductID = product.ID
	event.ProductName = product.Name
	event.CurrentStock = intPtr(product.Quantity)
	event.PreviousStock = intPtr(previous)
	event.Reason = reason

	return p.publish(ctx, event, logrus.Fields{
		"productId":     product.ID,
		"previousStock": previous,
		"currentStock":  product.Quantity,
		"reason":        reason,
	})
}

// PublishAlertResolved publishes a stock.alert.resolved event
func (p *StockEventPublisher) PublishAlertResolved(ctx context.Context, alert *models.Alert) error {
	event := newEvent(SubjectAlertResolved, p.clock.Now())
	event.ProductID = alert.ProductID
	event.AlertID = alert.ID
	event.AlertType = alert.Type
	event.Priority = alert.Priority
	if alert.ResolvedBy != nil {
		event.ResolvedBy = *alert.ResolvedBy
	}

	return p.publish(ctx, event, logrus.Fields{
		"alertId":    alert.ID,
		"productId":  alert.ProductID,
		"resolvedBy": event.ResolvedBy,
	})
}

// PublishTransactionRecorded publishes a stock.transaction.recorded event
func (p *StockEventPublisher) PublishTransactionRecorded(ctx context.Context, tx *models.Transaction) error {
	event := newEvent(SubjectTransactionRecorded, p.clock.Now())
	event.ProductID = tx.ProductID
	event.TransactionID = tx.ID
	event.TransactionType = tx.Type
	event.Quantity = intPtr(tx.Quantity)
	total := tx.TotalAmount
	event.TotalAmount = &total

	return p.publish(ctx, event, logrus.Fields{
		"transactionId": tx.ID,
		"type":          tx.Type,
		"productId":     tx.ProductID,
	})
}
