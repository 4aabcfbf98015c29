// Package app wires storage, side channels and services into one container
// shared by the HTTP server and the stockctl CLI.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stock-service/internal/clock"
	"stock-service/internal/config"
	"stock-service/internal/events"
	"stock-service/internal/idgen"
	"stock-service/internal/metrics"
	"stock-service/internal/models"
	"stock-service/internal/repository"
	"stock-service/internal/services"
)

type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	DB      *gorm.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics

	Products     *repository.ProductRepository
	Alerts       *repository.AlertRepository
	Transactions *repository.TransactionRepository
	Suppliers    *repository.SupplierRepository
	Cache        *repository.ProductCache

	Inventory    *services.InventoryService
	AlertEngine  *services.AlertService
	Recorder     *services.TransactionService
	SupplierBook *services.SupplierService
	Reports      *services.ReportService

	publisher *events.StockEventPublisher
}

// Migrate creates or updates the four entity tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Alert{},
		&models.Transaction{},
		&models.Supplier{},
	)
}

// New opens the database and optional side channels and builds the services.
// Redis and NATS are optional: an empty URL or a failed connection leaves the
// service running without them.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: db, Metrics: metrics.New()}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, product cache disabled")
		} else {
			client := redis.NewClient(opts)
			if err := client.Ping(ctx).Err(); err != nil {
				logger.WithError(err).Warn("Redis unavailable, product cache disabled")
				_ = client.Close()
			} else {
				a.Redis = client
				logger.Info("Connected to Redis for product caching")
			}
		}
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		p, err := events.NewStockEventPublisher(cfg.NATSURL, clock.System{}, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize NATS event publisher, continuing without events")
		} else {
			a.publisher = p
			publisher = p
			logger.Info("Connected to NATS JetStream for event publishing")
		}
	}

	if err := a.build(ctx, db, clock.System{}, publisher); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB builds the container over an already open database. Tests use it
// with in-memory SQLite and a manual clock.
func NewWithDB(ctx context.Context, db *gorm.DB, clk clock.Clock, logger *logrus.Logger) (*App, error) {
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	a := &App{Config: &config.Config{}, Logger: logger, DB: db, Metrics: metrics.New()}
	if err := a.build(ctx, db, clk, events.NoopPublisher{}); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, db *gorm.DB, clk clock.Clock, publisher events.Publisher) error {
	a.Cache = repository.NewProductCache(a.Redis, a.Config.ProductCacheTTL)
	a.Products = repository.NewProductRepository(db, a.Cache)
	a.Alerts = repository.NewAlertRepository(db)
	a.Transactions = repository.NewTransactionRepository(db)
	a.Suppliers = repository.NewSupplierRepository(db)

	ids := idgen.New(clk)
	if err := a.seedIDs(ctx, ids); err != nil {
		return err
	}

	a.AlertEngine = services.NewAlertService(a.Alerts, ids, clk, publisher, a.Metrics, a.Logger)
	a.Inventory = services.NewInventoryService(a.Products, a.AlertEngine, ids, clk, publisher, a.Metrics, a.Logger)
	a.SupplierBook = services.NewSupplierService(a.Suppliers, ids, clk, a.Logger)
	a.Recorder = services.NewTransactionService(a.Transactions, a.Inventory, a.SupplierBook, ids, clk, publisher, a.Metrics, a.Logger)
	a.Reports = services.NewReportService(a.Inventory, a.Recorder, a.SupplierBook, a.AlertEngine, clk, a.Logger)
	return nil
}

// seedIDs continues each identifier sequence after what is already stored
func (a *App) seedIDs(ctx context.Context, ids *idgen.Generator) error {
	sources := []struct {
		kind idgen.Kind
		list func(context.Context) ([]string, error)
	}{
		{idgen.KindProduct, a.Products.IDs},
		{idgen.KindAlert, a.Alerts.IDs},
		{idgen.KindTransaction, a.Transactions.IDs},
		{idgen.KindSupplier, a.Suppliers.IDs},
	}
	for _, src := range sources {
		existing, err := src.list(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed %s identifiers: %w", src.kind, err)
		}
		ids.Seed(src.kind, existing)
	}
	return nil
}

// Ping checks the database and, when configured, redis
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Redis != nil {
		if err := a.Cache.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
