package handlers

import (
	"github.com/gin-gonic/gin"

	"stock-service/internal/app"
	"stock-service/internal/config"
	"stock-service/internal/middleware"
)

// AuthFor picks the authentication middleware for the configured mode
func AuthFor(cfg *config.Config) gin.HandlerFunc {
	if cfg.AuthMode == config.AuthModeDevelopment {
		return middleware.DevelopmentAuthMiddleware()
	}
	return middleware.AuthMiddleware(cfg.JWTSecret)
}

// NewRouter builds the gin engine with every route of the service
func NewRouter(a *app.App, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(a.Logger))
	router.Use(a.Metrics.Middleware())
	if len(a.Config.CORSAllowedOrigins) > 0 {
		router.Use(middleware.CORS(a.Config.CORSAllowedOrigins))
	}

	// Health check endpoints (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadinessCheck(a))
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	inventoryHandler := NewInventoryHandler(a.Inventory)
	transactionHandler := NewTransactionHandler(a.Recorder)
	alertHandler := NewAlertHandler(a.AlertEngine)
	supplierHandler := NewSupplierHandler(a.SupplierBook)
	importHandler := NewImportHandler(a.Inventory, a.Recorder)
	reportHandler := NewReportHandler(a.Reports)

	api := router.Group("/api/v1")
	api.Use(middleware.NewRateLimiter(a.Config.RateLimitRPS, a.Config.RateLimitBurst).Middleware())
	api.Use(auth)

	products := api.Group("/products")
	{
		products.POST("", inventoryHandler.CreateProduct)
		products.GET("", inventoryHandler.ListProducts)
		products.GET("/low-stock", inventoryHandler.GetLowStockProducts)
		products.GET("/value", inventoryHandler.GetInventoryValue)
		products.GET("/:id", inventoryHandler.GetProduct)
		products.PUT("/:id", inventoryHandler.UpdateProduct)
		products.DELETE("/:id", inventoryHandler.DeleteProduct)

		products.POST("/:id/stock/add", inventoryHandler.AddStock)
		products.POST("/:id/stock/reduce", inventoryHandler.ReduceStock)
		products.PUT("/:id/stock", inventoryHandler.SetStock)

		// Import
		products.GET("/import/template", importHandler.GetProductImportTemplate)
		products.POST("/import", importHandler.ImportProducts)
	}

	transactions := api.Group("/transactions")
	{
		transactions.POST("/sale", transactionHandler.RecordSale)
		transactions.POST("/purchase", transactionHandler.RecordPurchase)
		transactions.POST("/adjustment", transactionHandler.RecordAdjustment)
		transactions.POST("/return", transactionHandler.RecordReturn)
		transactions.GET("", transactionHandler.ListTransactions)
		transactions.GET("/totals", transactionHandler.GetTotals)
		transactions.GET("/export", importHandler.ExportTransactions)
		transactions.GET("/:id", transactionHandler.GetTransaction)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("", alertHandler.ListAlerts)
		alerts.GET("/urgent", alertHandler.GetUrgentAlerts)
		alerts.GET("/summary", alertHandler.GetAlertSummary)
		alerts.GET("/:id", alertHandler.GetAlert)
		alerts.POST("/:id/resolve", alertHandler.ResolveAlert)
		alerts.DELETE("/:id", alertHandler.DeleteAlert)
	}

	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", supplierHandler.CreateSupplier)
		suppliers.GET("", supplierHandler.ListSuppliers)
		suppliers.GET("/:id", supplierHandler.GetSupplier)
		suppliers.PUT("/:id", supplierHandler.UpdateSupplier)
		suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
		suppliers.POST("/:id/rating", supplierHandler.RateSupplier)
		suppliers.POST("/:id/activate", supplierHandler.ActivateSupplier)
		suppliers.POST("/:id/deactivate", supplierHandler.DeactivateSupplier)
	}

	api.GET("/reports/:kind", reportHandler.GetReport)

	return router
}
