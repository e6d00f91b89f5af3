package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/config"
	"github.com/ramuneri/tillpoint-api/internal/infrastructure/database"
	"github.com/ramuneri/tillpoint-api/internal/infrastructure/gateway"
	"github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/handler"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/routes"
	"github.com/ramuneri/tillpoint-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	zapLog, err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Env,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		zapLog.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zapLog.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	tipRepo := repository.NewOrderTipRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	giftcardRepo := repository.NewGiftcardRepository(db)
	productRepo := repository.NewProductRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	taxRepo := repository.NewTaxRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize card gateway
	cardGateway, err := gateway.NewStripeGateway(gateway.StripeConfig{
		APIKey: cfg.Gateway.StripeAPIKey,
	}, zapLog)
	if err != nil {
		zapLog.Fatal("Failed to initialize card gateway", zap.Error(err))
	}

	// Initialize services
	taxService := service.NewTaxService(taxRepo)
	calculator := service.NewTotalsCalculator(productRepo, serviceRepo, taxService, nil)
	validator := service.NewPaymentValidator(cfg.Gateway.Provider)
	settlementService := service.NewSettlementService(
		txManager, orderRepo, paymentRepo, tipRepo, giftcardRepo,
		calculator, validator, cardGateway, zapLog,
	)
	splitService := service.NewSplitService(orderRepo, calculator, settlementService, zapLog)
	refundService := service.NewRefundService(txManager, orderRepo, refundRepo, giftcardRepo, calculator, zapLog)
	orderService := service.NewOrderService(txManager, orderRepo, orderItemRepo, productRepo, serviceRepo, customerRepo, calculator)
	catalogService := service.NewCatalogService(productRepo, serviceRepo, taxRepo)
	giftcardService := service.NewGiftcardService(giftcardRepo)
	customerService := service.NewCustomerService(customerRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Order:    handler.NewOrderHandler(orderService, settlementService, splitService, refundService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Giftcard: handler.NewGiftcardHandler(giftcardService),
		Tax:      handler.NewTaxHandler(taxService),
		Customer: handler.NewCustomerHandler(customerService),
	}

	// Setup router
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Log:             zapLog,
		IdempotencyRepo: idempotencyRepo,
	})

	// Start server
	addr := ":" + cfg.App.Port
	zapLog.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.App.Env))
	if err := router.Run(addr); err != nil {
		zapLog.Fatal("Server failed", zap.Error(err))
	}
}
