package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramuneri/tillpoint-api/internal/config"
	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/handler"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order    *handler.OrderHandler
	Catalog  *handler.CatalogHandler
	Giftcard *handler.GiftcardHandler
	Tax      *handler.TaxHandler
	Customer *handler.CustomerHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Log             *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes, all scoped to a merchant
	v1 := router.Group("/api/v1")
	v1.Use(middleware.MerchantMiddleware())

	// Per-merchant rate limiter
	rateLimiter := middleware.NewMerchantRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
		BurstSize:         deps.Cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	v1.Use(rateLimiter.Middleware())

	// Replay protection for settlement, split and refund retries
	v1.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))

	registerOrderRoutes(v1, h)
	registerCatalogRoutes(v1, h)
	registerGiftcardRoutes(v1, h)
	registerTaxRoutes(v1, h)
	registerCustomerRoutes(v1, h)

	return router
}

func registerOrderRoutes(v1 *gin.RouterGroup, h *Handlers) {
	orders := v1.Group("/orders")
	{
		orders.POST("", h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.GET("/:id/totals", h.Order.GetTotals)
		orders.PUT("/:id", h.Order.Update)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.POST("/:id/close", h.Order.Close)
		orders.POST("/:id/split-close", h.Order.SplitClose)
		orders.POST("/:id/refunds", h.Order.Refund)
	}
}

func registerCatalogRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.POST("", h.Catalog.CreateProduct)
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.PUT("/:id", h.Catalog.UpdateProduct)
		products.DELETE("/:id", h.Catalog.DeleteProduct)
	}

	services := v1.Group("/services")
	{
		services.POST("", h.Catalog.CreateService)
		services.GET("", h.Catalog.ListServices)
		services.GET("/:id", h.Catalog.GetService)
		services.PUT("/:id", h.Catalog.UpdateService)
		services.DELETE("/:id", h.Catalog.DeleteService)
	}
}

func registerGiftcardRoutes(v1 *gin.RouterGroup, h *Handlers) {
	giftcards := v1.Group("/giftcards")
	{
		giftcards.POST("", h.Giftcard.Issue)
		giftcards.GET("", h.Giftcard.List)
		giftcards.GET("/code/:code", h.Giftcard.GetByCode)
		giftcards.POST("/:id/deactivate", h.Giftcard.Deactivate)
	}
}

func registerTaxRoutes(v1 *gin.RouterGroup, h *Handlers) {
	taxes := v1.Group("/tax-categories")
	{
		taxes.POST("", h.Tax.CreateCategory)
		taxes.GET("", h.Tax.ListCategories)
		taxes.GET("/:id", h.Tax.GetCategory)
		taxes.POST("/:id/rates", h.Tax.AddRate)
		taxes.GET("/:id/rates", h.Tax.ListRates)
	}
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
	}
}
