// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"atlastours/internal/auth"
	"atlastours/internal/bookings"
	"atlastours/internal/catalog"
	"atlastours/internal/invoices"
	"atlastours/internal/loyalty"
	"atlastours/internal/notifications"
	"atlastours/internal/numbering"
	"atlastours/internal/payments"
	"atlastours/internal/shared/config"
	"atlastours/internal/shared/database"
	"atlastours/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher *notifications.Publisher

	// Services kept for cross-package injection and background jobs.
	bookingService bookings.Service
	paymentService payments.Service
	bookingRepo    bookings.Repository
	paymentRepo    payments.Repository
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher *notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)

		// Catalog before bookings: the booking service snapshots catalog rows.
		catalogService := r.setupCatalogRoutes(api)
		loyaltyService := r.setupLoyaltyRoutes(api)

		r.setupBookingRoutes(api, catalogService, loyaltyService)
		r.setupPaymentRoutes(api)

		// Bookings and payments call into each other; the payment side is
		// injected after both exist.
		r.bookingService.SetPaymentService(r.paymentService)

		r.setupInvoiceRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "atlastours-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "atlastours-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)

	auth.SetupAuthRoutes(rg, authController, r.config)
}

// setupCatalogRoutes configures tour service catalog routes
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) catalog.Service {
	catalogRepo := catalog.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedis())
	catalogService := catalog.NewService(catalogRepo, cacheService, r.config.Redis.CacheTTL)
	catalogController := catalog.NewController(catalogService)

	catalog.SetupCatalogRoutes(rg, catalogController, r.config)
	return catalogService
}

// setupLoyaltyRoutes configures loyalty point routes
func (r *Router) setupLoyaltyRoutes(rg *gin.RouterGroup) loyalty.Service {
	loyaltyRepo := loyalty.NewRepository(r.db.GetPostgreSQL())
	loyaltyService := loyalty.NewService(loyaltyRepo)
	loyaltyController := loyalty.NewController(loyaltyService)

	loyalty.SetupLoyaltyRoutes(rg, loyaltyController, r.config)
	return loyaltyService
}

// setupBookingRoutes configures booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup, catalogService catalog.Service, loyaltyService loyalty.Service) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())

	// Number sequencing lives in Redis; the confirmed-booking count seeds a
	// fresh counter so numbering survives a Redis flush.
	authority := numbering.NewRedisAuthority(r.db.GetRedis(), r.config.Numbering, bookingRepo.CountConfirmed)

	// A typed nil publisher must stay nil through the interface, so the service
	// nil-checks keep working when Kafka is unavailable.
	var notifier bookings.NotificationPublisher
	if r.publisher != nil {
		notifier = r.publisher
	}

	bookingService := bookings.NewService(bookingRepo, authority, loyaltyService, notifier, catalogService)
	bookingController := bookings.NewController(bookingService)

	r.bookingRepo = bookingRepo
	r.bookingService = bookingService

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}

// setupPaymentRoutes configures payment lifecycle routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())

	var notifier payments.NotificationPublisher
	if r.publisher != nil {
		notifier = r.publisher
	}

	paymentService := payments.NewService(paymentRepo, r.bookingService, notifier)
	paymentController := payments.NewController(paymentService)

	r.paymentRepo = paymentRepo
	r.paymentService = paymentService

	payments.SetupPaymentRoutes(rg, paymentController, r.config)
}

// setupInvoiceRoutes configures PDF invoice routes
func (r *Router) setupInvoiceRoutes(rg *gin.RouterGroup) {
	invoiceService := invoices.NewService(r.bookingService, r.paymentService)
	invoiceController := invoices.NewController(invoiceService)

	invoices.SetupInvoiceRoutes(rg, invoiceController)
}

// BookingRepository exposes the booking repository for background jobs.
func (r *Router) BookingRepository() bookings.Repository {
	return r.bookingRepo
}

// PaymentRepository exposes the payment repository for background jobs.
func (r *Router) PaymentRepository() payments.Repository {
	return r.paymentRepo
}

// PaymentService exposes the payment service for background jobs.
func (r *Router) PaymentService() payments.Service {
	return r.paymentService
}
