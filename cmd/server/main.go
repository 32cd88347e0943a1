package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingapp "github.com/freightpro/backend/internal/application/booking"
	dispatchapp "github.com/freightpro/backend/internal/application/dispatch"
	eventapp "github.com/freightpro/backend/internal/application/event"
	pricingapp "github.com/freightpro/backend/internal/application/pricing"
	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared/valueobject"
	"github.com/freightpro/backend/internal/infrastructure/auth"
	"github.com/freightpro/backend/internal/infrastructure/cache"
	"github.com/freightpro/backend/internal/infrastructure/config"
	"github.com/freightpro/backend/internal/infrastructure/event"
	"github.com/freightpro/backend/internal/infrastructure/logger"
	"github.com/freightpro/backend/internal/infrastructure/persistence"
	"github.com/freightpro/backend/internal/interfaces/http/handler"
	"github.com/freightpro/backend/internal/interfaces/http/middleware"
	"github.com/freightpro/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FreightPro Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	manifestRepo := persistence.NewGormManifestRepository(db.DB)
	articleRepo := persistence.NewGormArticleRepository(db.DB)
	customerRateRepo := persistence.NewGormCustomerRateRepository(db.DB)
	rateContractRepo := persistence.NewGormRateContractRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types, including
	// upgraders for payload schemas that have changed shape
	eventSerializer := event.NewVersionedSerializer(log)
	if err := event.RegisterAllEvents(eventSerializer); err != nil {
		log.Fatal("Failed to register event types", zap.Error(err))
	}

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// The delivered event closes out the consignment towards invoicing, so
	// booking saves on that path write events through the outbox
	bookingRepo.SetOutboxEventSaver(outboxPublisher)

	// Charged-weight rounding policy shared by quoting and booking
	roundingPolicy, err := valueobject.NewWeightRoundingPolicy(cfg.Freight.WeightRoundingIncrement)
	if err != nil {
		log.Fatal("Invalid weight rounding increment", zap.Error(err))
	}
	rateResolver := pricing.NewRateResolver(articleRepo, customerRateRepo, rateContractRepo, roundingPolicy)

	// Initialize application services
	bookingService := bookingapp.NewBookingService(bookingRepo, rateResolver)
	manifestService := dispatchapp.NewManifestService(manifestRepo, bookingRepo)
	articleService := pricingapp.NewArticleService(articleRepo, customerRateRepo, rateResolver)
	articleImportService := pricingapp.NewArticleImportService(articleRepo)
	rateContractService := pricingapp.NewRateContractService(rateContractRepo, articleRepo)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// JWT verification (token issuance is handled by the identity service)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Redis-backed token blacklist, optional: without it revoked tokens
	// stay valid until expiry
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Token blacklist unavailable, continuing without revocation checks", zap.Error(err))
		} else {
			tokenBlacklist = blacklist
			log.Info("Token blacklist connected", zap.String("host", cfg.Redis.Host))
		}
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store for event handlers: Redis when available, with
	// in-memory fallback so a cache outage never blocks event processing
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Register event handlers for cross-context integration
	// Booking cancelled -> pull its lines off open manifests
	bookingCancelledHandler := dispatchapp.NewBookingCancelledHandler(manifestRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(bookingCancelledHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("booking_cancelled_events", bookingCancelledHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	// The outbox processor reads events from the outbox_events table and publishes them to the event bus
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", outboxProcessorConfig.BatchSize),
		zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
	)

	// Inject event bus into services that publish events
	bookingService.SetEventPublisher(eventBus)
	manifestService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	manifestHandler := handler.NewManifestHandler(manifestService)
	articleHandler := handler.NewArticleHandler(articleService)
	articleImportHandler := handler.NewArticleImportHandler(articleImportService)
	rateContractHandler := handler.NewRateContractHandler(rateContractService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Throttle per-client request rate (optional)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Per-client rate limiting
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Booking domain (bookings, lines, custody transitions)
	bookingRoutes := router.NewDomainGroup("booking", "/bookings")
	bookingRoutes.POST("", bookingHandler.Create)
	bookingRoutes.GET("", bookingHandler.List)
	bookingRoutes.GET("/:id", bookingHandler.GetByID)
	bookingRoutes.GET("/number/:tracking_number", bookingHandler.GetByTrackingNumber)
	bookingRoutes.POST("/:id/lines", bookingHandler.AddLine)
	bookingRoutes.POST("/:id/lines/:line_id/reprice", bookingHandler.RepriceLine)
	bookingRoutes.DELETE("/:id/lines/:line_id", bookingHandler.RemoveLine)
	bookingRoutes.POST("/:id/lines/:line_id/cancel", bookingHandler.CancelLine)
	bookingRoutes.POST("/:id/lines/:line_id/load", bookingHandler.LoadLine)
	bookingRoutes.POST("/:id/lines/:line_id/unload", bookingHandler.UnloadLine)
	bookingRoutes.POST("/:id/lines/:line_id/out-for-delivery", bookingHandler.MarkLineOutForDelivery)
	bookingRoutes.POST("/:id/lines/:line_id/deliver", bookingHandler.DeliverLine)
	bookingRoutes.POST("/:id/lines/:line_id/damaged", bookingHandler.MarkLineDamaged)
	bookingRoutes.POST("/:id/lines/:line_id/missing", bookingHandler.MarkLineMissing)
	bookingRoutes.POST("/:id/in-transit", bookingHandler.MarkInTransit)
	bookingRoutes.POST("/:id/deliver", bookingHandler.Deliver)
	bookingRoutes.POST("/:id/cancel", bookingHandler.Cancel)

	// Public-facing tracking view (authenticated, but rate- and party-free)
	trackingRoutes := router.NewDomainGroup("tracking", "/tracking")
	trackingRoutes.GET("/:tracking_number", bookingHandler.Track)

	// Dispatch domain (loading manifests, bulk custody phases)
	manifestRoutes := router.NewDomainGroup("dispatch", "/manifests")
	manifestRoutes.POST("", manifestHandler.Create)
	manifestRoutes.GET("", manifestHandler.List)
	manifestRoutes.GET("/:id", manifestHandler.GetByID)
	manifestRoutes.POST("/:id/lines", manifestHandler.AddLine)
	manifestRoutes.DELETE("/:id/lines/:line_id", manifestHandler.RemoveLine)
	manifestRoutes.POST("/:id/dispatch", manifestHandler.Dispatch)
	manifestRoutes.POST("/:id/complete", manifestHandler.Complete)
	manifestRoutes.POST("/:id/cancel", manifestHandler.Cancel)

	// Pricing domain (articles, customer rates, contracts, quotes)
	pricingRoutes := router.NewDomainGroup("pricing", "")
	pricingRoutes.POST("/articles", articleHandler.Create)
	pricingRoutes.GET("/articles", articleHandler.List)
	pricingRoutes.GET("/articles/:id", articleHandler.GetByID)
	pricingRoutes.PUT("/articles/:id/rate", articleHandler.UpdateRate)
	pricingRoutes.POST("/articles/:id/deactivate", articleHandler.Deactivate)
	pricingRoutes.POST("/articles/import", articleImportHandler.Import)
	pricingRoutes.PUT("/customer-rates", articleHandler.SetCustomerRate)
	pricingRoutes.DELETE("/customer-rates/:id", articleHandler.RemoveCustomerRate)
	pricingRoutes.POST("/quotes", articleHandler.Quote)
	pricingRoutes.POST("/rate-contracts", rateContractHandler.Create)
	pricingRoutes.GET("/rate-contracts", rateContractHandler.List)
	pricingRoutes.GET("/rate-contracts/:id", rateContractHandler.GetByID)
	pricingRoutes.POST("/rate-contracts/:id/items", rateContractHandler.AddItem)
	pricingRoutes.POST("/rate-contracts/:id/submit", rateContractHandler.SubmitForApproval)
	pricingRoutes.POST("/rate-contracts/:id/approve", rateContractHandler.Approve)
	pricingRoutes.POST("/rate-contracts/:id/reject", rateContractHandler.Reject)
	pricingRoutes.POST("/rate-contracts/:id/terminate", rateContractHandler.Terminate)

	// System routes (health, info, outbox administration)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)

	// Register all domain groups
	r.Register(bookingRoutes).
		Register(trackingRoutes).
		Register(manifestRoutes).
		Register(pricingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
