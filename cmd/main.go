package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront-service/internal/handler"
	"storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/internal/otp"
	"storefront-service/internal/tenant"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/metrics"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("storefront")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting storefront service...", cfg.LogConfig()...)

	// Open the global directory database and migrate its schema
	ctx := context.Background()
	globalDB, err := database.Open(ctx, cfg.GlobalDB.GetDSN(), database.PoolConfig{
		MaxIdleConns:    cfg.GlobalDB.MaxIdleConns,
		MaxOpenConns:    cfg.GlobalDB.MaxOpenConns,
		ConnMaxLifetime: cfg.GlobalDB.ConnMaxLifetime,
		ConnectTimeout:  cfg.GlobalDB.ConnectTimeout,
		LogLevel:        cfg.GlobalDB.LogLevel,
	})
	if err != nil {
		log.Fatal("Failed to connect to global database", zap.Error(err))
	}
	if err := database.Migrate(globalDB, &model.Owner{}, &model.Store{}, &model.OTP{}); err != nil {
		log.Fatal("Failed to migrate global database", zap.Error(err))
	}
	log.Info("Global database connection established")

	// Store directory with its lookup cache
	directory := tenant.NewDirectory(tenant.DirectoryOptions{
		Store:     tenant.NewGormDirectoryStore(globalDB),
		CacheSize: cfg.Registry.DirectoryCacheSize,
		CacheTTL:  cfg.Registry.DirectoryCacheTTL,
		Logger:    log,
	})

	// Tenant provisioning against the global database and the cluster
	provisioner := tenant.NewProvisioner(tenant.NewGormProvisionStore(globalDB), cfg.TenantDB, log)

	// Per-tenant connection registry
	registry := tenant.NewRegistry(tenant.RegistryOptions{
		Opener:        tenant.NewPostgresOpener(cfg.TenantDB),
		MaxConns:      cfg.Registry.MaxConns,
		IdleTTL:       cfg.Registry.IdleTTL,
		SweepInterval: cfg.Registry.SweepInterval,
		Logger:        log,
	})

	// OTP service; the log sender stands in for an SMS gateway in development
	otpService := otp.NewService(
		otp.NewGormStore(globalDB),
		&otp.LogSender{Log: func(phone, code string) {
			log.Info("OTP code issued", zap.String("phone", phone), zap.String("code", code))
		}},
		otp.Config{
			TTL:         cfg.OTP.TTL,
			MaxAttempts: cfg.OTP.MaxAttempts,
			CodeLength:  cfg.OTP.CodeLength,
		},
		log,
	)

	// JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	// HTTP metrics
	httpMetrics := metrics.NewHTTPMetrics(cfg.ServiceName)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	// Public routes - no authentication required
	e.GET("/healthz", handler.HealthCheck(globalDB, registry))
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register", handler.Register(provisioner, directory))
	auth.POST("/login", handler.Login(directory, jwtUtil))
	auth.POST("/otp/request", handler.RequestOTP(otpService))
	auth.POST("/otp/verify", handler.VerifyOTP(otpService))

	// Store management - authenticated, no tenant scope needed
	store := e.Group("/store")
	store.Use(middleware.JWTAuthMiddleware(jwtUtil))
	store.POST("/setup", handler.SetupStore(provisioner, directory))
	store.GET("/profile", handler.GetStoreProfile(directory))

	// Owner API - authenticated and tenant-scoped
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))
	api.Use(middleware.TenantContextMiddleware(directory, registry))

	api.GET("/products", handler.ListProducts)
	api.POST("/products", handler.CreateProduct)
	api.GET("/products/:id", handler.GetProduct)
	api.PUT("/products/:id", handler.UpdateProduct)
	api.DELETE("/products/:id", handler.DeleteProduct)

	api.GET("/categories", handler.ListCategories)
	api.POST("/categories", handler.CreateCategory)
	api.GET("/categories/:id", handler.GetCategory)
	api.PUT("/categories/:id", handler.UpdateCategory)
	api.DELETE("/categories/:id", handler.DeleteCategory)

	api.GET("/customers", handler.ListCustomers)
	api.POST("/customers", handler.CreateCustomer)
	api.GET("/customers/:id", handler.GetCustomer)
	api.PUT("/customers/:id", handler.UpdateCustomer)

	api.GET("/orders", handler.ListOrders)
	api.POST("/orders", handler.CreateOrder)
	api.GET("/orders/:id", handler.GetOrder)
	api.PATCH("/orders/:id/status", handler.UpdateOrderStatus)

	api.GET("/offers", handler.ListOffers)
	api.POST("/offers", handler.CreateOffer)
	api.GET("/offers/validate/:code", handler.ValidateOffer)
	api.PUT("/offers/:id", handler.UpdateOffer)
	api.DELETE("/offers/:id", handler.DeleteOffer)

	api.GET("/payments", handler.ListPayments)
	api.POST("/payments", handler.CreatePayment)
	api.GET("/payments/:id", handler.GetPayment)
	api.PATCH("/payments/:id/status", handler.UpdatePaymentStatus)

	api.GET("/settings", handler.GetSettings)
	api.PUT("/settings", handler.UpdateSettings)

	// Public storefront - addressed by store code, no authentication
	shop := e.Group("/shop/:store_id")
	shop.Use(middleware.TenantContextMiddleware(directory, registry))
	shop.GET("/products", handler.ListProducts)
	shop.GET("/products/:id", handler.GetProduct)
	shop.GET("/categories", handler.ListCategories)
	shop.GET("/offers/validate/:code", handler.ValidateOffer)
	shop.GET("/settings", handler.GetSettings)
	shop.POST("/customers", handler.CreateCustomer)
	shop.POST("/orders", handler.CreateOrder)

	// Start server and shut down cleanly on SIGINT/SIGTERM
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := registry.Close(); err != nil {
		log.Error("Failed to close tenant connections", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
