package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	expenseapp "github.com/fintrack/backend/internal/application/expense"
	exportapp "github.com/fintrack/backend/internal/application/export"
	identityapp "github.com/fintrack/backend/internal/application/identity"
	reportapp "github.com/fintrack/backend/internal/application/report"
	"github.com/fintrack/backend/internal/infrastructure/auth"
	"github.com/fintrack/backend/internal/infrastructure/config"
	"github.com/fintrack/backend/internal/infrastructure/logger"
	"github.com/fintrack/backend/internal/infrastructure/persistence"
	"github.com/fintrack/backend/internal/infrastructure/storage"
	"github.com/fintrack/backend/internal/interfaces/http/handler"
	"github.com/fintrack/backend/internal/interfaces/http/middleware"
	"github.com/fintrack/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration; a missing or malformed variable aborts startup
	// with a message naming it.
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewFromAppConfig(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	runtime.GOMAXPROCS(cfg.Server.Workers)

	log.Info("Starting FinTrack Backend",
		zap.String("env", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("workers", cfg.Server.Workers),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Token revocation store: Redis when configured, in-memory otherwise
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Token revocation store: redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Token revocation store: in-memory")
	}

	// Invoice image storage backend
	var invoices storage.InvoiceStorage
	switch cfg.Invoice.Backend {
	case "s3":
		invoices, err = storage.NewS3InvoiceStorage(cfg.Invoice,
			os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"),
			storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize S3 invoice storage", zap.Error(err))
		}
		log.Info("Invoice storage: s3", zap.String("bucket", cfg.Invoice.S3Bucket))
	default:
		invoices, err = storage.NewLocalInvoiceStorage(cfg.Invoice.UploadDir)
		if err != nil {
			log.Fatal("Failed to initialize local invoice storage", zap.Error(err))
		}
		log.Info("Invoice storage: local", zap.String("dir", cfg.Invoice.UploadDir))
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)

	// Initialize application services
	hasher := auth.NewPasswordHasher(cfg.Hashing)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, hasher, jwtService, blacklist)
	categoryService := expenseapp.NewCategoryService(categoryRepo)
	expenseService := expenseapp.NewExpenseService(expenseRepo, categoryRepo, invoices, log)
	summaryService := reportapp.NewSummaryService(expenseRepo)
	csvExporter := exportapp.NewCSVExporter(expenseRepo, categoryRepo)

	// Set Gin mode based on environment
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, security headers, CORS, body size limit, JWT auth.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFromApp(cfg.CORS)))
	engine.Use(middleware.BodyLimit(cfg.Invoice.MaxFileSize))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuth(jwtConfig))

	// Register API routes
	systemHandler := handler.NewSystemHandler(db, invoices)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(handler.NewAuthHandler(authService)).
		Register(handler.NewCategoryHandler(categoryService)).
		Register(handler.NewExpenseHandler(expenseService)).
		Register(handler.NewReportHandler(summaryService))
	r.Setup()

	// Container orchestrators probe the unprefixed paths
	systemHandler.RegisterRoutes(engine.Group(""))

	// CSV export is also consumed service-to-service; gate it with the
	// static API token when one is configured.
	exportGroup := engine.Group("/api/v1", middleware.APIToken(cfg.Tokens.APIToken))
	handler.NewExportHandler(csvExporter).RegisterRoutes(exportGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        engine,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
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
