package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"dms/internal/auth"
	"dms/internal/config"
	"dms/internal/database"
	"dms/internal/database/migration"
	handlers "dms/internal/http/handler"
	"dms/internal/http/middleware"
	"dms/internal/logging"
	"dms/internal/otel"
	"dms/internal/repository/postgres"
	"dms/internal/service"
	"dms/internal/storage"
)

// @title Document Management API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := logging.LoadLocation(cfg.Timezone)

	logger, err := logging.New(cfg.LogLevel, loc)
	if err != nil {
		logger = zap.Must(zap.NewProduction())
		logger.Warn("invalid LOG_LEVEL, using info", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := migration.EnsureAdmin(ctx, db, logger, cfg.Auth.AdminEmail); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, logger)
	if err != nil {
		logger.Fatal("failed to initialize object storage", zap.Error(err))
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.PreviousSecrets...)
	if err != nil {
		logger.Fatal("failed to initialize token manager", zap.Error(err))
	}

	var revoker auth.Revoker = auth.NoopRevoker{}
	if cfg.Redis.URL != "" {
		rr, err := auth.NewRedisRevoker(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rr.Close()
		revoker = rr
		logger.Info("session revocation enabled")
	}

	userRepo := postgres.NewUserPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)

	accountSvc := service.NewAccountService(userRepo, tokens, revoker, cfg.Auth.BcryptCost, logger)
	userSvc := service.NewUserService(userRepo, docRepo, objStore, cfg.Auth.BcryptCost, logger)
	docSvc := service.NewDocumentService(objStore, docRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      "dms",
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:        db,
		Accounts:  accountSvc,
		Users:     userSvc,
		Documents: docSvc,
		Tokens:    tokens,
		Revoker:   revoker,
		Logger:    logger,
		Gatherer:  prometheus.DefaultGatherer,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr), zap.String("app_host", cfg.AppHost))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
