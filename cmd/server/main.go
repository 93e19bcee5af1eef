package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daterbo-console/internal/adapters/http/handlers"
	"daterbo-console/internal/adapters/http/middleware"
	"daterbo-console/internal/adapters/http/routes"
	"daterbo-console/internal/adapters/persistence/models"
	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/config"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/logger"
	"daterbo-console/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "daterbo-console/docs" // Swagger docs
)

// @title Daterbo Console API
// @version 1.0
// @description Back-office console for borrower records (data peminjam)

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the upstream token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "daterbo-console")
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	m := metrics.New()

	// Session store
	store, checks, cleanup, err := openTokenStore(cfg, m, log)
	if err != nil {
		log.Fatal("failed to open session store", zap.String("driver", cfg.Session.Driver), zap.Error(err))
	}
	defer cleanup()

	// Services
	api := upstream.NewClient(cfg.Upstream, m, log.Named("upstream"))
	sessions := services.NewSessionManager(store, cfg.Session.TTL, m, log.Named("session"))
	loader := services.NewWorkspaceLoader(api, services.NewRequestGate(), log)
	records := services.NewRecordService(api, loader, log.Named("records"))
	svc := routes.Services{
		Sessions:   sessions,
		Auth:       services.NewAuthService(api, log.Named("auth")),
		Records:    records,
		References: services.NewReferenceService(api, log.Named("references")),
		Exports:    services.NewExportService(api, records, log.Named("exports")),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Daterbo Console v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    32 * 1024 * 1024,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, cfg, svc, m, checks)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	// Start server
	log.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("mode", cfg.AppMode),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("session_driver", cfg.Session.Driver),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// openTokenStore builds the session store selected by SESSION_DRIVER along
// with its health probes and a cleanup func.
func openTokenStore(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (repositories.TokenStore, map[string]handlers.HealthCheckFunc, func(), error) {
	checks := map[string]handlers.HealthCheckFunc{}

	switch cfg.Session.Driver {
	case config.SessionRedis:
		client, err := config.ConnectRedis(context.Background(), cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		checks["session_store"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		return repositories.NewRedisTokenStore(client, "daterbo:"), checks, func() { client.Close() }, nil

	case config.SessionMySQL:
		db, err := config.ConnectDatabase(cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}

		// Auto migrate (creates the token table if not exist)
		if err := models.AutoMigrate(db); err != nil {
			config.CloseDatabase(db)
			return nil, nil, nil, err
		}
		log.Info("database migration completed")

		store := repositories.NewTokenRepository(db, cfg.Session.TTL)

		// Expired tokens are purged on a schedule
		janitor, err := services.NewTokenJanitor(store, cfg.Session.PurgeSchedule, m, log.Named("janitor"))
		if err != nil {
			config.CloseDatabase(db)
			return nil, nil, nil, err
		}
		janitor.Start()

		checks["session_store"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		cleanup := func() {
			janitor.Stop()
			if err := config.CloseDatabase(db); err != nil {
				log.Error("failed to close database", zap.Error(err))
			}
		}
		return store, checks, cleanup, nil

	case config.SessionPostgres:
		db, err := config.ConnectPostgres(cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repositories.EnsurePostgresSchema(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		store := repositories.NewPostgresTokenStore(db, cfg.Session.TTL)
		janitor, err := services.NewTokenJanitor(store, cfg.Session.PurgeSchedule, m, log.Named("janitor"))
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		janitor.Start()

		checks["session_store"] = func(ctx context.Context) error {
			return db.PingContext(ctx)
		}
		cleanup := func() {
			janitor.Stop()
			if err := db.Close(); err != nil {
				log.Error("failed to close postgres", zap.Error(err))
			}
		}
		return store, checks, cleanup, nil

	default:
		log.Warn("using in-memory session store, sessions are lost on restart")
		return repositories.NewMemoryTokenStore(), checks, func() {}, nil
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
