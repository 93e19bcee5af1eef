package routes

import (
	"time"

	"daterbo-console/internal/adapters/http/handlers"
	"daterbo-console/internal/adapters/http/middleware"
	"daterbo-console/internal/config"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
)

// Version is reported by the API info endpoint
const Version = "1.0.0"

// Services groups the application services the routes expose
type Services struct {
	Sessions   *services.SessionManager
	Auth       *services.AuthService
	Records    *services.RecordService
	References *services.ReferenceService
	Exports    *services.ExportService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, svc Services, m *metrics.Metrics, checks map[string]handlers.HealthCheckFunc) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, Version, checks)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Sessions, cfg)
	recordHandler := handlers.NewRecordHandler(svc.Records)
	exportHandler := handlers.NewExportHandler(svc.Exports)
	referenceHandler := handlers.NewReferenceHandler(svc.References)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus scrape endpoint
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, cfg, svc.Sessions, healthHandler, authHandler, recordHandler, exportHandler, referenceHandler)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	cfg *config.Config,
	sessions *services.SessionManager,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	recordHandler *handlers.RecordHandler,
	exportHandler *handlers.ExportHandler,
	referenceHandler *handlers.ReferenceHandler,
) {
	auth := middleware.AuthMiddleware(cfg, sessions)

	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, auth)

	// Borrower records (authenticated)
	recordRoutes := router.Group("/records", auth, middleware.NoStore())
	setupRecordRoutes(recordRoutes, recordHandler, exportHandler)

	// Downloads (authenticated, rate limited)
	exportRoutes := router.Group("/exports", auth, middleware.ExportRateLimiter())
	setupExportRoutes(exportRoutes, exportHandler)

	// Reference data (authenticated)
	referenceRoutes := router.Group("/references", auth, middleware.NoStore())
	setupReferenceRoutes(referenceRoutes, referenceHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/register", middleware.AuthRateLimiter(), handler.RegisterAdmin)

	// Protected routes
	router.Post("/logout", auth, handler.Logout)
	router.Get("/me", auth, handler.Me)
}

// setupRecordRoutes configures borrower record routes
func setupRecordRoutes(router fiber.Router, handler *handlers.RecordHandler, exports *handlers.ExportHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Detail)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Post("/:id/actions/:action", handler.Action)

	// Documents
	router.Get("/:id/documents.pdf", middleware.ExportRateLimiter(), exports.Documents)
	router.Get("/:id/documents/:kind", middleware.CacheControl(5*time.Minute), handler.Document)
}

// setupExportRoutes configures file export routes
func setupExportRoutes(router fiber.Router, handler *handlers.ExportHandler) {
	router.Get("/records.xlsx", handler.XLSX)
	router.Get("/records.pdf", handler.PDF)
}

// setupReferenceRoutes configures reference data routes
func setupReferenceRoutes(router fiber.Router, handler *handlers.ReferenceHandler) {
	router.Get("/:kind", handler.List)
	router.Post("/:kind", handler.Create)
	router.Put("/:kind/:id", handler.Update)
	router.Delete("/:kind/:id", handler.Delete)
}
