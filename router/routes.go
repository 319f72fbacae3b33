package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	handler "github.com/krishkalaria12/remake/handlers"
	"github.com/krishkalaria12/remake/middleware"
	"go.uber.org/zap"
)

type AppConfig struct {
	BodyLimitMB int
	AccessLog   bool
}

// NewApp builds the Fiber application with all routes mounted.
func NewApp(cfg AppConfig, h *handler.Handler, tokens middleware.TokenParser, log *zap.Logger) *fiber.App {
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit < 1 {
		bodyLimit = 4
	}

	app := fiber.New(fiber.Config{
		AppName:      "remake",
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler(log),
	})
	app.Use(recover.New())

	SetupRoutes(app, cfg, h, tokens)
	return app
}

func SetupRoutes(app *fiber.App, cfg AppConfig, h *handler.Handler, tokens middleware.TokenParser) {
	requireAuth := middleware.AuthMiddleware(tokens)

	// Report library page
	app.Get("/reports", middleware.OptionalAuth(tokens), h.ReportsPage)

	api := app.Group("/api")
	if cfg.AccessLog {
		api.Use(logger.New())
	}
	api.Get("/health", h.Health)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)

	// User
	user := api.Group("/user")
	user.Post("/", h.CreateUser)
	user.Get("/me", requireAuth, h.GetCurrentUser)

	// Reports
	api.Post("/report", requireAuth, h.GenerateReport)
	api.Get("/reports", requireAuth, h.ListReports)
}
