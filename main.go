package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/krishkalaria12/remake/ai"
	"github.com/krishkalaria12/remake/auth"
	"github.com/krishkalaria12/remake/config"
	"github.com/krishkalaria12/remake/database"
	handler "github.com/krishkalaria12/remake/handlers"
	"github.com/krishkalaria12/remake/logger"
	"github.com/krishkalaria12/remake/models"
	"github.com/krishkalaria12/remake/report"
	"github.com/krishkalaria12/remake/router"
	"github.com/krishkalaria12/remake/store"
	"go.uber.org/zap"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(settings.LogLevel, settings.LogFormat); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(settings.DatabaseDriver, settings.DatabaseURL, logger.Named("database"))
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// close the database connection
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Error closing the database connection", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.MigrateModels(db, &models.User{}, &models.Report{}); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	generator, err := newGenerator(ctx, settings)
	if err != nil {
		logger.Fatal("Failed to create AI client", zap.Error(err))
	}

	authService := auth.NewService(auth.Options{
		Secret:   settings.JWTSecret,
		TokenTTL: settings.TokenTTL,
		URL:      settings.AppURL,
	})

	reports := store.NewReportStore(db)
	pipeline := report.NewPipeline(generator, reports, report.Options{
		FailurePolicy:  report.FailurePolicy(settings.OCRFailurePolicy),
		OCRConcurrency: settings.OCRConcurrency,
		MaxDimension:   settings.OCRMaxDimension,
	}, logger.Named("pipeline"))

	h := handler.New(handler.Deps{
		Pipeline: pipeline,
		Reports:  reports,
		DB:       db,
		Tokens:   authService.TokenService(),
		TokenTTL: settings.TokenTTL,
		Log:      logger.Named("http"),
	})

	app := router.NewApp(router.AppConfig{
		BodyLimitMB: settings.MaxUploadMB,
		AccessLog:   true,
	}, h, authService.TokenService(), logger.Named("http"))

	go func() {
		logger.Info("Server is listening", zap.String("addr", settings.Addr()), zap.String("ai_provider", generator.Name()))
		if err := app.Listen(settings.Addr()); err != nil {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	if err := app.Shutdown(); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func newGenerator(ctx context.Context, settings *config.Settings) (ai.Generator, error) {
	switch settings.AIProvider {
	case "openai":
		return ai.NewOpenAI(ai.OpenAIConfig{
			APIKey:  settings.OpenAIAPIKey,
			Model:   settings.OpenAIModel,
			BaseURL: settings.OpenAIBaseURL,
		})
	default:
		return ai.NewGemini(ctx, ai.GeminiConfig{
			APIKey: settings.GeminiAPIKey,
			Model:  settings.GeminiModel,
		})
	}
}
