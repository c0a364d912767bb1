package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	httpapi "github.com/stormstream/storm-assistant/internal/api/http"
	"github.com/stormstream/storm-assistant/internal/chat"
	"github.com/stormstream/storm-assistant/internal/config"
	"github.com/stormstream/storm-assistant/internal/geocode"
	"github.com/stormstream/storm-assistant/internal/scheduler"
	"github.com/stormstream/storm-assistant/internal/store"
	"github.com/stormstream/storm-assistant/internal/weather"
	"github.com/stormstream/storm-assistant/internal/weather/providers"
)

func main() {
	// Configuration. Missing required keys abort here, before any fetch.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Weather pipeline: geocoder plus the configured provider.
	geocoder := geocode.NewClient(httpClient, cfg.GoogleGeocoderAPIKey, zlog)

	var provider weather.ForecastProvider
	switch cfg.WeatherProvider {
	case weather.ProviderWeatherAPI:
		provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
	case weather.ProviderTomorrowIO:
		provider = providers.NewTomorrowIOProvider(httpClient, cfg.TomorrowIOAPIKey)
	default:
		provider = providers.NewOpenMeteoProvider(httpClient)
	}
	zlog.Info("weather provider configured", zap.String("provider", provider.Name()))

	weatherSvc := weather.NewService(geocoder, provider, cfg.ForecastDays, zlog)

	// LLM client.
	openaiCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		openaiCfg.BaseURL = cfg.OpenAIBaseURL
	}
	llm := openai.NewClientWithConfig(openaiCfg)

	// Session store with a janitor sweeping idle sessions.
	sessions := store.NewSessionStore(cfg.SessionMaxTurns, cfg.SessionMaxIdle)

	janitor := scheduler.New(sessions, cfg.JanitorInterval, zlog)
	if err := janitor.Start(); err != nil {
		zlog.Fatal("failed to start session janitor", zap.Error(err))
	}
	defer janitor.Stop()

	chatSvc := chat.NewService(llm, weatherSvc, sessions, chat.Options{
		Model:        cfg.OpenAIModel,
		Temperature:  float32(cfg.Temperature),
		MaxTokens:    cfg.MaxTokens,
		HistoryLimit: cfg.HistoryLimit,
		ForecastDays: cfg.ForecastDays,
	}, zlog)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "storm-assistant",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "storm-assistant",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, chatSvc, weatherSvc)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()
	zlog.Info("listening", zap.String("port", cfg.Port))

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
