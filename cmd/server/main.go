// HR analyst bot - Telegram front end for conversational HR analytics.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/hr-analyst-bot/internal/analyst"
	"github.com/ashureev/hr-analyst-bot/internal/chatlog"
	"github.com/ashureev/hr-analyst-bot/internal/config"
	"github.com/ashureev/hr-analyst-bot/internal/llm"
	"github.com/ashureev/hr-analyst-bot/internal/store"
	"github.com/ashureev/hr-analyst-bot/internal/telegram"
	"github.com/ashureev/hr-analyst-bot/internal/visualizer"
	"github.com/ashureev/hr-analyst-bot/internal/webhook"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port)

	// Initialize dependencies.
	repo, err := store.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	convLog := chatlog.New(repo)
	if err := convLog.EnsureSchema(context.Background()); err != nil {
		slog.Error("Failed to ensure chat schema", "error", err)
		os.Exit(1)
	}

	// Initialize external clients.
	completer := llm.NewClient(llm.ClientConfig{
		FolderID: cfg.Yandex.FolderID,
		APIKey:   cfg.Yandex.APIKey,
		Model:    cfg.Yandex.Model,
	}, logger)
	tg := telegram.NewClient("", cfg.TelegramToken, logger)

	// Initialize services.
	viz := visualizer.New(completer, visualizer.Groupings{
		Categorical: analyst.CategoricalColumns,
		Numeric:     analyst.NumericColumns,
		Temporal:    analyst.TemporalColumns,
	}, logger)
	analystSvc := analyst.New(completer, repo, convLog, tg, viz, cfg.QueryRowLimit, logger)

	// Initialize handlers.
	handler := webhook.New(cfg.WebhookSecret, convLog, completer, tg, analystSvc, logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// The webhook is mounted at both paths so existing setWebhook
	// registrations keep working.
	r.Handle("/", handler)
	r.Handle("/webhook", handler)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM calls block the whole request
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
