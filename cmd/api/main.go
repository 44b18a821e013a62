package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"golang.org/x/time/rate"

	"github.com/pressroom/hub/internal/api/handlers"
	"github.com/pressroom/hub/internal/api/middleware"
	"github.com/pressroom/hub/internal/config"
	"github.com/pressroom/hub/internal/ollama"
	"github.com/pressroom/hub/internal/repository"
	"github.com/pressroom/hub/internal/service"
	"github.com/pressroom/hub/internal/workers"
	"github.com/pressroom/hub/pkg/database"
)

const searchQueryCacheSize = 1000

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Ollama serves both embeddings and moderation
	ollamaClient := ollama.NewClient(cfg.OllamaHost,
		ollama.WithModel(cfg.EmbedModel),
		ollama.WithDimensions(cfg.EmbedDimensions),
	)

	// Initialize repositories
	articlesRepo := repository.NewArticlesRepository(db)
	embeddingsRepo := repository.NewEmbeddingsRepository(db)
	notificationsRepo := repository.NewNotificationsRepository(db)
	usersRepo := repository.NewUsersRepository(db)

	notificationService := service.NewNotificationService(notificationsRepo, usersRepo, nil, slog.Default())

	// Moderation is optional: with no model configured articles keep their
	// requested status.
	var articlesService *service.ArticlesService
	if cfg.ModerationModel != "" {
		moderator := ollama.NewModerator(ollamaClient, cfg.ModerationModel)
		moderationService := service.NewModerationService(moderator, articlesRepo, notificationService, slog.Default())
		articlesService = service.NewArticlesService(
			articlesRepo, moderationService, service.EmbeddingsQueueName, cfg.EmbeddingMaxAttempts, slog.Default())
		slog.Info("Moderation enabled", "model", cfg.ModerationModel)
	} else {
		articlesService = service.NewArticlesService(
			articlesRepo, nil, service.EmbeddingsQueueName, cfg.EmbeddingMaxAttempts, slog.Default())
		slog.Info("Moderation disabled (MODERATION_MODEL not set)")
	}

	queryCache, err := lru.New[string, []float32](searchQueryCacheSize)
	if err != nil {
		slog.Error("Failed to create search query cache", "error", err)
		os.Exit(1)
	}

	searchService := service.NewSearchService(service.SearchServiceParams{
		EmbeddingClient: ollamaClient,
		EmbeddingsRepo:  embeddingsRepo,
		QueryCache:      queryCache,
		Logger:          slog.Default(),
	})

	riverClient, err := initRiver(ctx, db, cfg, ollamaClient, articlesRepo, embeddingsRepo)
	if err != nil {
		slog.Error("Failed to initialize River job queue", "error", err)
		os.Exit(1)
	}
	articlesService.SetEmbeddingInserter(riverClient)
	slog.Info("River job queue started",
		"queue", service.EmbeddingsQueueName,
		"workers", cfg.EmbeddingMaxConcurrent,
		"max_attempts", cfg.EmbeddingMaxAttempts,
		"rate_limit", cfg.EmbeddingRateLimit,
	)

	articlesHandler := handlers.NewArticlesHandler(articlesService)
	searchHandler := handlers.NewSearchHandler(searchService)
	notificationsHandler := handlers.NewNotificationsHandler(notificationService)
	healthHandler := handlers.NewHealthHandler()

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/articles/search", searchHandler.Search)
	protectedMux.HandleFunc("GET /api/articles/{id}/similar", searchHandler.SimilarArticles)

	protectedMux.HandleFunc("POST /api/articles", articlesHandler.Create)
	protectedMux.HandleFunc("GET /api/articles", articlesHandler.List)
	protectedMux.HandleFunc("GET /api/articles/{id}", articlesHandler.Get)
	protectedMux.HandleFunc("PATCH /api/articles/{id}", articlesHandler.Update)
	protectedMux.HandleFunc("DELETE /api/articles/{id}", articlesHandler.Delete)
	protectedMux.HandleFunc("POST /api/articles/{id}/view", articlesHandler.RecordView)

	protectedMux.HandleFunc("GET /api/notifications", notificationsHandler.List)
	protectedMux.HandleFunc("PATCH /api/notifications/{id}/read", notificationsHandler.MarkRead)

	// Order matters: CORS must wrap Auth so OPTIONS preflight requests bypass authentication
	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)
	protectedHandler = middleware.CORS(protectedHandler)

	mainMux := http.NewServeMux()
	mainMux.Handle("/api/", protectedHandler)
	mainMux.Handle("/", publicMux)

	handler := middleware.RequestID(middleware.Logging(mainMux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Stop River (waits for in-flight jobs to complete)
	slog.Info("Stopping River job queue...")
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("River forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}

// initRiver initializes the River job queue client and the embedding worker
func initRiver(
	ctx context.Context,
	db *pgxpool.Pool,
	cfg *config.Config,
	embeddingClient service.EmbeddingClient,
	articlesRepo *repository.ArticlesRepository,
	embeddingsRepo *repository.EmbeddingsRepository,
) (*river.Client[pgx.Tx], error) {
	// Rate limiter for Ollama calls from the embedding worker
	rateLimiter := rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)

	embeddingWorker := workers.NewArticleEmbeddingWorker(articlesRepo, embeddingsRepo, embeddingClient, rateLimiter)

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, embeddingWorker)

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			service.EmbeddingsQueueName: {MaxWorkers: cfg.EmbeddingMaxConcurrent},
		},
		Workers: riverWorkers,
	})
	if err != nil {
		return nil, err
	}

	// Start River (begins processing jobs)
	if err := riverClient.Start(ctx); err != nil {
		return nil, err
	}

	return riverClient, nil
}
