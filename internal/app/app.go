package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"chatdesk/internal/api"
	"chatdesk/internal/config"
	"chatdesk/internal/database"
	"chatdesk/internal/delivery"
	"chatdesk/internal/kv"
	"chatdesk/internal/repository"
	"chatdesk/internal/service"
)

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Successfully connected to SQLite database.")

	// The key-value cache falls back to an in-process store when no Redis
	// address is configured, so single-node deployments need no extra service.
	var cache kv.Store
	if cfg.RedisAddr != "" {
		cache, err = kv.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
			return 1
		}
		slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)
	} else {
		cache = kv.NewMemoryStore()
		slog.Info("No Redis address configured, using in-memory cache.")
	}

	repo := repository.NewSQLiteRepository(db)

	backend := delivery.NewBackendTransport(cfg.BackendURL)
	simulator := delivery.NewSimulator(cache)
	pipeline := delivery.NewPipeline(backend, simulator, delivery.Options{
		DefaultWebhookURL:    cfg.WebhookURL,
		SimulationEnabled:    cfg.SimulationEnabled,
		DefaultTopK:          cfg.TopK,
		DefaultVectorStoreID: cfg.VectorStoreID,
	})

	tenantService := service.NewTenantService(repo, cache)
	chatService := service.NewChatService(repo, pipeline, tenantService, cache)
	feedbackService := service.NewFeedbackService(repo)
	analyticsService := service.NewAnalyticsService(repo)

	chatHandler := api.NewChatHandler(chatService)
	adminHandler := api.NewAdminHandler(tenantService, feedbackService, analyticsService)
	router := api.NewRouter(chatHandler, adminHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.AppPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
