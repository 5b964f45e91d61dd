package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/hitpolyacademy/backend/docs"
	"github.com/hitpolyacademy/backend/internal/academy"
	"github.com/hitpolyacademy/backend/internal/handlers"
	"github.com/hitpolyacademy/backend/internal/observability"
	"github.com/hitpolyacademy/backend/internal/services"
	"github.com/hitpolyacademy/backend/internal/storage"
	authMiddleware "github.com/hitpolyacademy/backend/libs/auth/middleware"
	authService "github.com/hitpolyacademy/backend/libs/auth/service"
	"github.com/hitpolyacademy/backend/libs/config"
	"github.com/hitpolyacademy/backend/libs/logger"
	loggerMiddleware "github.com/hitpolyacademy/backend/libs/logger/middleware"
	sharedMiddleware "github.com/hitpolyacademy/backend/libs/middlewares"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const maxRequestSize = 1 * 1024 * 1024 // 1MB, bodies are tiny progress updates

// @title HitpolyAcademy Player API
// @version 1.0
// @description Course player backend: loads course content, tracks progress and remembers where each user left off

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Bearer access token; optional for read endpoints
// @securityDefinitions.apikey ApiKeyHeader
// @in header
// @name X-API-Key
// @description API key for the admin endpoints
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting HitpolyAcademy Player Service")

	ctx := context.Background()

	// Initialize tracing
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		ServiceName:  cfg.Tracing.ServiceName,
	}, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// Initialize client state store
	stateStore, closeStore, err := newStateStore(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize state store", zap.Error(err))
	}
	defer closeStore()
	logger.Logger.Info("State store ready", zap.String("driver", cfg.StateStore.Driver))

	// Initialize academy API client
	academyClient, err := academy.NewClient(academy.Config{
		BaseURL: cfg.Academy.BaseURL,
		Timeout: cfg.Academy.Timeout,
	}, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create academy client", zap.Error(err))
	}

	// Initialize services
	contentLoader := services.NewContentLoader(academyClient, cfg.Academy.FetchConcurrency, logger.Logger)
	playerService := services.NewPlayerService(contentLoader, academyClient, stateStore, logger.Logger)

	sweeper, err := services.NewSweepScheduler(playerService, cfg.Session.SweepSchedule, cfg.Session.IdleTTL, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create session sweeper", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize JWT token generator (for auth middleware)
	tokenGenerator := authService.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)

	// Initialize middleware
	optionalAuthMw := authMiddleware.OptionalAuthMiddleware(tokenGenerator)
	apiKeyMw := authMiddleware.APIKeyMiddleware(cfg.APIKey)

	// Initialize handlers
	playerHandler := handlers.NewPlayerHandler(playerService, logger.Logger)
	adminHandler := handlers.NewAdminSessionHandler(playerService, sweeper, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger, "/health"))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(300, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxRequestSize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		playerHandler.RegisterRoutes(r, optionalAuthMw)
		adminHandler.RegisterRoutes(r, apiKeyMw)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Academy.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newStateStore builds the configured client state store and its cleanup
func newStateStore(ctx context.Context, cfg *config.Config) (storage.StateStore, func(), error) {
	noop := func() {}

	switch cfg.StateStore.Driver {
	case config.StateStoreLocal:
		store, err := storage.NewLocalStore(cfg.StateStore.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case config.StateStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, noop, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return storage.NewRedisStore(rdb, cfg.StateStore.TTL), func() { rdb.Close() }, nil

	case config.StateStoreMySQL:
		db, err := connectDB(cfg.DSN())
		if err != nil {
			return nil, noop, err
		}
		if err := runMigrations(db); err != nil {
			db.Close()
			return nil, noop, err
		}
		return storage.NewMySQLStore(db), func() { db.Close() }, nil

	default:
		return storage.NewMemoryStore(), noop, nil
	}
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "player_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
