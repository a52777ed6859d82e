package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/config"
	"github.com/refdata-io/reconcile-engine/pkg/database"
	"github.com/refdata-io/reconcile-engine/pkg/handlers"
	"github.com/refdata-io/reconcile-engine/pkg/logging"
	"github.com/refdata-io/reconcile-engine/pkg/match"
	"github.com/refdata-io/reconcile-engine/pkg/middleware"
	"github.com/refdata-io/reconcile-engine/pkg/repositories"
	"github.com/refdata-io/reconcile-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Bool("auth_enabled", cfg.Auth.Enabled),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Float64("match_threshold", cfg.Matcher.Threshold),
		zap.Float64("match_margin", cfg.Matcher.Margin))

	ctx := context.Background()

	// Migrations run over database/sql; the service itself uses a pgx pool.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.ConnectionString(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: time.Duration(cfg.Database.ConnLifetimeMin) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.Database.ConnIdleMin) * time.Minute,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	datasetRepo := repositories.NewDatasetRepository(db)
	entityRepo := repositories.NewEntityRepository(db)
	aliasRepo := repositories.NewAliasRepository(db)

	// Matching engine
	matcher := match.NewMatcher(match.Config{
		Threshold:    cfg.Matcher.Threshold,
		Margin:       cfg.Matcher.Margin,
		DefaultLimit: cfg.Matcher.DefaultLimit,
		MaxLimit:     cfg.Matcher.MaxLimit,
	}, logger)
	dispatcher := match.NewDispatcher(matcher, match.DispatcherConfig{
		MaxConcurrent: cfg.Matcher.MaxConcurrent,
		BatchTimeout:  time.Duration(cfg.Matcher.BatchTimeoutMS) * time.Millisecond,
	}, logger)

	// Services
	datasetService := services.NewDatasetService(datasetRepo, logger)
	entityService := services.NewEntityService(entityRepo, logger)
	aliasService := services.NewAliasService(aliasRepo, logger)
	reconcileService := services.NewReconcileService(
		datasetRepo, aliasRepo, dispatcher,
		time.Duration(cfg.Matcher.SnapshotTTLMS)*time.Millisecond, logger)

	// Handlers
	mux := http.NewServeMux()
	auth := handlers.AuthMiddleware(middleware.APIKeyAuth(cfg.Auth.Enabled, cfg.Auth.APIKeys, logger))

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDatasetsHandler(datasetService, logger).RegisterRoutes(mux, auth)
	handlers.NewEntitiesHandler(datasetService, entityService, logger).RegisterRoutes(mux, auth)
	handlers.NewAliasesHandler(datasetService, aliasService, logger).RegisterRoutes(mux, auth)
	handlers.NewReconcileHandler(reconcileService, logger).RegisterRoutes(mux, auth)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting reconcile-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
