package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/thoughtstream/auditweb/internal/config"
	dbRedis "github.com/thoughtstream/auditweb/internal/db/redis"
	logpkg "github.com/thoughtstream/auditweb/internal/logger"
	"github.com/thoughtstream/auditweb/internal/metrics"
	auditrepo "github.com/thoughtstream/auditweb/internal/repository/audit"
	chiTransport "github.com/thoughtstream/auditweb/internal/transport/chi"
	healthuc "github.com/thoughtstream/auditweb/internal/usecase/health"
	homeuc "github.com/thoughtstream/auditweb/internal/usecase/home"
	ingestuc "github.com/thoughtstream/auditweb/internal/usecase/ingest"
	searchuc "github.com/thoughtstream/auditweb/internal/usecase/search"
	suggestionuc "github.com/thoughtstream/auditweb/internal/usecase/suggestion"
	"github.com/thoughtstream/auditweb/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, version.Name)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	addrs := cfg.Database.StoreAddrs()
	logger.Info("Starting auditweb",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", addrs),
		zap.String("database", cfg.Storage.Database),
		zap.String("collection", cfg.Storage.Collection),
		zap.String("default_query", cfg.Search.DefaultQuery),
		zap.Int("default_limit", cfg.Search.DefaultLimit),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterAuditMetrics()

	// Composition root: one store, one repository, services on top.
	repo := auditrepo.New(store, cfg.Storage.KeyPrefix, cfg.Storage.Database, cfg.Storage.Collection)
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.String("index", repo.IndexName()), zap.Error(err))
	}
	logger.Info("Search index ready", zap.String("index", repo.IndexName()))

	searchSvc := searchuc.New(repo, cfg.Search.MaxLimit)
	homeSvc := homeuc.New(searchSvc, cfg.Search.DefaultQuery, cfg.Search.DefaultLimit, logger)
	ingestSvc := ingestuc.New(repo)
	healthSvc := healthuc.New(store, repo)

	server, err := chiTransport.NewServer(
		homeSvc, suggestionuc.New(), searchSvc, ingestSvc, healthSvc,
		chiTransport.Options{
			DefaultQuery: cfg.Search.DefaultQuery,
			DefaultLimit: cfg.Search.DefaultLimit,
		},
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create HTTP server", zap.Error(err))
	}

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("No auth.api_keys configured, audit write endpoints are unauthenticated", zap.String("env", env))
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
