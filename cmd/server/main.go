package main

import (
	"context"
	"dublinbikes-api/internal/cache"
	"dublinbikes-api/internal/config"
	"dublinbikes-api/internal/database"
	"dublinbikes-api/internal/logger"
	"dublinbikes-api/internal/routes"
	"dublinbikes-api/internal/services"
	"dublinbikes-api/internal/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	queryCache := cache.New(cache.WithTTL(cfg.CacheTTL), cache.WithSize(cfg.CacheSize))
	if cfg.CacheTTLOverridden() {
		logr.Warn("query cache TTL overridden", zap.Duration("ttl", queryCache.TTL()), zap.Duration("default", cache.DefaultTTL))
	} else {
		logr.Info("query cache ready", zap.Duration("ttl", queryCache.TTL()), zap.Int("size", cfg.CacheSize))
	}

	fileStore, err := storage.NewFileStore(cfg.StationsFile)
	if err != nil {
		logr.Fatal("failed to load stations file", zap.String("path", cfg.StationsFile), zap.Error(err))
	}
	svcs := routes.Services{
		V1: services.NewStationService("v1", fileStore, queryCache, logr.Logger),
	}

	var db *bun.DB
	if cfg.DocStoreEnabled {
		db, err = database.New(cfg)
		if err != nil {
			logr.Fatal("failed to connect to database", zap.Error(err))
		}

		docStore := storage.NewDocStore(db)
		if err := docStore.CreateSchema(context.Background()); err != nil {
			logr.Fatal("failed to create document store schema", zap.Error(err))
		}

		svcs.V2 = services.NewStationService("v2", docStore, queryCache, logr.Logger)
		svcs.Seeder = services.NewSeedService(cfg.StationsFile, svcs.V2, logr.Logger)
	}

	var feed *services.LiveFeed
	if cfg.LiveFeedEnabled {
		feed = services.NewLiveFeed(liveFeedTargets(cfg.LiveFeedTarget, svcs), logr.Logger)
		if err := feed.Start(cfg.LiveFeedSchedule); err != nil {
			logr.Fatal("failed to start live feed", zap.Error(err))
		}
	}

	r := routes.NewRouter(svcs, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.Bool("docstore", cfg.DocStoreEnabled),
			zap.Bool("live_feed", cfg.LiveFeedEnabled))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if feed != nil {
		feed.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}

	if db != nil {
		_ = db.Close()
	}
	logr.Info("server exited gracefully")
}

// liveFeedTargets resolves LIVE_FEED_TARGET (v1, v2 or both) against the
// services that are actually running.
func liveFeedTargets(target string, svcs routes.Services) []*services.StationService {
	var targets []*services.StationService
	if target == "v1" || target == "both" {
		targets = append(targets, svcs.V1)
	}
	if (target == "v2" || target == "both") && svcs.V2 != nil {
		targets = append(targets, svcs.V2)
	}
	if len(targets) == 0 {
		targets = append(targets, svcs.V1)
	}
	return targets
}
