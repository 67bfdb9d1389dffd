// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/api"
	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/digest"
	"github.com/stockpilot/backend-go/internal/repository/postgres"
	"github.com/stockpilot/backend-go/internal/service"
	"github.com/stockpilot/backend-go/internal/source"
	"github.com/stockpilot/backend-go/internal/storage"
	syncpkg "github.com/stockpilot/backend-go/internal/sync"
	"github.com/stockpilot/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON()
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	metricStore := postgres.NewMetricStore(db)
	logStore := postgres.NewSyncLogStore(db)
	settingsStore := postgres.NewSettingsStore(db)

	adapter, err := source.NewHTTPAdapter(cfg.Source)
	if err != nil {
		log.Fatalf("Failed to build source adapter: %v", err)
	}

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("dashboard cache unavailable, continuing without it")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	orchestrator := syncpkg.NewOrchestrator(metricStore, logStore, adapter, cfg.Sync)
	metricsService := service.NewMetricsService(orchestrator, settingsStore, logStore, dashboardCache)

	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("digest archive unavailable, digests will not be stored")
		} else {
			archive = minioClient
		}
	}
	digestService := digest.NewService(orchestrator, settingsStore, logStore, archive)

	var scheduler *digest.Scheduler
	if cfg.Digest.Enabled {
		scheduler = digest.NewScheduler(digestService, settingsStore.Shops)
		if err := scheduler.Start(cfg.Digest.Schedule); err != nil {
			log.Fatalf("Failed to start digest scheduler: %v", err)
		}
	}

	router := api.NewRouter(metricsService, digestService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
