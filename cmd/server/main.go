// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockwise/backend-go/internal/api"
	"github.com/stockwise/backend-go/internal/cache"
	"github.com/stockwise/backend-go/internal/config"
	"github.com/stockwise/backend-go/internal/pretrained"
	"github.com/stockwise/backend-go/internal/repository/postgres"
	"github.com/stockwise/backend-go/internal/service"
	"github.com/stockwise/backend-go/internal/storage"
	"github.com/stockwise/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Forecast cache degrades to a noop when redis is unreachable
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, continuing without caching")
		forecastCache = cache.NewNoopForecastCache()
	}

	// Pull the pretrained bundle from object storage when configured, then
	// load whatever is on disk. Both steps are non-fatal.
	if cfg.Bundle.Endpoint != "" {
		fetchBundle(cfg)
	}
	modelCache := pretrained.NewModelCache(cfg.Bundle.Dir)

	forecastService := service.NewForecastService(service.Dependencies{
		Products:    postgres.NewProductRepository(db.DB),
		Sales:       postgres.NewSalesRepository(db.DB),
		Forecasts:   postgres.NewForecastRepository(db.DB),
		Stored:      postgres.NewForecastReader(db.DB),
		Evaluations: postgres.NewEvaluationRepository(db.DB),
		AlertWriter: postgres.NewAlertRepository(db.DB),
		AlertReader: postgres.NewAlertReader(db.DB),
		Cache:       forecastCache,
		Pretrained:  modelCache,
	}, cfg.Forecast)

	router := api.NewRouter(forecastService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func fetchBundle(cfg *config.Config) {
	store, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Bundle.Endpoint,
		AccessKey: cfg.Bundle.AccessKey,
		SecretKey: cfg.Bundle.SecretKey,
		Bucket:    cfg.Bundle.Bucket,
		Region:    cfg.Bundle.Region,
		UseSSL:    cfg.Bundle.UseSSL,
	})
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Object storage unavailable, using local bundle if present")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pretrained.FetchBundle(ctx, store, cfg.Bundle.BucketKey, cfg.Bundle.Dir); err != nil {
		logger.Log.Warn().Err(err).Msg("Could not fetch pretrained bundle, using local bundle if present")
	}
}
