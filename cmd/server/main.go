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

	"github.com/codicehealth/codice-inventory/backend-go/internal/api"
	"github.com/codicehealth/codice-inventory/backend-go/internal/cache"
	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/engine"
	"github.com/codicehealth/codice-inventory/backend-go/internal/service"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store/postgres"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store/postgrest"
	"github.com/codicehealth/codice-inventory/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize store backend")
	}

	st, err := cache.NewStore(backend, cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize cache")
	}

	distance := engine.HaversineDistance{}
	services := &api.Services{
		Store:           st,
		Recommendations: service.NewRecommendationService(st, cfg.Engine),
		Redistribution:  service.NewRedistributionService(st, cfg.Engine, distance),
		Dashboard:       service.NewDashboardService(st, cfg.Engine, distance),
		Expiry:          service.NewExpiryService(st, cfg.Engine),
		Forecast:        service.NewForecastService(st, cfg.Engine),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("store", cfg.Store.Backend).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}

func newBackend(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == "postgres" {
		return postgres.New(cfg.Store)
	}
	return postgrest.New(cfg.Store), nil
}
