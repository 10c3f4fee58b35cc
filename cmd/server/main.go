// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pharmalytics/inventory-engine/internal/api"
	"github.com/pharmalytics/inventory-engine/internal/cache"
	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/engine"
	"github.com/pharmalytics/inventory-engine/internal/engine/interaction"
	"github.com/pharmalytics/inventory-engine/internal/repository/postgres"
	"github.com/pharmalytics/inventory-engine/internal/rules"
	"github.com/pharmalytics/inventory-engine/internal/service"
	"github.com/pharmalytics/inventory-engine/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	ruleLoader, err := rules.NewLoader(cfg.Rules.Path)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("path", cfg.Rules.Path).Msg("Failed to load interaction rules")
	}

	eng := engine.New(cfg.Engine)
	engineService := service.NewEngineService(
		eng,
		cfg.Engine,
		postgres.NewConsumptionRepository(db.DB),
		postgres.NewInventoryRepository(db.DB),
		postgres.NewRunRepository(db),
		forecastCache,
	)
	interactionService := service.NewInteractionService(
		interaction.NewMatcher(cfg.Engine.SimilarityThreshold),
		ruleLoader,
	)

	router := api.NewRouter(&api.Services{
		EngineService:      engineService,
		InteractionService: interactionService,
	}, cfg.Server.AllowedOrigins)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
