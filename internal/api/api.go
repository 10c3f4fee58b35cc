// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pharmalytics/inventory-engine/internal/api/handlers"
	"github.com/pharmalytics/inventory-engine/internal/api/middleware"
	"github.com/pharmalytics/inventory-engine/internal/service"
)

type Services struct {
	EngineService      *service.EngineService
	InteractionService *service.InteractionService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.EngineService != nil {
			engineHandler := handlers.NewEngineHandler(services.EngineService)
			itemGroup := apiGroup.Group("/items/:item_id")
			{
				itemGroup.GET("/forecast", engineHandler.GetForecast)
				itemGroup.GET("/anomalies", engineHandler.GetAnomalies)
				itemGroup.GET("/reorder", engineHandler.GetReorder)
				itemGroup.GET("/expiry_risk", engineHandler.GetExpiryRisks)
			}

			runGroup := apiGroup.Group("/runs")
			{
				runGroup.POST("", engineHandler.TriggerRun)
				runGroup.GET("", engineHandler.ListRuns)
			}
		}

		if services.InteractionService != nil {
			interactionHandler := handlers.NewInteractionHandler(services.InteractionService)
			interactionGroup := apiGroup.Group("/interactions")
			{
				interactionGroup.POST("/check", interactionHandler.Check)
				interactionGroup.POST("/reload", interactionHandler.Reload)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
