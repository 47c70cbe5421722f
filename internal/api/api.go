// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/codicehealth/codice-inventory/backend-go/internal/api/handlers"
	"github.com/codicehealth/codice-inventory/backend-go/internal/api/middleware"
	"github.com/codicehealth/codice-inventory/backend-go/internal/service"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

type Services struct {
	Store           store.Store
	Recommendations *service.RecommendationService
	Redistribution  *service.RedistributionService
	Dashboard       *service.DashboardService
	Expiry          *service.ExpiryService
	Forecast        *service.ForecastService
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
		handler := handlers.NewIntelligenceHandler(
			services.Store,
			services.Recommendations,
			services.Redistribution,
			services.Dashboard,
			services.Expiry,
			services.Forecast,
		)

		intelligence := apiGroup.Group("/intelligence")
		{
			intelligence.GET("/dashboard/consolidated", handler.GetConsolidatedDashboard)
			intelligence.GET("/dashboard/branch/:branch_id", handler.GetBranchDashboard)
			intelligence.GET("/recommendations/purchase/branch/:branch_id", handler.GetRecommendations)
			intelligence.GET("/recommendations/redistribution", handler.GetRedistribution)
			intelligence.GET("/forecasts", handler.GetForecast)
			intelligence.GET("/alerts/expiry", handler.GetExpiryAlerts)
			intelligence.DELETE("/cache", handler.InvalidateCache)
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
