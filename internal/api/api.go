// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/api/handlers"
	"github.com/stockpilot/backend-go/internal/api/middleware"
	"github.com/stockpilot/backend-go/internal/digest"
	"github.com/stockpilot/backend-go/internal/service"
)

func NewRouter(metrics *service.MetricsService, digests *digest.Service, allowedOrigins []string) *gin.Engine {
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
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	{
		metricsHandler := handlers.NewMetricsHandler(metrics)
		apiGroup.GET("/metrics", metricsHandler.GetMetrics)
		apiGroup.GET("/dashboard", metricsHandler.GetDashboard)
		apiGroup.GET("/sync_logs", metricsHandler.GetSyncLogs)

		planHandler := handlers.NewPlanHandler(metrics)
		apiGroup.POST("/plan", planHandler.BuildPlan)

		settingsHandler := handlers.NewSettingsHandler(metrics)
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.PUT("/settings", settingsHandler.SaveSettings)

		digestHandler := handlers.NewDigestHandler(digests)
		apiGroup.GET("/digests", digestHandler.ListArchive)
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
