// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stockwise/backend-go/internal/api/handlers"
	"github.com/stockwise/backend-go/internal/api/middleware"
	"github.com/stockwise/backend-go/internal/service"
)

func NewRouter(forecastService *service.ForecastService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

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

	forecastHandler := handlers.NewForecastHandler(forecastService)
	productGroup := apiGroup.Group("/products/:id")
	{
		productGroup.GET("/forecast", forecastHandler.GetForecast)
		productGroup.GET("/forecasts", forecastHandler.GetStoredForecasts)
		productGroup.POST("/train", forecastHandler.Train)
		productGroup.GET("/trend", forecastHandler.GetTrend)
		productGroup.GET("/alerts", forecastHandler.GetProductAlerts)
	}

	apiGroup.GET("/alerts", forecastHandler.GetActiveAlerts)
	apiGroup.POST("/forecasts/run", forecastHandler.RunBatch)
	apiGroup.GET("/model/info", forecastHandler.GetModelInfo)

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
