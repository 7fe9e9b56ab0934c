package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	news := r.Group("/api/v1/news")
	{
		news.GET("/category", handler.GetNewsByCategory)
		news.GET("/source", handler.GetNewsBySource)
		news.GET("/score", handler.GetNewsByScore)
		news.GET("/search", handler.GetNewsBySearch)
		news.GET("/nearby", handler.GetNewsNearby)
		news.GET("/trending", handler.GetNewsTrending)
		news.POST("/query", handler.ResolveQuery)
		news.POST("/interactions", handler.RecordInteraction)
	}

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Admin endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		admin := r.Group("/api/v1/admin")
		admin.Use(authMiddleware(apiAccessKey))
		{
			admin.POST("/reload", handler.APIReloadData)
			admin.GET("/cache", handler.APICacheStats)
		}
		slog.Info("Admin endpoints enabled with authentication")
	} else {
		slog.Info("Admin endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"category": "/api/v1/news/category?category=<name>",
			"source":   "/api/v1/news/source?source=<name>",
			"score":    "/api/v1/news/score?threshold=<value>",
			"search":   "/api/v1/news/search?query=<text>",
			"nearby":   "/api/v1/news/nearby?lat=<lat>&lon=<lon>",
			"trending": "/api/v1/news/trending",
			"query":    "/api/v1/news/query (POST)",
			"health":   "/health",
			"stats":    "/stats",
		}

		if apiAccessKey != "" {
			endpoints["reload"] = "/api/v1/admin/reload (POST, requires X-API-Key header)"
			endpoints["cache"] = "/api/v1/admin/cache (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "NewsPulse",
			"description": "Contextual news retrieval with intent routing and trending aggregation",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"admin_enabled": apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for admin endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
