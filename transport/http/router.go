package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/sigil/service"
	"go.uber.org/zap"
)

// RouterConfig holds the HTTP concerns that surround the auth endpoints
type RouterConfig struct {
	CORSOrigins  []string
	RateLimitRPS int // Zero disables rate limiting
}

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, logger *zap.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: !containsWildcard(cfg.CORSOrigins),
			MaxAge:           12 * time.Hour,
		}))
	}

	// Request bodies are small JSON documents
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 64<<10)
		c.Next()
	})

	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimiter(cfg.RateLimitRPS, cfg.RateLimitRPS*2))
	}

	router.Use(PrometheusMiddleware())
	router.Use(RequestLogger(logger))

	// Create handlers
	handlers := NewAuthHandlers(authService, logger)
	router.NoMethod(handlers.MethodNotAllowed)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", MetricsHandler())

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
	}

	return router
}

// containsWildcard returns true if origins includes "*".
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
