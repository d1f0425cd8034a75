package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter mounts the handlers. Scoring and audit routes require the
// X-API-Key header when apiKey is set; schema and health stay open.
func NewRouter(h *Handler, apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/health", h.Health)
	r.GET("/schema", h.Schema)

	secured := r.Group("/")
	secured.Use(apiKeyMiddleware(apiKey))
	secured.POST("/predict", h.Predict)
	secured.POST("/batch", h.Batch)
	secured.GET("/predictions", h.Recent)
	return r
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
