// Package server assembles the HTTP surface of the daemon.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/celerix-dev/cadastro/internal/api"
)

type Options struct {
	// MaxBodyBytes caps request bodies; zero disables the cap.
	MaxBodyBytes int64
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter wires the API handlers, CORS, request logging and /metrics.
func NewRouter(h *api.Handler, log zerolog.Logger, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors())
	if opts.MaxBodyBytes > 0 {
		r.Use(bodyLimit(opts.MaxBodyBytes))
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/validate", h.Validate)
		apiGroup.GET("/batches", h.ListBatches)
		apiGroup.POST("/batches", h.CreateBatch)
		apiGroup.GET("/batches/:id", h.GetBatch)
		apiGroup.DELETE("/batches/:id", h.DeleteBatch)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
