package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/solvewatch/api/handler"
	"github.com/use-agent/solvewatch/api/middleware"
	"github.com/use-agent/solvewatch/cache"
	"github.com/use-agent/solvewatch/config"
	"github.com/use-agent/solvewatch/fetch"
	"github.com/use-agent/solvewatch/watch"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(w *watch.Watcher, d *fetch.Dispatcher, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health stays outside auth.
	v1.GET("/health", handler.Health(w, startTime))

	// Protected group: auth then rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Classification
	protected.POST("/classify", handler.Classify(d, cc))
	protected.POST("/classify/batch", handler.ClassifyBatch())

	// Watches
	protected.POST("/watch", handler.StartWatch(w))
	protected.GET("/watch/:id", handler.WatchStatus(w))
	protected.DELETE("/watch/:id", handler.StopWatch(w))

	return r
}
