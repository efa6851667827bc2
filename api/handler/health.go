package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/watch"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports watch slot utilisation and degrades status when > 80% of slots
// are taken.
func Health(w *watch.Watcher, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := w.Stats()

		status := "healthy"
		if stats.MaxWatches > 0 && stats.ActiveWatches > int(float64(stats.MaxWatches)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     status,
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			WatchStats: stats,
			Version:    "0.1.0",
		})
	}
}
