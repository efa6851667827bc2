package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/solvewatch/models"
	"github.com/use-agent/solvewatch/watch"
)

// StartWatch returns a handler for POST /api/v1/watch.
//
// Opens a browser tab on the URL, classifies it, and, for submission
// pages, starts observing DOM mutations for verdicts. The response
// carries the watch ID used to poll status or stop the watch.
func StartWatch(w *watch.Watcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.WatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.WatchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		watched, err := w.StartWatch(c.Request.Context(), &req)
		if err != nil {
			watchErr, ok := err.(*models.WatchError)
			if !ok {
				watchErr = models.NewWatchError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(mapErrorToStatus(watchErr), models.WatchResponse{
				Success: false,
				Error:   watchErr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.WatchResponse{
			Success:        true,
			WatchID:        watched.ID,
			Classification: watched.Classification(),
			Metadata:       watched.Metadata(),
		})
	}
}

// WatchStatus returns a handler for GET /api/v1/watch/:id.
func WatchStatus(w *watch.Watcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		watched, ok := w.Get(id)
		if !ok {
			c.JSON(http.StatusNotFound, models.WatchStatusResponse{
				Success: false,
				WatchID: id,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeWatchNotFound,
					Message: "no active watch with that id",
				},
			})
			return
		}

		c.JSON(http.StatusOK, watched.Status())
	}
}

// StopWatch returns a handler for DELETE /api/v1/watch/:id.
func StopWatch(w *watch.Watcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !w.StopWatch(id) {
			c.JSON(http.StatusNotFound, models.WatchStatusResponse{
				Success: false,
				WatchID: id,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeWatchNotFound,
					Message: "no active watch with that id",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "watch_id": id})
	}
}
