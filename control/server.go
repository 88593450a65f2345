// Package control exposes a thin internal HTTP surface over the four
// operations spec.md §6 names, distinct from the out-of-scope public
// admin/read facade that is expected to sit in front of it.
package control

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"newsroom/pipeline"
)

// NewRouter builds the gin engine, mirroring the teacher's
// RegisterRSSRoutes grouping pattern.
func NewRouter(scheduler *pipeline.Scheduler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	g := r.Group("/internal")
	g.POST("/batches/trigger", handleTriggerBatch(scheduler))
	g.POST("/breakers/:source/reset", handleResetBreaker(scheduler))
	g.GET("/status", handleStatus(scheduler))
	g.GET("/limits", handleLimits(scheduler))

	return r
}

func handleTriggerBatch(scheduler *pipeline.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
		defer cancel()
		result := scheduler.TriggerManualBatch(ctx)
		c.JSON(http.StatusOK, result)
	}
}

func handleResetBreaker(scheduler *pipeline.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduler.ResetCircuitBreaker(c.Param("source"))
		c.JSON(http.StatusNoContent, nil)
	}
}

func handleStatus(scheduler *pipeline.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, scheduler.Status())
	}
}

func handleLimits(scheduler *pipeline.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := scheduler.DailyLimitsSnapshot()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}
