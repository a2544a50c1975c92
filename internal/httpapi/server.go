package httpapi

import (
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"github.com/kestrelrun/kestrel/internal/scheduler"
	"github.com/kestrelrun/kestrel/internal/store"
)

// NewRouter builds a gin.Engine with every orchestrator route registered and
// a request logger middleware in the same structured-logging idiom used
// throughout the engine packages.
func NewRouter(s *store.Store, sched *scheduler.Scheduler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	api := New(s, sched, logger)
	api.Register(router)
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if logger == nil {
			return
		}
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
