package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suPer8Hu/audios-sac-extract/internal/httpapi/handlers"
	"github.com/suPer8Hu/audios-sac-extract/internal/httpapi/middleware"
	"go.uber.org/zap"
)

// NewRouter serves the read-only status API next to the scheduler.
func NewRouter(h *handlers.Handler, reg prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery(log))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))

	r.GET("/ping", h.Ping)
	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// jobs
	r.GET("/jobs/:id", h.GetJob)
	r.GET("/jobs/:id/batches", h.ListJobBatches)
	r.GET("/batches/:genesys_batch_id/audios", h.ListBatchAudios)
	return r
}
