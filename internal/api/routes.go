// Package api exposes analysis results and the comparison workspace over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/sse"
)

// SetupRoutes configures all API routes.
// Health routes are registered by the infrastructure gin builder.
// broker may be nil when the event stream is disabled.
func SetupRoutes(router *gin.Engine, h *Handler, metrics http.Handler, broker sse.Broker, log logger.Logger) {
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")

	v1.GET("/cohorts", h.ListCohorts)
	v1.GET("/cohorts/:cohort/layers/:layer", h.CohortLayer)
	v1.GET("/layers", h.ListLayers)

	views := v1.Group("/views")
	views.GET("", h.Views)
	views.POST("/:view/state", h.UpdateView)
	views.POST("/:view/layers/:layer", h.UpdateLayer)

	if broker != nil {
		v1.GET("/events", eventsHandler(broker, log))
	}
}

// eventsHandler streams workspace events, optionally narrowed by ?view= and ?types=.
func eventsHandler(broker sse.Broker, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts []sse.ClientOption
		if view := c.Query("view"); view != "" {
			opts = append(opts, sse.WithViewFilter(view))
		}
		if types := c.QueryArray("types"); len(types) > 0 {
			opts = append(opts, sse.WithTypeFilter(types...))
		}
		sse.Handler(broker, log, opts...)(c)
	}
}
