// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crowdradar/internal/http/handlers"
	"crowdradar/internal/http/middleware"
	"crowdradar/internal/metrics"
)

type RouterDeps struct {
	Nearby   handlers.NearbyResolver
	Reports  handlers.ReportSubmitter
	Area     handlers.AreaReader
	Sessions handlers.SessionOpener
	// Origins allowed to open the radar websocket; the CORS list.
	Origins []string
	Log     logrus.FieldLogger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	venueHandler := handlers.NewVenueHandler(deps.Nearby, deps.Reports)
	r.GET("/api/venues/nearby", venueHandler.Nearby)
	r.POST("/api/venues/:id/reports", venueHandler.Report)

	areaHandler := handlers.NewAreaHandler(deps.Area)
	r.GET("/api/area/status", areaHandler.Status)

	radarHandler := handlers.NewRadarHandler(deps.Sessions, deps.Origins, deps.Log)
	r.GET("/ws/radar", radarHandler.Serve)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
