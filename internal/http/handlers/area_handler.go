// README: Area status readout handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"crowdradar/internal/modules/area"
)

type AreaReader interface {
	Current(ctx context.Context) area.Status
}

type AreaHandler struct {
	area AreaReader
}

func NewAreaHandler(a AreaReader) *AreaHandler {
	return &AreaHandler{area: a}
}

// Status serves GET /api/area/status. Feed outages still answer 200 with
// the fallback reading.
func (h *AreaHandler) Status(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.area.Current(c.Request.Context()))
}
