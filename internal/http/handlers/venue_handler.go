// README: Venue handlers for the nearby view and quick busyness reports.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/modules/report"
	"crowdradar/internal/modules/snapshot"
	"crowdradar/internal/modules/venue"
	"crowdradar/internal/types"
)

type NearbyResolver interface {
	Nearby(ctx context.Context, p types.Point) (snapshot.Result, error)
}

type ReportSubmitter interface {
	Submit(ctx context.Context, cmd report.SubmitCommand) (report.SubmitResult, error)
}

type VenueHandler struct {
	nearby  NearbyResolver
	reports ReportSubmitter
}

func NewVenueHandler(nearby NearbyResolver, reports ReportSubmitter) *VenueHandler {
	return &VenueHandler{nearby: nearby, reports: reports}
}

type nearbyResp struct {
	Points  []busyness.ResolvedPoint `json:"points"`
	Dropped int                      `json:"dropped"`
}

// Nearby serves GET /api/venues/nearby?lat=&lng=.
func (h *VenueHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required numbers")
		return
	}
	p := types.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		writeError(c, http.StatusBadRequest, "coordinate out of range")
		return
	}
	res, err := h.nearby.Nearby(c.Request.Context(), p)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, nearbyResp{Points: res.Snapshot.Points(), Dropped: len(res.Dropped)})
}

type reportReq struct {
	Level       *int       `json:"level"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

type reportResp struct {
	Report   report.Report `json:"report"`
	Stored   bool          `json:"stored"`
	Notified bool          `json:"notified"`
}

// Report serves POST /api/venues/:id/reports.
func (h *VenueHandler) Report(c *gin.Context) {
	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Level == nil {
		writeError(c, http.StatusBadRequest, "missing level")
		return
	}
	res, err := h.reports.Submit(c.Request.Context(), report.SubmitCommand{
		PointID:     types.ID(c.Param("id")),
		Level:       *req.Level,
		SubmittedAt: req.SubmittedAt,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if errors.Is(res.StoreErr, venue.ErrNotFound) {
		writeDomainError(c, res.StoreErr)
		return
	}
	writeJSON(c, http.StatusAccepted, reportResp{Report: res.Report, Stored: res.Stored, Notified: res.Notified})
}
