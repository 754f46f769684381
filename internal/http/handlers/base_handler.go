// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crowdradar/internal/modules/report"
	"crowdradar/internal/modules/venue"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidReportValue),
		errors.Is(err, report.ErrBadRequest),
		errors.Is(err, venue.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, venue.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, venue.ErrStoreQueryFailed):
		writeError(c, http.StatusBadGateway, venue.ErrStoreQueryFailed.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
