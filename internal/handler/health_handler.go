package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	deps    pinger
	version string
	started time.Time
}

// NewHealthHandler constructs the handler. deps may be nil when nothing needs checking.
func NewHealthHandler(deps pinger, version string) *HealthHandler {
	return &HealthHandler{deps: deps, version: version, started: time.Now()}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}, nil)
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings PostgreSQL and, when enabled, Redis.
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.deps != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.Ping(ctx); err != nil {
			notReady := appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, http.StatusServiceUnavailable, "dependencies unavailable")
			response.Error(c, notReady)
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}
