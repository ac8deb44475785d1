package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/probe"
)

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Service   string           `json:"service"`
	Version   string           `json:"version"`
	Upstream  probe.Status     `json:"upstream"`
	Sessions  string           `json:"sessions"`
	Calls     *UpstreamMetrics `json:"calls,omitempty"`
}

type UpstreamMetrics struct {
	Total            int64   `json:"total"`
	Errors           int64   `json:"errors"`
	ErrorRatePercent float64 `json:"error_rate_percent"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
}

// UpstreamStatus reports the latest probe result.
type UpstreamStatus interface {
	Status() probe.Status
}

// Pinger checks the session store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	serviceName string
	version     string
	upstream    UpstreamStatus
	sessions    Pinger
	metrics     *apiclient.Metrics
}

func NewHealthHandler(serviceName, version string, upstream UpstreamStatus, sessions Pinger, metrics *apiclient.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		upstream:    upstream,
		sessions:    sessions,
		metrics:     metrics,
	}
}

// HealthCheck answers 200 while the session store is reachable. A down OKR
// API degrades the status but does not fail the check: pages still render
// their fallbacks.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Upstream:  probe.Status{State: probe.StateUnknown},
		Sessions:  "disabled",
	}
	code := http.StatusOK

	if h.upstream != nil {
		resp.Upstream = h.upstream.Status()
		if resp.Upstream.State == probe.StateDown {
			resp.Status = "degraded"
		}
	}

	if h.sessions != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.sessions.Ping(pingCtx); err != nil {
			resp.Sessions = "down"
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else {
			resp.Sessions = "up"
		}
	}

	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		resp.Calls = &UpstreamMetrics{
			Total:            snap.Calls,
			Errors:           snap.Errors,
			ErrorRatePercent: snap.ErrorRate(),
			AvgLatencyMs:     snap.AverageLatency(),
		}
	}

	c.JSON(code, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
