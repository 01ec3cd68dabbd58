package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const readyCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks  map[string]Pinger
	version string
}

func NewHealthHandler(checks map[string]Pinger, version string) *HealthHandler {
	return &HealthHandler{checks: checks, version: version}
}

type readyCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
// Checks run concurrently under a shared deadline; any failure makes the
// response a 503.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
	defer cancel()

	var (
		mu    sync.Mutex
		out   = make(map[string]readyCheck, len(h.checks))
		ready = true
	)
	var g errgroup.Group
	for name, p := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := p.Ping(ctx)
			rc := readyCheck{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				rc.Status = "unavailable"
				rc.Error = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			out[name] = rc
			if err != nil {
				ready = false
			}
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"version": h.version, "checks": out})
}
