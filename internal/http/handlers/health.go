package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports 503 when any dependency fails its ping.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	ready := true

	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		err := h.checks[name](cctx)
		cancel()

		if err != nil {
			ready = false
			results[name] = "unavailable"
			continue
		}
		results[name] = "ok"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": results})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}
