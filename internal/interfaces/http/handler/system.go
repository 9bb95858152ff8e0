package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairshop/erp/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type poolStatser interface {
	PoolStats() sql.DBStats
}

// ReadyResponse is the body of the readiness probe
type ReadyResponse struct {
	Status          string `json:"status"`
	OpenConnections *int   `json:"open_connections,omitempty"`
	InUse           *int   `json:"in_use,omitempty"`
}

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	logger    *zap.Logger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, db Pinger, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of the liveness probe
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports that the process is serving
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready pings the database. Pool counters are included when the database
// exposes them.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Database is not reachable")
		return
	}
	resp := ReadyResponse{Status: "ready"}
	if ps, ok := h.db.(poolStatser); ok {
		stats := ps.PoolStats()
		resp.OpenConnections, resp.InUse = &stats.OpenConnections, &stats.InUse
	}
	h.Success(c, resp)
}
