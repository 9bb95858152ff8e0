package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakePool struct{ fakePinger }

func (fakePool) PoolStats() sql.DBStats { return sql.DBStats{OpenConnections: 4, InUse: 1} }

func setupSystemRouter(db Pinger) *gin.Engine {
	h := NewSystemHandler("erp-payroll", "1.0.0", db, zap.NewNop())
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	return router
}

func TestSystemHandler_Health(t *testing.T) {
	w, env := perform(setupSystemRouter(fakePinger{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
	assert.Contains(t, string(env.Data), `"name":"erp-payroll"`)
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		w, env := perform(setupSystemRouter(fakePinger{}), http.MethodGet, "/ready", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), "ready")
		assert.NotContains(t, string(env.Data), "open_connections")
	})

	t.Run("pool counters", func(t *testing.T) {
		w, env := perform(setupSystemRouter(fakePool{}), http.MethodGet, "/ready", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","open_connections":4,"in_use":1}`, string(env.Data))
	})

	t.Run("database down", func(t *testing.T) {
		w, env := perform(setupSystemRouter(fakePinger{err: errors.New("dial tcp: refused")}), http.MethodGet, "/ready", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "ERR_SERVICE_UNAVAILABLE", env.Error.Code)
		assert.NotContains(t, w.Body.String(), "refused")
	})
}
