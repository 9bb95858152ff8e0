package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/infrastructure/auth"
	"github.com/repairshop/erp/internal/infrastructure/config"
	"github.com/repairshop/erp/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRevocations struct {
	revoked bool
	err     error
}

func (f fakeRevocations) IsRevoked(context.Context, *auth.Claims) (bool, error) {
	return f.revoked, f.err
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "erp-backend",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func setupJWTRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/api/v1/salaries", func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		fields := logger.Fields(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"tenant_id":  p.TenantID.String(),
			"user_id":    p.UserID.String(),
			"username":   p.Username,
			"log_fields": len(fields),
		})
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWT()
	tenantID, userID := uuid.New(), uuid.New()
	token, _, err := svc.GenerateAccessToken(auth.TokenInput{TenantID: tenantID, UserID: userID, Username: "payroll-admin"})
	require.NoError(t, err)

	do := func(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(AuthHeaderKey, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token sets the principal", func(t *testing.T) {
		w := do(setupJWTRouter(DefaultJWTConfig(svc)), "/api/v1/salaries", BearerPrefix+token)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenantID.String())
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), "payroll-admin")
		// request, tenant and user IDs reach the request logger
		assert.Contains(t, w.Body.String(), `"log_fields":3`)
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		w := do(setupJWTRouter(DefaultJWTConfig(svc)), "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name    string
		header  string
		code    string
		message string
	}{
		{"missing header", "", "ERR_UNAUTHORIZED", "Authentication required"},
		{"wrong scheme", "Basic abc", "ERR_UNAUTHORIZED", "Authentication required"},
		{"empty bearer", "Bearer   ", "ERR_UNAUTHORIZED", "Authentication required"},
		{"garbage token", "Bearer not-a-jwt", "ERR_TOKEN_INVALID", "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(setupJWTRouter(DefaultJWTConfig(svc)), "/api/v1/salaries", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tt.code+`"`)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}

	t.Run("token from another issuer is invalid", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{
			Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else", AccessTokenExpiration: time.Minute,
		})
		foreign, _, err := other.GenerateAccessToken(auth.TokenInput{TenantID: tenantID, UserID: userID})
		require.NoError(t, err)

		w := do(setupJWTRouter(DefaultJWTConfig(svc)), "/api/v1/salaries", BearerPrefix+foreign)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		cfg := DefaultJWTConfig(svc)
		cfg.Revocations = fakeRevocations{revoked: true}

		w := do(setupJWTRouter(cfg), "/api/v1/salaries", BearerPrefix+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_REVOKED")
	})

	t.Run("revocation lookup failure lets the request through", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		cfg := DefaultJWTConfig(svc)
		cfg.Logger = zap.New(core)
		cfg.Revocations = fakeRevocations{err: errors.New("redis down")}

		w := do(setupJWTRouter(cfg), "/api/v1/salaries", BearerPrefix+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, recorded.FilterMessage("Failed to check token revocation").Len())
	})
}

func TestJWTGetters_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTTenantID(c))
	assert.Empty(t, GetJWTUserID(c))
	_, ok := GetPrincipal(c)
	assert.False(t, ok)
}
