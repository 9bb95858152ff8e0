package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracingRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "erp-payroll", Enabled: true, TracerProvider: tp}))
	router.Use(func(c *gin.Context) {
		c.Set(JWTTenantIDKey, "tenant-1")
		c.Set(JWTUserIDKey, "user-1")
		c.Next()
	})
	router.Use(TracingAttributeInjector())
	router.GET("/api/v1/salaries/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router, sr
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[string(a.Key)] = a.Value.Emit()
	}
	return out
}

func TestTracingWithConfig(t *testing.T) {
	t.Run("span carries route and identifiers", func(t *testing.T) {
		router, sr := setupTracingRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/salaries/42", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/api/v1/salaries/:id")
		attrs := attrMap(spans[0].Attributes())
		assert.Equal(t, "req-1", attrs["request_id"])
		assert.Equal(t, "tenant-1", attrs["tenant_id"])
		assert.Equal(t, "user-1", attrs["user_id"])
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		router, sr := setupTracingRouter(t)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/broken", nil))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("disabled is a pass-through", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}
