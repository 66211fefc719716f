package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/mt5bridge/pkg/metrics"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGinMetricsMiddleware(t *testing.T) {
	m := metrics.New("test")
	router := newRouter(GinMetricsMiddleware(m))

	require.Equal(t, http.StatusOK, get(router, "/ok").Code)
	require.Equal(t, http.StatusOK, get(router, "/ok").Code)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal))
}

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(2, 0)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	// 桶已空且不补充
	assert.False(t, limiter.Allow())
}

func TestGinRateLimitMiddleware(t *testing.T) {
	router := newRouter(GinRateLimitMiddleware(NewRateLimiter(1, 0)))

	assert.Equal(t, http.StatusOK, get(router, "/ok").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/ok").Code)
}
