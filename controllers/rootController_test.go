package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"Samagra/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func rootRouter(rc *RootController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rc.SetupRootRoute(r)
	return r
}

func TestHealthz(t *testing.T) {
	var redisErr error
	rc := &RootController{
		Checks: []HealthCheck{
			{Name: "database", Check: func(context.Context) error { return nil }},
			{Name: "redis", Check: func(context.Context) error { return redisErr }},
		},
		PoolStats: func() map[string]uint32 { return map[string]uint32{"total": 3} },
	}
	r := rootRouter(rc)

	w := get(r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","redis":"ok"},"redisPool":{"total":3}}`, w.Body.String())

	redisErr = errors.New("connection refused")
	w = get(r, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"ok","redis":"connection refused"},"redisPool":{"total":3}}`, w.Body.String())
}

func TestRootWelcome(t *testing.T) {
	w := get(rootRouter(&RootController{}), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome")
}

func TestMetricsRoute(t *testing.T) {
	open := rootRouter(&RootController{Metrics: middlewares.NewMetrics()})
	assert.Equal(t, http.StatusOK, get(open, "/metrics").Code)

	guarded := rootRouter(&RootController{Metrics: middlewares.NewMetrics(), MetricsToken: "scrape"})
	assert.Equal(t, http.StatusUnauthorized, get(guarded, "/metrics").Code)
	assert.Equal(t, http.StatusOK, get(guarded, "/metrics", "Authorization", "Bearer scrape").Code)

	none := rootRouter(&RootController{})
	assert.Equal(t, http.StatusNotFound, get(none, "/metrics").Code)
}
