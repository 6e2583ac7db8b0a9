package controllers

import (
	"Samagra/middlewares"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck checks one backing service.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RootController serves the welcome, health and metrics routes.
type RootController struct {
	Checks       []HealthCheck
	PoolStats    func() map[string]uint32
	Metrics      *middlewares.Metrics
	MetricsToken string
}

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the Samagra API!")
}

// healthz reports 200 when every check passes and 503 otherwise.
func (rc *RootController) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for _, hc := range rc.Checks {
		if err := hc.Check(ctx); err != nil {
			checks[hc.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[hc.Name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	if rc.PoolStats != nil {
		body["redisPool"] = rc.PoolStats()
	}
	c.JSON(status, body)
}

// SetupRootRoute registers the routes outside the versioned API.
func (rc *RootController) SetupRootRoute(router *gin.Engine) {
	router.GET("/", rootHandler)
	router.GET("/healthz", rc.healthz)

	if rc.Metrics == nil {
		return
	}
	if rc.MetricsToken != "" {
		router.GET("/metrics", middlewares.ValidateBearerToken(rc.MetricsToken), rc.Metrics.Handler())
		return
	}
	router.GET("/metrics", rc.Metrics.Handler())
}
