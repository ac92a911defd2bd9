package gin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents the status of a health check.
type HealthStatus string

const (
	// HealthStatusHealthy indicates the service is healthy.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded indicates the service is degraded but functional.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusUnhealthy indicates the service is unhealthy.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const bytesPerMiB = 1 << 20

// HealthResponse is the standardized health check response format.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of an individual health check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker performs one named health check.
type HealthChecker func() CheckResult

// HealthOptions configures the health endpoint behavior.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	// StartTime is used for uptime; zero means the time of registration.
	StartTime time.Time
	Checks    map[string]HealthChecker
}

// RegisterHealthRoutes adds GET/HEAD /health and GET /health/memory.
func RegisterHealthRoutes(router gin.IRoutes, opts HealthOptions) {
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}

	router.GET("/health", healthHandler(opts))
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health/memory", memoryHandler)
}

func healthHandler(opts HealthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  time.Since(opts.StartTime).Truncate(time.Second).String(),
		}

		if len(opts.Checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, check := range opts.Checks {
				result := check()
				response.Checks[name] = result

				switch {
				case result.Status == HealthStatusUnhealthy:
					response.Status = HealthStatusUnhealthy
				case result.Status == HealthStatusDegraded && response.Status == HealthStatusHealthy:
					response.Status = HealthStatusDegraded
				}
			}
		}

		statusCode := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

func memoryHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"heap_alloc_mb": float64(m.HeapAlloc) / bytesPerMiB,
		"sys_mb":        float64(m.Sys) / bytesPerMiB,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	})
}
