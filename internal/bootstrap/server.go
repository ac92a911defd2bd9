package bootstrap

import (
	"fmt"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/api"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/compare"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/config"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
)

const metricsNamespace = "session_viewer"

// SetupHTTPServer creates and configures the HTTP server. broker may be nil.
func SetupHTTPServer(
	cfg *config.Config,
	cohorts []api.Cohort,
	workspace *compare.Workspace,
	tp *telemetry.Provider,
	broker sse.Broker,
	log infralogger.Logger,
) *infragin.Server {
	handler := api.NewHandler(cohorts, workspace, log)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Server.Port).
		WithLogger(log).
		WithHost(cfg.Server.Host).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithHealthCheck("cohorts", cohortsCheck(cohorts)).
		WithRoutes(func(router *gin.Engine) {
			router.Use(metrics.NewHTTPMetrics(tp.Registry(), metricsNamespace).Middleware())
			api.SetupRoutes(router, handler, tp.Handler(), broker, log)
		})

	if broker != nil {
		builder = builder.WithHealthCheck("sse", func() infragin.CheckResult {
			return infragin.CheckResult{
				Status:  infragin.HealthStatusHealthy,
				Message: fmt.Sprintf("%d clients", broker.ClientCount()),
			}
		})
	}

	return builder.Build()
}

func cohortsCheck(cohorts []api.Cohort) infragin.HealthChecker {
	return func() infragin.CheckResult {
		if len(cohorts) == 0 {
			return infragin.CheckResult{
				Status:  infragin.HealthStatusDegraded,
				Message: "no cohorts configured",
			}
		}
		return infragin.CheckResult{
			Status:  infragin.HealthStatusHealthy,
			Message: fmt.Sprintf("%d cohorts analyzed", len(cohorts)),
		}
	}
}
