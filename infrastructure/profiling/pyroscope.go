package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
)

// PyroscopeConfig configures continuous profiling. Zero values fall back to
// PYROSCOPE_SERVER_URL, PYROSCOPE_ENVIRONMENT and the defaults below.
type PyroscopeConfig struct {
	ServiceName string
	Version     string
	ServerURL   string
	Environment string
}

// PyroscopeProfiler holds the Pyroscope profiler instance.
type PyroscopeProfiler struct {
	profiler *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling when ENABLE_CONTINUOUS_PROFILING=true.
// It returns (nil, nil) when profiling is disabled.
func StartPyroscope(cfg PyroscopeConfig, log logger.Logger) (*PyroscopeProfiler, error) {
	if os.Getenv("ENABLE_CONTINUOUS_PROFILING") != "true" {
		return nil, nil //nolint:nilnil // disabled is not an error
	}

	cfg = withEnvDefaults(cfg)

	pc := pyroscope.Config{
		ApplicationName: "north-cloud." + cfg.ServiceName,
		ServerAddress:   cfg.ServerURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     cfg.Version,
			"hostname":    hostname(),
			"go_version":  runtime.Version(),
		},
	}

	profiler, err := pyroscope.Start(pc)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		logger.String("application", pc.ApplicationName),
		logger.String("server", cfg.ServerURL),
		logger.String("environment", cfg.Environment),
	)

	return &PyroscopeProfiler{profiler: profiler}, nil
}

// Stop flushes and stops the profiler. It is safe on a nil receiver.
func (p *PyroscopeProfiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func withEnvDefaults(cfg PyroscopeConfig) PyroscopeConfig {
	if cfg.ServerURL == "" {
		cfg.ServerURL = os.Getenv("PYROSCOPE_SERVER_URL")
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://pyroscope:4040"
	}
	if cfg.Environment == "" {
		cfg.Environment = os.Getenv("PYROSCOPE_ENVIRONMENT")
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Version == "" {
		cfg.Version = "unknown"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "session-viewer"
	}
	return cfg
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
