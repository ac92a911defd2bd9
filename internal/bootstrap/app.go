// Package bootstrap handles application initialization and lifecycle management
// for the session viewer.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	infraerrors "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/api"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/compare"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/config"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/reactive"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/viewsync"
)

// Serve analyzes the configured cohorts and serves them until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, log infralogger.Logger) error {
	// Phase 0: profiling (env gated)
	if pprofServer := profiling.StartPprofServer(log); pprofServer != nil {
		defer func() { _ = pprofServer.Close() }()
	}
	profiler, err := profiling.StartPyroscope(profiling.PyroscopeConfig{
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", infralogger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	log.Info("Starting Session Viewer",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Server.Port),
		infralogger.Int("cohorts", len(cfg.Cohorts)),
	)

	// Phase 1: analysis
	tp := telemetry.NewProvider(nil)
	cohorts, err := AnalyzeCohorts(ctx, cfg, tp, log)
	if err != nil {
		return infraerrors.WrapWithContext(err, "analyze cohorts")
	}

	// Phase 2: event stream
	broker, err := startBroker(ctx, cfg, log)
	if err != nil {
		return err
	}
	if broker != nil {
		defer func() {
			if stopErr := broker.Stop(); stopErr != nil {
				log.Error("Failed to stop SSE broker", infralogger.Error(stopErr))
			}
		}()
		publishCohorts(ctx, broker, cohorts, log)
	}

	// Phase 3: comparison workspace on its own loop
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loop := reactive.NewLoop()
	go func() {
		if runErr := loop.Run(loopCtx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			log.Error("Workspace loop stopped", infralogger.Error(runErr))
		}
	}()

	opts := []compare.Option{compare.WithRecorder(tp)}
	if broker != nil {
		opts = append(opts, compare.WithSink(broker))
	}
	workspace := compare.New(loop, initialViewpoint(cohorts), log, opts...)

	// Phase 4: HTTP server
	server := SetupHTTPServer(cfg, cohorts, workspace, tp, broker, log)
	if runErr := server.Run(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Session Viewer stopped")
	return nil
}

func startBroker(ctx context.Context, cfg *config.Config, log infralogger.Logger) (sse.Broker, error) {
	if !cfg.SSE.IsEnabled() {
		log.Info("SSE disabled")
		return nil, nil //nolint:nilnil // disabled is not an error
	}

	sseCfg := sse.DefaultConfig()
	sseCfg.MaxClients = cfg.SSE.MaxClients
	sseCfg.HeartbeatInterval = cfg.SSE.HeartbeatInterval

	broker := sse.NewBroker(log, sse.WithConfig(sseCfg))
	if err := broker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start SSE broker: %w", err)
	}
	return broker, nil
}

func publishCohorts(ctx context.Context, broker sse.Broker, cohorts []api.Cohort, log infralogger.Logger) {
	for _, c := range cohorts {
		r := c.Result
		event := sse.NewCohortLoadedEvent(c.ID, len(r.Sessions), len(r.Clusters), len(r.Moves))
		if err := broker.Publish(ctx, event); err != nil {
			log.Warn("Failed to publish cohort event", infralogger.Cohort(c.ID), infralogger.Error(err))
		}
	}
}

// initialViewpoint centers both panes on the first cluster found, or the origin.
func initialViewpoint(cohorts []api.Cohort) viewsync.Viewpoint {
	for _, c := range cohorts {
		if len(c.Result.Clusters) == 0 {
			continue
		}
		first := c.Result.Clusters[0]
		return viewsync.Viewpoint{
			X:    first.Center.X(),
			Y:    first.Center.Y(),
			Zoom: float64(first.Zoom),
		}
	}
	return viewsync.Viewpoint{}
}
