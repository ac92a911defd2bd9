package bootstrap

import (
	"context"

	infraerrors "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/api"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/config"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/source"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
)

// AnalyzeCohorts loads every configured cohort's payload and runs the pipeline on it.
// Cohorts are analyzed in configuration order.
func AnalyzeCohorts(
	ctx context.Context,
	cfg *config.Config,
	tp *telemetry.Provider,
	log infralogger.Logger,
) ([]api.Cohort, error) {
	pipeline := analysis.NewPipeline(cfg.Analysis.Params(), log, tp)

	cohorts := make([]api.Cohort, 0, len(cfg.Cohorts))
	for _, cc := range cfg.Cohorts {
		ds, stats, err := source.LoadFile(cc.Input)
		if err != nil {
			return nil, infraerrors.WrapWithContextf(err, "cohort %s", cc.ID)
		}

		log.Info("Loaded cohort payload",
			infralogger.Cohort(cc.ID),
			infralogger.String("input", cc.Input),
			infralogger.Int("sessions", stats.Sessions),
			infralogger.Int("events", stats.Events),
			infralogger.Int("dropped_no_center", stats.DroppedNoCenter),
		)

		cohorts = append(cohorts, api.Cohort{
			ID:     cc.ID,
			Title:  cc.Title,
			Result: pipeline.Run(ctx, cc.ID, ds),
		})
	}
	return cohorts, nil
}
