package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/session"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
)

// Pipeline phases, in execution order.
const (
	PhaseNormalize = "normalize"
	PhaseExtract   = "extract"
	PhaseCluster   = "cluster"
	PhaseSummarize = "summarize"
)

// Result holds every artifact of one pipeline run.
type Result struct {
	Cohort               string
	RunID                string
	Params               domain.Params
	Sessions             []domain.Session
	CharacteristicPoints []domain.NormalizedEvent
	Segments             []domain.TrajectorySegment
	Clusters             []domain.Cluster
	// Assignments[i] is the cluster ID of CharacteristicPoints[i].
	Assignments []int
	Moves       []domain.MoveEdge
}

// Interactions returns all normalized events across sessions.
func (r *Result) Interactions() []domain.NormalizedEvent {
	out := make([]domain.NormalizedEvent, 0, eventCount(r.Sessions))
	for _, s := range r.Sessions {
		out = append(out, s.Events...)
	}
	return out
}

// Cluster returns the cluster with the given ID.
func (r *Result) Cluster(id int) (domain.Cluster, bool) {
	// IDs are assigned sequentially from 1.
	if id < 1 || id > len(r.Clusters) {
		return domain.Cluster{}, false
	}
	return r.Clusters[id-1], true
}

// Pipeline runs normalize, extract, cluster and summarize strictly in order.
type Pipeline struct {
	params    domain.Params
	log       logger.Logger
	telemetry *telemetry.Provider
}

// NewPipeline creates a pipeline. tp may be nil to disable metrics and spans.
func NewPipeline(params domain.Params, log logger.Logger, tp *telemetry.Provider) *Pipeline {
	return &Pipeline{params: params, log: log, telemetry: tp}
}

// Run analyses ds for cohort. It has no failure modes: empty input yields an empty result.
func (p *Pipeline) Run(ctx context.Context, cohort string, ds domain.Dataset) *Result {
	res := &Result{
		Cohort: cohort,
		RunID:  uuid.NewString(),
		Params: p.params,
	}
	log := p.log.With(logger.Cohort(cohort), logger.String("run_id", res.RunID))
	started := time.Now()

	p.phase(ctx, cohort, PhaseNormalize, func() {
		res.Sessions = session.NormalizeAll(ds)
		for _, s := range res.Sessions {
			res.Segments = append(res.Segments, session.Segments(s)...)
		}
	})

	p.phase(ctx, cohort, PhaseExtract, func() {
		for _, s := range res.Sessions {
			res.CharacteristicPoints = append(res.CharacteristicPoints, ExtractCharacteristic(s, p.params)...)
		}
	})

	p.phase(ctx, cohort, PhaseCluster, func() {
		clustered := ClusterPoints(res.CharacteristicPoints, p.params)
		res.Clusters = clustered.Clusters
		res.Assignments = clustered.Assignments
	})

	p.phase(ctx, cohort, PhaseSummarize, func() {
		res.Moves = SummarizeMoves(res.Sessions, res.Clusters)
	})

	counts := telemetry.RunCounts{
		Sessions:             len(res.Sessions),
		Events:               eventCount(res.Sessions),
		CharacteristicPoints: len(res.CharacteristicPoints),
		Clusters:             len(res.Clusters),
		Moves:                len(res.Moves),
	}
	if p.telemetry != nil {
		p.telemetry.RecordRun(ctx, cohort, counts)
	}

	log.Info("Pipeline run completed",
		logger.Int("sessions", counts.Sessions),
		logger.Int("events", counts.Events),
		logger.Int("characteristic_points", counts.CharacteristicPoints),
		logger.Int("clusters", counts.Clusters),
		logger.Int("moves", counts.Moves),
		logger.Duration("duration", time.Since(started)),
	)

	return res
}

func (p *Pipeline) phase(ctx context.Context, cohort, name string, fn func()) {
	start := time.Now()
	if p.telemetry == nil {
		fn()
		p.log.Debug("Pipeline phase finished", logger.String("phase", name), logger.Duration("duration", time.Since(start)))
		return
	}

	ctx, span := p.telemetry.StartSpan(ctx, "pipeline."+name,
		attribute.String("cohort", cohort),
		attribute.String("phase", name),
	)
	fn()
	span.End()

	elapsed := time.Since(start)
	p.telemetry.RecordPhase(ctx, name, elapsed)
	p.log.Debug("Pipeline phase finished", logger.String("phase", name), logger.Duration("duration", elapsed))
}

func eventCount(sessions []domain.Session) int {
	n := 0
	for _, s := range sessions {
		n += s.Len()
	}
	return n
}
