package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/api"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/config"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/features"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/report"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
)

const outputFileMode = 0o644

type analyzeOptions struct {
	cohorts []string
	outDir  string
	circles int
	native  bool
}

func analyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the analytics pipeline and print clusters and moves",
		Long: `Runs normalize, extract, cluster and summarize over each cohort's session
payload and prints the resulting clusters and moves. Cohorts come from the
config file unless --cohort is given.`,
		Example: `  session-viewer analyze --cohort novices=data/novices.json --out out/`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.cohorts, "cohort", nil, "cohort as id=path (repeatable)")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "directory to write one GeoJSON file per layer per cohort")
	cmd.Flags().IntVar(&opts.circles, "circles", 0, "render clusters as polygons with this many vertices")
	cmd.Flags().BoolVar(&opts.native, "native", false, "keep source coordinates instead of WGS84")

	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, opts *analyzeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(opts.cohorts) > 0 {
		cohorts, parseErr := parseCohortFlags(opts.cohorts)
		if parseErr != nil {
			return parseErr
		}
		cfg.Cohorts = cohorts
	}
	if len(cfg.Cohorts) == 0 {
		return fmt.Errorf("no cohorts: pass --cohort id=path or configure cohorts")
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return fmt.Errorf("validate config: %w", validationErr)
	}

	// Tables go to stdout, logs to stderr.
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cohorts, err := bootstrap.AnalyzeCohorts(ctx, cfg, telemetry.NewProvider(nil), log)
	if err != nil {
		return err
	}

	renderer := report.NewTableRenderer(cmd.OutOrStdout())
	results := make([]*analysis.Result, 0, len(cohorts))
	for _, c := range cohorts {
		results = append(results, c.Result)
	}
	renderer.Summary(results)
	for _, c := range cohorts {
		renderer.Clusters(c.Result)
		renderer.Moves(c.Result)
	}

	if opts.outDir == "" {
		return nil
	}
	return writeLayers(opts, cohorts, log)
}

// parseCohortFlags parses id=path pairs.
func parseCohortFlags(values []string) ([]config.CohortConfig, error) {
	out := make([]config.CohortConfig, 0, len(values))
	for _, v := range values {
		id, path, ok := strings.Cut(v, "=")
		id, path = strings.TrimSpace(id), strings.TrimSpace(path)
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("invalid --cohort %q: want id=path", v)
		}
		out = append(out, config.CohortConfig{ID: id, Title: id, Input: path})
	}
	return out, nil
}

// writeLayers writes <out>/<cohort>/<layer>.geojson for every catalog layer.
func writeLayers(opts *analyzeOptions, cohorts []api.Cohort, log infralogger.Logger) error {
	var featureOpts []features.Option
	if opts.native {
		featureOpts = append(featureOpts, features.Native())
	}
	if opts.circles > 0 {
		featureOpts = append(featureOpts, features.WithCircles(opts.circles))
	}

	for _, c := range cohorts {
		dir := filepath.Join(opts.outDir, c.ID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}

		for _, l := range layers.Catalog() {
			fc, err := features.ForLayer(l.ID, c.Result, featureOpts...)
			if err != nil {
				return fmt.Errorf("render %s/%s: %w", c.ID, l.ID, err)
			}
			body, err := fc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", c.ID, l.ID, err)
			}

			path := filepath.Join(dir, l.ID+".geojson")
			if err = os.WriteFile(path, body, outputFileMode); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			log.Debug("Wrote layer",
				infralogger.Cohort(c.ID),
				infralogger.String("layer", l.ID),
				infralogger.String("path", path),
				infralogger.Int("features", len(fc.Features)),
			)
		}
	}

	log.Info("Wrote GeoJSON layers",
		infralogger.String("dir", opts.outDir),
		infralogger.Int("cohorts", len(cohorts)),
	)
	return nil
}
