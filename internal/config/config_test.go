package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/config"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.Equal(t, defaultServiceName, cfg.Service.Name)
	assert.Equal(t, defaultVersion, cfg.Service.Version)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
	assert.Equal(t, defaultServicePort, cfg.Server.Port)
	assert.Equal(t, domain.DefaultParams(), cfg.Analysis.Params())
	assert.True(t, cfg.SSE.IsEnabled())
	assert.Equal(t, defaultSSEMaxClients, cfg.SSE.MaxClients)
	assert.Equal(t, defaultSSEHeartbeat, cfg.SSE.HeartbeatInterval)
	assert.Equal(t, defaultLoggingLevel, cfg.Logging.Level)
	assert.Equal(t, defaultLoggingFmt, cfg.Logging.Format)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 9100
analysis:
  time_threshold: 5s
  min_radius: 500
  max_radius: 750
cohorts:
  - id: novices
    input: data/novices.json
  - id: experts
    title: Domain Experts
    input: data/experts.json
sse:
  enabled: false
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Analysis.TimeThreshold)
	assert.InDelta(t, float64(domain.DefaultMaxDistance), cfg.Analysis.MaxDistance, 1e-9)
	assert.InDelta(t, 750.0, cfg.Analysis.MaxRadius, 1e-9)
	assert.False(t, cfg.SSE.IsEnabled())

	novices, ok := cfg.Cohort("novices")
	require.True(t, ok)
	assert.Equal(t, "novices", novices.Title, "title defaults to id")

	experts, ok := cfg.Cohort("experts")
	require.True(t, ok)
	assert.Equal(t, "Domain Experts", experts.Title)

	_, ok = cfg.Cohort("missing")
	assert.False(t, ok)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaultServiceName, cfg.Service.Name)
	assert.Empty(t, cfg.Cohorts)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "zero time threshold",
			mutate:    func(c *Config) { c.Analysis.TimeThreshold = -time.Second },
			wantField: "analysis.time_threshold",
		},
		{
			name:      "negative max distance",
			mutate:    func(c *Config) { c.Analysis.MaxDistance = -1 },
			wantField: "analysis.max_distance",
		},
		{
			name:      "non-positive min radius",
			mutate:    func(c *Config) { c.Analysis.MinRadius = -5 },
			wantField: "analysis.min_radius",
		},
		{
			name:      "min radius above max radius",
			mutate:    func(c *Config) { c.Analysis.MinRadius = 3000 },
			wantField: "analysis.max_radius",
		},
		{
			name: "duplicate cohort",
			mutate: func(c *Config) {
				c.Cohorts = []CohortConfig{{ID: "a", Input: "a.json"}, {ID: "a", Input: "b.json"}}
			},
			wantField: "cohorts[1].id",
		},
		{
			name:      "cohort without input",
			mutate:    func(c *Config) { c.Cohorts = []CohortConfig{{ID: "a"}} },
			wantField: "cohorts[0].input",
		},
		{
			name:      "bad port",
			mutate:    func(c *Config) { c.Service.Port = 70000 },
			wantField: "service.port",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var vErr *infraconfig.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}
