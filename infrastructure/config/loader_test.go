package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name      string              `yaml:"name"`
	Radius    float64             `env:"SAMPLE_RADIUS"    yaml:"radius"`
	Threshold time.Duration       `env:"SAMPLE_THRESHOLD" yaml:"threshold"`
	Server    config.ServerConfig `yaml:"server"`
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithDefaults_EnvOverridesYAML(t *testing.T) {
	t.Setenv("SAMPLE_RADIUS", "1500")
	t.Setenv("SAMPLE_THRESHOLD", "4s")

	path := writeFile(t, "name: crown\nradius: 900\nthreshold: 2s\n")

	cfg, err := config.LoadWithDefaults(path, func(s *sample) { s.Server.SetDefaults() })
	require.NoError(t, err)

	assert.Equal(t, "crown", cfg.Name)
	assert.InDelta(t, 1500.0, cfg.Radius, 1e-9)
	assert.Equal(t, 4*time.Second, cfg.Threshold)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yml")

	cfg, err := config.LoadOptional(missing, func(s *sample) { s.Name = "default" })
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unterminated\n")

	_, err := config.Load[sample](path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"positive float", config.ValidatePositive("analysis.min_radius", 10.0), false},
		{"zero float", config.ValidatePositive("analysis.min_radius", 0.0), true},
		{"negative duration", config.ValidatePositive("analysis.time_threshold", -time.Second), true},
		{"ordered", config.ValidateOrdered("analysis.radius", 1000, 2000), false},
		{"equal bounds", config.ValidateOrdered("analysis.radius", 2000, 2000), false},
		{"reversed", config.ValidateOrdered("analysis.radius", 3000, 2000), true},
		{"bad port", config.ValidatePort("server.port", 70000), true},
		{"bad level", config.ValidateLogLevel("verbose"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.wantErr {
				var vErr *config.ValidationError
				require.ErrorAs(t, tt.err, &vErr)
				assert.NotEmpty(t, vErr.Field)
				return
			}
			assert.NoError(t, tt.err)
		})
	}
}
