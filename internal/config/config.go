// Package config holds the session viewer's service configuration.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/config"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

// Default configuration values.
const (
	defaultServiceName   = "session-viewer"
	defaultServicePort   = 8090
	defaultVersion       = "0.1.0"
	defaultSSEMaxClients = 64
	defaultSSEHeartbeat  = 15 * time.Second
	defaultLoggingLevel  = "info"
	defaultLoggingFmt    = "json"
	defaultConfigPath    = "config.yml"
)

// Config holds the application configuration.
type Config struct {
	Service  ServiceConfig             `yaml:"service"`
	Analysis AnalysisConfig            `yaml:"analysis"`
	Cohorts  []CohortConfig            `yaml:"cohorts"`
	SSE      SSEConfig                 `yaml:"sse"`
	Server   infraconfig.ServerConfig  `yaml:"server"`
	Logging  infraconfig.LoggingConfig `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SESSION_VIEWER_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"           yaml:"debug"`
}

// AnalysisConfig holds the pipeline thresholds.
type AnalysisConfig struct {
	TimeThreshold time.Duration `env:"ANALYSIS_TIME_THRESHOLD" yaml:"time_threshold"`
	MaxDistance   float64       `env:"ANALYSIS_MAX_DISTANCE"   yaml:"max_distance"`
	MinRadius     float64       `env:"ANALYSIS_MIN_RADIUS"     yaml:"min_radius"`
	MaxRadius     float64       `env:"ANALYSIS_MAX_RADIUS"     yaml:"max_radius"`
}

// Params converts the section into pipeline parameters.
func (a AnalysisConfig) Params() domain.Params {
	return domain.Params{
		TimeThreshold: a.TimeThreshold,
		MaxDistance:   a.MaxDistance,
		MinRadius:     a.MinRadius,
		MaxRadius:     a.MaxRadius,
	}
}

// CohortConfig names one participant group and its session payload file.
type CohortConfig struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Input string `yaml:"input"`
}

// SSEConfig holds event stream configuration.
type SSEConfig struct {
	// Enabled defaults to true when unset.
	Enabled           *bool         `yaml:"enabled"`
	MaxClients        int           `yaml:"max_clients"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// IsEnabled reports whether the event stream is served.
func (s SSEConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Load loads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	return infraconfig.LoadOptional[Config](path, setDefaults)
}

// Path returns CONFIG_PATH or the default config file name.
func Path() string {
	return infraconfig.GetConfigPath(defaultConfigPath)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Cohort looks up a cohort by id.
func (c *Config) Cohort(id string) (CohortConfig, bool) {
	for _, cohort := range c.Cohorts {
		if cohort.ID == id {
			return cohort, true
		}
	}
	return CohortConfig{}, false
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setAnalysisDefaults(&cfg.Analysis)
	setCohortDefaults(cfg.Cohorts)
	setSSEDefaults(&cfg.SSE)
	setLoggingDefaults(&cfg.Logging)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = cfg.Service.Port
	}
	cfg.Server.SetDefaults()
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setAnalysisDefaults(a *AnalysisConfig) {
	if a.TimeThreshold == 0 {
		a.TimeThreshold = domain.DefaultTimeThreshold
	}
	if a.MaxDistance == 0 {
		a.MaxDistance = domain.DefaultMaxDistance
	}
	if a.MinRadius == 0 {
		a.MinRadius = domain.DefaultMinRadius
	}
	if a.MaxRadius == 0 {
		a.MaxRadius = domain.DefaultMaxRadius
	}
}

func setCohortDefaults(cohorts []CohortConfig) {
	for i := range cohorts {
		if cohorts[i].Title == "" {
			cohorts[i].Title = cohorts[i].ID
		}
	}
}

func setSSEDefaults(s *SSEConfig) {
	if s.MaxClients == 0 {
		s.MaxClients = defaultSSEMaxClients
	}
	if s.HeartbeatInterval == 0 {
		s.HeartbeatInterval = defaultSSEHeartbeat
	}
}

func setLoggingDefaults(log *infraconfig.LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateCohorts(); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("sse.max_clients", c.SSE.MaxClients); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if err := infraconfig.ValidatePositive("analysis.time_threshold", a.TimeThreshold); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("analysis.max_distance", a.MaxDistance); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("analysis.min_radius", a.MinRadius); err != nil {
		return err
	}
	return infraconfig.ValidateOrdered("analysis.max_radius", a.MinRadius, a.MaxRadius)
}

func (c *Config) validateCohorts() error {
	seen := make(map[string]struct{}, len(c.Cohorts))
	for i, cohort := range c.Cohorts {
		field := fmt.Sprintf("cohorts[%d]", i)
		if err := infraconfig.ValidateRequired(field+".id", cohort.ID); err != nil {
			return err
		}
		if err := infraconfig.ValidateRequired(field+".input", cohort.Input); err != nil {
			return err
		}
		if _, dup := seen[cohort.ID]; dup {
			return &infraconfig.ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate cohort id %q", cohort.ID),
			}
		}
		seen[cohort.ID] = struct{}{}
	}
	return nil
}
