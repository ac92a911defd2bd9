// Package gin provides the HTTP server shell for the session viewer: middleware,
// health endpoints and lifecycle management around a Gin engine.
package gin

import (
	"time"
)

// Default timeout values for HTTP server configuration.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultCORSMaxAge      = 12 * time.Hour
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the interface to bind; empty binds all interfaces.
	Host string

	// Port is the port number to listen on.
	Port int

	// Debug enables Gin debug mode.
	Debug bool

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout bounds response writes. Zero disables it, which the SSE stream needs.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration

	// ShutdownTimeout is the maximum duration to wait for active connections to close.
	ShutdownTimeout time.Duration

	// CORS holds the CORS configuration.
	CORS CORSConfig

	// ServiceName is reported by the health endpoint.
	ServiceName string

	// ServiceVersion is reported by the health endpoint.
	ServiceVersion string
}

// CORSConfig holds the CORS middleware configuration.
type CORSConfig struct {
	// Enabled determines whether CORS middleware is applied.
	Enabled bool

	// AllowedOrigins lists origins allowed to call the API; "*" allows any.
	AllowedOrigins []string

	// AllowedMethods is a list of methods the client is allowed to use.
	AllowedMethods []string

	// AllowedHeaders is a list of non-simple headers the client is allowed to use.
	AllowedHeaders []string

	// MaxAge indicates how long the results of a preflight request can be cached.
	MaxAge time.Duration
}

// SetDefaults applies default values to the config where values are not set.
func (c *Config) SetDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}

	c.CORS.SetDefaults()
}

// DefaultAllowedMethods returns the methods the viewer API serves.
func DefaultAllowedMethods() []string {
	return []string{"GET", "POST", "OPTIONS"}
}

// DefaultAllowedHeaders returns the default list of allowed HTTP headers.
func DefaultAllowedHeaders() []string {
	return []string{
		"Origin",
		"Content-Type",
		"Content-Length",
		"Accept",
		"Accept-Encoding",
		"Cache-Control",
		"Last-Event-ID",
		"X-Request-ID",
		"X-Requested-With",
	}
}

// SetDefaults applies default values to the CORS config where values are not set.
func (c *CORSConfig) SetDefaults() {
	if !c.Enabled && len(c.AllowedOrigins) == 0 {
		c.Enabled = true
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = DefaultAllowedMethods()
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = DefaultAllowedHeaders()
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}

// NewConfig creates a new Config with defaults applied.
func NewConfig(serviceName string, port int) *Config {
	cfg := &Config{
		Port:        port,
		ServiceName: serviceName,
		CORS:        CORSConfig{Enabled: true},
	}
	cfg.SetDefaults()
	return cfg
}
