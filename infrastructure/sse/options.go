package sse

import "time"

// Default configuration values.
const (
	DefaultEventBufferSize   = 1024
	DefaultClientBufferSize  = 256
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultMaxClients        = 64
)

// Config holds broker configuration.
// Viewpoint events arrive at gesture rate, so buffers are sized for bursts rather than clients.
type Config struct {
	// EventBufferSize is the size of the main event channel.
	EventBufferSize int
	// ClientBufferSize is the default buffer size per client.
	ClientBufferSize int
	// HeartbeatInterval is how often to send heartbeat comments.
	HeartbeatInterval time.Duration
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxClients is the maximum number of concurrent clients (0 = unlimited).
	MaxClients int
	// Enabled controls whether SSE is enabled.
	Enabled bool
}

// DefaultConfig returns a Config with the default sizes and intervals.
func DefaultConfig() Config {
	return Config{
		EventBufferSize:   DefaultEventBufferSize,
		ClientBufferSize:  DefaultClientBufferSize,
		HeartbeatInterval: DefaultHeartbeatInterval,
		ShutdownTimeout:   DefaultShutdownTimeout,
		MaxClients:        DefaultMaxClients,
		Enabled:           true,
	}
}

// BrokerOption configures a broker.
type BrokerOption func(*broker)

// WithHeartbeatInterval sets the heartbeat interval.
func WithHeartbeatInterval(interval time.Duration) BrokerOption {
	return func(b *broker) {
		if interval > 0 {
			b.heartbeatInterval = interval
		}
	}
}

// WithShutdownTimeout sets the shutdown timeout.
func WithShutdownTimeout(timeout time.Duration) BrokerOption {
	return func(b *broker) {
		if timeout > 0 {
			b.shutdownTimeout = timeout
		}
	}
}

// WithMaxClients sets the maximum number of concurrent clients.
func WithMaxClients(maxClients int) BrokerOption {
	return func(b *broker) {
		b.maxClients = maxClients
	}
}

// WithConfig applies a full Config to the broker.
func WithConfig(cfg Config) BrokerOption {
	return func(b *broker) {
		if cfg.EventBufferSize > 0 {
			b.eventBufferSize = cfg.EventBufferSize
		}
		if cfg.ClientBufferSize > 0 {
			b.clientBufferSize = cfg.ClientBufferSize
		}
		if cfg.HeartbeatInterval > 0 {
			b.heartbeatInterval = cfg.HeartbeatInterval
		}
		if cfg.ShutdownTimeout > 0 {
			b.shutdownTimeout = cfg.ShutdownTimeout
		}
		b.maxClients = cfg.MaxClients
	}
}

// ClientOption configures a client subscription.
type ClientOption func(*ClientOptions)

// WithTypeFilter passes only events whose type is one of types. Repeated
// calls narrow the set to their intersection.
func WithTypeFilter(types ...string) ClientOption {
	return func(opts *ClientOptions) {
		allowed := make(map[string]struct{}, len(types))
		for _, t := range types {
			if _, ok := opts.Types[t]; opts.Types == nil || ok {
				allowed[t] = struct{}{}
			}
		}
		opts.Types = allowed
	}
}

// WithViewFilter routes only the named pane's view-scoped events to the client.
// Events without a view (cohort:loaded) always pass.
func WithViewFilter(view string) ClientOption {
	return func(opts *ClientOptions) {
		opts.View = view
	}
}
