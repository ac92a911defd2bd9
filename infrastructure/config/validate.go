package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired checks if a string field is not empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort checks if a port number is valid.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidatePositive checks that a numeric setting is strictly greater than zero.
func ValidatePositive[N ~int | ~int64 | ~float64](field string, value N) error {
	if value <= 0 {
		return &ValidationError{Field: field, Message: "must be greater than zero"}
	}
	return nil
}

// ValidateOrdered checks lower <= upper for a pair of bounds.
func ValidateOrdered(field string, lower, upper float64) error {
	if lower > upper {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("lower bound %g exceeds upper bound %g", lower, upper),
		}
	}
	return nil
}

// ValidateLogLevel checks if a log level is valid.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateLogFormat checks if a log format is valid.
func ValidateLogFormat(format string) error {
	switch format {
	case "json", "console":
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}

// Validate validates a ServerConfig.
func (c *ServerConfig) Validate() error {
	if c.Port != 0 {
		if err := ValidatePort("server.port", c.Port); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates a LoggingConfig.
func (c *LoggingConfig) Validate() error {
	if c.Level != "" {
		if err := ValidateLogLevel(c.Level); err != nil {
			return err
		}
	}
	if c.Format != "" {
		if err := ValidateLogFormat(c.Format); err != nil {
			return err
		}
	}
	return nil
}
