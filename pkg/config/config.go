package config

import (
	"fmt"
	"time"

	"github.com/sqdshguy/wirebridge/pkg/logging"
)

// Config holds the CLI's settings. Zero fields mean "use the library
// default" for request behavior and are filled by Default for logging.
type Config struct {
	// Profile is the default emulation profile for requests and
	// connections. Empty uses the library default.
	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`

	// Proxy routes all traffic when set.
	Proxy string `yaml:"proxy,omitempty" json:"proxy,omitempty"`

	// Timeout is the default request timeout in seconds. Zero uses the
	// library default.
	Timeout int `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// QueueSize is the per-connection event queue depth. Zero uses the
	// library default.
	QueueSize int `yaml:"queueSize,omitempty" json:"queueSize,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`

	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat,omitempty" json:"logFormat,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate rejects values no layer can use.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", c.Timeout)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queueSize must not be negative, got %d", c.QueueSize)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logLevel %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logFormat %q", c.LogFormat)
	}
	return nil
}

// TimeoutDuration returns the configured timeout, or zero when unset.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// LoggingConfig translates the logging fields for pkg/logging.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  logging.ParseLevel(c.LogLevel),
		Format: logging.ParseFormat(c.LogFormat),
	}
}
