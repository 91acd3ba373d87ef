package config

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvConfig    = "WIREBRIDGE_CONFIG"
	EnvProfile   = "WIREBRIDGE_PROFILE"
	EnvProxy     = "WIREBRIDGE_PROXY"
	EnvTimeout   = "WIREBRIDGE_TIMEOUT"
	EnvLogLevel  = "WIREBRIDGE_LOG_LEVEL"
	EnvLogFormat = "WIREBRIDGE_LOG_FORMAT"
)

// ApplyEnv overlays environment variables onto cfg. Only variables that
// are present and well-formed change anything.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvProfile); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil && timeout >= 0 {
			cfg.Timeout = timeout
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
}
