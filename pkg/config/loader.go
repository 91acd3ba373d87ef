package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Load reads a Config from a YAML file. Fields the file does not set keep
// their defaults. Returns wrapped sentinel errors for the common failure
// cases.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return Parse(data)
}

// Parse decodes YAML bytes into a Config on top of the defaults. Unknown
// keys are rejected so typos surface instead of silently doing nothing.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the config
// file, then environment overrides. path may be empty, in which case the
// WIREBRIDGE_CONFIG variable is consulted; with neither set, no file is
// read.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}
