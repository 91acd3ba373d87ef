// Package config loads the wirebridge CLI configuration.
//
// Settings come from three layers, weakest first: built-in defaults, a YAML
// config file, and WIREBRIDGE_* environment variables. Resolve applies all
// three; Load reads just the file.
package config
