// Package cli implements the wirebridge command-line interface.
//
// Commands are built on cobra and drive pkg/bridge: request for HTTP
// exchanges, ws connect/send/listen for WebSocket sessions, profiles for
// the supported identities, and version. Global flags and the YAML config
// file resolve in the root command before any subcommand runs.
package cli
