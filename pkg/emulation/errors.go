package emulation

import "fmt"

// ConfigError reports invalid client or connection configuration. The
// operation that produced it has not touched any shared state.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// HandshakeError reports a WebSocket upgrade that did not complete. Status
// is the HTTP status of the rejected upgrade, or zero when the failure
// happened before any response arrived.
type HandshakeError struct {
	URL    string
	Status int
	Err    error
}

func (e *HandshakeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("websocket handshake with %s failed: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("websocket handshake with %s failed: %v", e.URL, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}
