package stream

import "errors"

// Common errors for the stream package.
var (
	// ErrConnectionClosed indicates the connection is closed.
	ErrConnectionClosed = errors.New("connection closed")
)
