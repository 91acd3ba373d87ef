package session

import "errors"

// Common errors for the session package.
var (
	// ErrSessionNotFound indicates the session ID names no live session.
	ErrSessionNotFound = errors.New("session not found")
)
