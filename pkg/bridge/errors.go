package bridge

import (
	"errors"

	"github.com/sqdshguy/wirebridge/pkg/session"
)

// Common errors for the bridge package.
var (
	// ErrConnectionNotFound indicates the handle names no live connection.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrMissingOnMessage indicates connect options without the required
	// message callback.
	ErrMissingOnMessage = errors.New("onMessage callback is required")
)

// ErrSessionNotFound mirrors the session package's sentinel so callers can
// match it without importing that package.
var ErrSessionNotFound = session.ErrSessionNotFound
