package registry

import "errors"

// Common errors for the registry package.
var (
	// ErrDuplicateHandle indicates an insert with a handle that is already live.
	ErrDuplicateHandle = errors.New("handle already registered")
)
