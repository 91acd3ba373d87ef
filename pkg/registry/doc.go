// Package registry provides opaque numeric handles for long-lived resources
// and a sharded concurrent table for resolving them.
//
// Handles are allocated from a single monotonic counter and are never reused,
// so a stale handle held by a caller can only ever miss; it can never resolve
// to a different resource. Tables are safe for concurrent use and removal is
// idempotent.
package registry
