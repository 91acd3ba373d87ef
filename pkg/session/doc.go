// Package session manages reusable transport sessions.
//
// A session is an emulation client with a persistent cookie store, bound to
// a profile and optional proxy, registered under both a caller-chosen
// string ID and an opaque handle. Creating an existing ID returns the same
// session unchanged; clearing resets its cookies in place; dropping is
// idempotent. Requests without a session ID use a throwaway client that is
// never registered.
package session
