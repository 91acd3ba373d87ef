package session

import (
	"time"

	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/registry"
)

// Session is one reusable transport session. Its client, profile and proxy
// binding are fixed at creation; only the cookie store is ever mutated, and
// only through Manager.Clear.
type Session struct {
	handle    registry.Handle
	id        string
	client    *emulation.Client
	createdAt time.Time
}

// Handle returns the handle the session is registered under. It never
// changes for the session's lifetime, including across Clear.
func (s *Session) Handle() registry.Handle {
	return s.handle
}

// ID returns the session's string ID.
func (s *Session) ID() string {
	return s.id
}

// Client returns the session's transport client. The same instance is
// shared by every request presenting this session's ID.
func (s *Session) Client() *emulation.Client {
	return s.client
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}
