package bridge

import (
	"time"

	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/registry"
	"github.com/sqdshguy/wirebridge/pkg/session"
)

// SessionOptions configures CreateSession.
type SessionOptions struct {
	// ID names the session. Empty means a generated UUID.
	ID string

	// Profile selects the emulated identity for all of the session's
	// requests. Empty and unknown names fall back to the default profile.
	Profile string

	// Proxy routes the session's traffic when set.
	Proxy string
}

// SessionInfo describes a registered session.
type SessionInfo struct {
	ID        string            `json:"id"`
	Handle    registry.Handle   `json:"handle"`
	Profile   emulation.Profile `json:"profile"`
	Proxy     string            `json:"proxy,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// CreateSession returns the session named by opts.ID, building and
// registering it on first use. Calling it again with the same ID returns
// the same handle and does not touch the session's cookies or
// configuration. A configuration error (bad proxy) leaves no session
// behind.
func (b *Bridge) CreateSession(opts SessionOptions) (*SessionInfo, error) {
	sess, err := b.sessions.Create(session.Options{
		ID:      opts.ID,
		Profile: emulation.Profile(opts.Profile),
		Proxy:   opts.Proxy,
	})
	if err != nil {
		return nil, err
	}
	b.metrics.SetActiveSessions(b.sessions.Len())
	return sessionInfo(sess), nil
}

// GetSession describes a registered session, if the ID names one.
func (b *Bridge) GetSession(id string) (*SessionInfo, bool) {
	sess, ok := b.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return sessionInfo(sess), true
}

// ClearSession empties the session's cookie store while keeping its handle
// and client identity. Returns ErrSessionNotFound for unknown IDs.
func (b *Bridge) ClearSession(id string) error {
	return b.sessions.Clear(id)
}

// DropSession removes and releases the session. Dropping an unknown or
// already dropped ID is a silent no-op; DropSession never fails.
func (b *Bridge) DropSession(id string) {
	b.sessions.Drop(id)
	b.metrics.SetActiveSessions(b.sessions.Len())
}

func sessionInfo(sess *session.Session) *SessionInfo {
	return &SessionInfo{
		ID:        sess.ID(),
		Handle:    sess.Handle(),
		Profile:   sess.Client().Profile(),
		Proxy:     sess.Client().Proxy(),
		CreatedAt: sess.CreatedAt(),
	}
}
