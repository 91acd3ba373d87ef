package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/logging"
	"github.com/sqdshguy/wirebridge/pkg/registry"
)

// Options configures session creation.
type Options struct {
	// ID names the session. Empty means a generated UUID.
	ID string

	// Profile selects the emulated identity. Empty and unknown names fall
	// back to the default profile.
	Profile emulation.Profile

	// Proxy routes the session's traffic when set.
	Proxy string
}

// Manager owns every registered session. It is safe for concurrent use.
type Manager struct {
	allocator *registry.Allocator
	sessions  *registry.Table[*Session]
	names     cmap.ConcurrentMap[string, registry.Handle]
	logger    *slog.Logger

	// createMu makes the lookup-then-build in Create atomic so two
	// concurrent creates of one ID produce a single session.
	createMu sync.Mutex
}

// NewManager returns an empty manager. The allocator is shared with the
// connection path so handles stay unique across both resource kinds. A nil
// logger disables logging.
func NewManager(allocator *registry.Allocator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		allocator: allocator,
		sessions:  registry.NewTable[*Session](),
		names:     cmap.New[registry.Handle](),
		logger:    logger,
	}
}

// Create returns the session named by opts.ID, building it on first use.
// If the ID already names a live session, that session is returned as-is:
// its handle, cookies and configuration are not touched, even when opts
// carries a different profile or proxy. A ConfigError is returned when a
// new client cannot be built; no registry state is left behind in that
// case.
func (m *Manager) Create(opts Options) (*Session, error) {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()

	if h, ok := m.names.Get(id); ok {
		if sess, ok := m.sessions.Get(h); ok {
			return sess, nil
		}
	}

	client, err := emulation.NewClient(emulation.ClientOptions{
		Profile:   opts.Profile,
		Proxy:     opts.Proxy,
		CookieJar: true,
	})
	if err != nil {
		return nil, err
	}

	sess := &Session{
		handle:    m.allocator.Next(),
		id:        id,
		client:    client,
		createdAt: time.Now(),
	}
	if err := m.sessions.Insert(sess.handle, sess); err != nil {
		return nil, err
	}
	m.names.Set(id, sess.handle)

	m.logger.Debug("session created",
		"session", id,
		"handle", sess.handle,
		"profile", client.Profile(),
	)
	return sess, nil
}

// Clear empties the session's cookie store while keeping its handle and
// client identity. Returns ErrSessionNotFound for unknown IDs.
func (m *Manager) Clear(id string) error {
	sess, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	sess.client.ClearCookies()
	m.logger.Debug("session cleared", "session", id, "handle", sess.handle)
	return nil
}

// Drop removes and releases the session. Dropping an unknown or already
// dropped ID is a silent no-op.
func (m *Manager) Drop(id string) {
	h, ok := m.names.Pop(id)
	if !ok {
		return
	}
	if sess, ok := m.sessions.Pop(h); ok {
		sess.client.CloseIdleConnections()
	}
	m.logger.Debug("session dropped", "session", id, "handle", h)
}

// Get resolves a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	h, ok := m.names.Get(id)
	if !ok {
		return nil, false
	}
	return m.sessions.Get(h)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Ephemeral builds a throwaway client with the same defaults a session
// client gets. It is never registered; the caller discards it after one
// request.
func (m *Manager) Ephemeral(profile emulation.Profile, proxy string) (*emulation.Client, error) {
	return emulation.NewClient(emulation.ClientOptions{
		Profile:   profile,
		Proxy:     proxy,
		CookieJar: true,
	})
}

// Close drops every session.
func (m *Manager) Close() {
	for _, id := range m.names.Keys() {
		m.Drop(id)
	}
}
