package bridge

import (
	"context"
	"log/slog"

	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/logging"
	"github.com/sqdshguy/wirebridge/pkg/metrics"
	"github.com/sqdshguy/wirebridge/pkg/registry"
	"github.com/sqdshguy/wirebridge/pkg/session"
	"github.com/sqdshguy/wirebridge/pkg/stream"
)

// DialFunc performs a WebSocket handshake and returns the established
// frame transport. It exists as a seam for tests and alternative
// transports; the default is emulation.DialSocket.
type DialFunc func(ctx context.Context, opts emulation.SocketOptions) (stream.FrameConn, error)

// Config configures a Bridge. The zero value is usable.
type Config struct {
	// Logger receives bridge activity. Nil disables logging.
	Logger *slog.Logger

	// QueueSize is the per-connection event queue depth and the size of
	// the credit pool shared by all connections. Values below one use
	// stream.QueueCapacity.
	QueueSize int

	// Metrics is the registry the bridge's instruments are created on.
	// Nil keeps them on a private registry, reachable via Metrics().
	Metrics *metrics.Registry

	// Dial overrides the WebSocket dialer.
	Dial DialFunc
}

// Bridge owns all live sessions and connections and exposes the
// consumer-facing operations. It is safe for concurrent use.
type Bridge struct {
	logger    *slog.Logger
	queueSize int

	allocator *registry.Allocator
	sessions  *session.Manager
	conns     *registry.Table[*stream.Conn]
	credits   *stream.CreditPool
	metrics   *metrics.Bundle
	dial      DialFunc
}

// New constructs a Bridge. One allocator feeds both the session and the
// connection paths, so a handle is never reused across resource kinds.
func New(cfg Config) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = stream.QueueCapacity
	}

	allocator := &registry.Allocator{}
	b := &Bridge{
		logger:    logger,
		queueSize: queueSize,
		allocator: allocator,
		sessions:  session.NewManager(allocator, logger),
		conns:     registry.NewTable[*stream.Conn](),
		credits:   stream.NewCreditPool(int64(queueSize)),
		metrics:   metrics.NewBundle(cfg.Metrics),
		dial:      cfg.Dial,
	}
	if b.dial == nil {
		b.dial = func(ctx context.Context, opts emulation.SocketOptions) (stream.FrameConn, error) {
			return emulation.DialSocket(ctx, opts)
		}
	}
	return b
}

// ActiveConnections returns the number of live socket connections.
func (b *Bridge) ActiveConnections() int {
	return b.conns.Len()
}

// ActiveSessions returns the number of registered sessions.
func (b *Bridge) ActiveSessions() int {
	return b.sessions.Len()
}

// Metrics returns the bridge's instrument bundle. Hosts that want a
// /metrics endpoint serve Metrics().Registry().Handler().
func (b *Bridge) Metrics() *metrics.Bundle {
	return b.metrics
}

// Shutdown closes every live connection and drops every session. Event
// delivery for closing connections drains on their own goroutines.
func (b *Bridge) Shutdown() {
	b.conns.Range(func(h registry.Handle, conn *stream.Conn) bool {
		if err := conn.Close(); err == nil {
			b.logger.Debug("connection closed on shutdown", "handle", h)
		}
		b.conns.Remove(h)
		return true
	})
	b.sessions.Close()

	b.metrics.SetActiveConnections(b.conns.Len())
	b.metrics.SetActiveSessions(b.sessions.Len())
}
