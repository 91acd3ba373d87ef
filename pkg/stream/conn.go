package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sqdshguy/wirebridge/pkg/logging"
	"github.com/sqdshguy/wirebridge/pkg/registry"
	"github.com/sqdshguy/wirebridge/pkg/util"
)

// closeGrace bounds how long a locally closed connection may keep draining
// before the transport is forced down. Covers peers that never answer the
// close frame.
const closeGrace = 5 * time.Second

// Conn is the outbound half and lifecycle state of a live socket
// connection. The inbound half belongs exclusively to the connection's
// pump. Conn is safe for concurrent use; writes to the wire are serialized
// through its internal lock.
type Conn struct {
	handle    registry.Handle
	transport FrameConn
	logger    *slog.Logger

	writeMu      sync.Mutex
	closed       atomic.Bool
	shutdownOnce sync.Once
}

// NewConn wraps an established frame transport. A nil logger disables
// logging.
func NewConn(handle registry.Handle, transport FrameConn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Conn{
		handle:    handle,
		transport: transport,
		logger:    logger,
	}
}

// Handle returns the handle this connection is registered under.
func (c *Conn) Handle() registry.Handle {
	return c.handle
}

// IsClosed reports whether the connection has been closed locally or torn
// down.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Send writes one data frame to the wire. Only one frame is in flight per
// connection at a time; concurrent senders queue on the internal lock.
func (c *Conn) Send(kind FrameKind, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed.Load() {
		return ErrConnectionClosed
	}
	if err := c.transport.WriteFrame(kind, data); err != nil {
		return err
	}
	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug("frame sent",
			"handle", c.handle,
			"kind", kind.String(),
			"size", len(data),
			"preview", util.TruncatePayload(data, 0))
	}
	return nil
}

// SendText sends a text frame.
func (c *Conn) SendText(text string) error {
	return c.Send(FrameText, []byte(text))
}

// SendBinary sends a binary frame.
func (c *Conn) SendBinary(data []byte) error {
	return c.Send(FrameBinary, data)
}

// Close initiates the closing handshake: it marks the connection closed,
// sends a close frame, and leaves the pump running so in-flight inbound
// events still reach the consumer. The close-frame write is best effort; a
// connection that is already dying cannot deliver it anyway.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	err := c.transport.WriteClose()
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Debug("close frame write failed", "handle", c.handle, "error", err)
	}

	// If the peer never answers, force the transport down so the pump can
	// finish draining.
	time.AfterFunc(closeGrace, c.Shutdown)

	return nil
}

// Shutdown tears the transport down without a closing handshake. It is
// idempotent and is called by the dispatcher after the terminal Close has
// been delivered.
func (c *Conn) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.closed.Store(true)
		if err := c.transport.Close(); err != nil {
			c.logger.Debug("transport close failed", "handle", c.handle, "error", err)
		}
	})
}
