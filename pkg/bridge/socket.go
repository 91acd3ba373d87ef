package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/registry"
	"github.com/sqdshguy/wirebridge/pkg/stream"
)

// ConnectOptions configures one WebSocket connection.
type ConnectOptions struct {
	// URL is required; ws, wss, http and https forms are accepted.
	URL string

	// Profile selects the emulated identity for the upgrade.
	Profile string

	// Headers are applied to the upgrade request in order; duplicates are
	// preserved.
	Headers []emulation.Header

	// Proxy routes the connection when set.
	Proxy string

	// HandshakeTimeout bounds the upgrade. Zero uses the default.
	HandshakeTimeout time.Duration

	// Callbacks receive the connection's events. OnMessage is required.
	Callbacks stream.Callbacks
}

// Connect dials the URL, registers the established connection, and starts
// its pump/dispatcher pair. The handle is allocated only after a
// successful handshake; a failed connect leaves no registry state.
func (b *Bridge) Connect(ctx context.Context, opts ConnectOptions) (registry.Handle, error) {
	if opts.Callbacks.OnMessage == nil {
		return 0, ErrMissingOnMessage
	}

	transport, err := b.dial(ctx, emulation.SocketOptions{
		URL:              opts.URL,
		Profile:          emulation.Profile(opts.Profile),
		Headers:          opts.Headers,
		Proxy:            opts.Proxy,
		HandshakeTimeout: opts.HandshakeTimeout,
	})
	if err != nil {
		b.metrics.HandshakeFailed()
		return 0, err
	}

	handle := b.allocator.Next()
	conn := stream.NewConn(handle, transport, b.logger)
	if err := b.conns.Insert(handle, conn); err != nil {
		transport.Close()
		return 0, err
	}

	stream.Spawn(conn, b.countingCallbacks(opts.Callbacks), b.credits, b.queueSize, b.removeConnection, b.logger)

	b.metrics.ConnectionOpened()
	b.metrics.SetActiveConnections(b.conns.Len())
	b.logger.Debug("connection opened", "handle", handle, "url", opts.URL)
	return handle, nil
}

// countingCallbacks wraps the consumer's callbacks so every delivery is
// recorded. The wrappers add no synchronization; the dispatcher already
// serializes invocations.
func (b *Bridge) countingCallbacks(inner stream.Callbacks) stream.Callbacks {
	return stream.Callbacks{
		OnMessage: func(kind stream.EventKind, data []byte) {
			b.metrics.EventDelivered(kind.String())
			inner.OnMessage(kind, data)
		},
		OnError: func(err error) {
			b.metrics.EventDelivered(stream.EventError.String())
			if inner.OnError != nil {
				inner.OnError(err)
			}
		},
		OnClose: func() {
			b.metrics.EventDelivered(stream.EventClose.String())
			if inner.OnClose != nil {
				inner.OnClose()
			}
		},
	}
}

// removeConnection is the dispatcher's cleanup hook, invoked once after
// the terminal Close delivery.
func (b *Bridge) removeConnection(h registry.Handle) {
	b.conns.Remove(h)
	b.metrics.SetActiveConnections(b.conns.Len())
	b.logger.Debug("connection removed", "handle", h)
}

// Send writes one data frame on the connection. It fails with
// ErrConnectionNotFound when the handle is stale and propagates transport
// write errors otherwise.
func (b *Bridge) Send(handle registry.Handle, kind stream.FrameKind, data []byte) error {
	conn, ok := b.conns.Get(handle)
	if !ok {
		return ErrConnectionNotFound
	}
	if err := conn.Send(kind, data); err != nil {
		return err
	}
	b.metrics.FrameSent(kind.String())
	return nil
}

// SendText sends a text frame.
func (b *Bridge) SendText(handle registry.Handle, text string) error {
	return b.Send(handle, stream.FrameText, []byte(text))
}

// SendBinary sends a binary frame.
func (b *Bridge) SendBinary(handle registry.Handle, data []byte) error {
	return b.Send(handle, stream.FrameBinary, data)
}

// Close sends a close frame and unconditionally deregisters the handle, so
// the caller never sees a leaked entry even if the connection is already
// tearing itself down. In-flight inbound events still drain to the
// callbacks, ending with the single terminal Close. A stale handle fails
// with ErrConnectionNotFound; closing a connection that is already closing
// succeeds.
func (b *Bridge) Close(handle registry.Handle) error {
	conn, ok := b.conns.Get(handle)
	if !ok {
		return ErrConnectionNotFound
	}

	err := conn.Close()
	b.conns.Remove(handle)
	b.metrics.SetActiveConnections(b.conns.Len())

	if err != nil && !errors.Is(err, stream.ErrConnectionClosed) {
		return err
	}
	return nil
}
