package stream

import (
	"context"
	"log/slog"

	"github.com/sqdshguy/wirebridge/pkg/logging"
	"github.com/sqdshguy/wirebridge/pkg/util"
)

// Pump drains one connection's inbound frames into its event queue. It is
// the queue's only producer: every exit path ends with exactly one Close
// event followed by closing the channel. Pushes block when the queue is
// full, which slows the network read loop to the consumer's pace.
type Pump struct {
	conn   *Conn
	queue  chan<- Event
	logger *slog.Logger
}

// NewPump returns a pump feeding queue from conn's transport. A nil logger
// disables logging.
func NewPump(conn *Conn, queue chan<- Event, logger *slog.Logger) *Pump {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pump{
		conn:   conn,
		queue:  queue,
		logger: logger,
	}
}

// Run reads frames until the stream ends. It is the connection's sole
// reader and must run on its own goroutine.
func (p *Pump) Run() {
	closeCode := 0
	defer func() {
		p.queue <- Event{Kind: EventClose, Code: closeCode}
		close(p.queue)
		p.logger.Debug("pump finished", "handle", p.conn.Handle(), "code", closeCode)
	}()

	for {
		frame, err := p.conn.transport.ReadFrame()
		if err != nil {
			if p.conn.IsClosed() {
				// The failed read is our own teardown, not a transport
				// fault; end the stream silently.
				return
			}
			p.logger.Debug("read failed", "handle", p.conn.Handle(), "error", err)
			p.queue <- Event{Kind: EventError, Err: err}
			return
		}

		switch frame.Kind {
		case FrameText:
			p.logFrame(frame)
			p.queue <- Event{Kind: EventText, Data: frame.Data}
		case FrameBinary:
			p.logFrame(frame)
			p.queue <- Event{Kind: EventBinary, Data: frame.Data}
		case FrameClose:
			closeCode = frame.Code
			return
		}
	}
}

// logFrame previews an inbound payload at debug level. The preview is
// built only when debug is enabled; payloads can be large.
func (p *Pump) logFrame(frame Frame) {
	if !p.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	p.logger.Debug("frame received",
		"handle", p.conn.Handle(),
		"kind", frame.Kind.String(),
		"size", len(frame.Data),
		"preview", util.TruncatePayload(frame.Data, 0))
}
