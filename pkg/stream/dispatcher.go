package stream

import (
	"log/slog"

	"github.com/sqdshguy/wirebridge/pkg/logging"
	"github.com/sqdshguy/wirebridge/pkg/registry"
)

// Dispatcher drains one connection's event queue and hands each event to
// the consumer callbacks, one invocation at a time in arrival order. It is
// the sole authority on Close delivery: the first Close suppresses all
// later events, and if the queue ends without one, the dispatcher
// synthesizes it. After the terminal Close it runs the cleanup hook and
// shuts the transport down, which is the sole point of connection teardown.
type Dispatcher struct {
	conn      *Conn
	queue     <-chan Event
	callbacks Callbacks
	credits   *CreditPool
	cleanup   func(registry.Handle)
	logger    *slog.Logger
}

// NewDispatcher returns a dispatcher draining queue into callbacks. cleanup
// runs exactly once, after the terminal Close delivery; nil is allowed. A
// nil logger disables logging.
func NewDispatcher(conn *Conn, queue <-chan Event, callbacks Callbacks, credits *CreditPool, cleanup func(registry.Handle), logger *slog.Logger) *Dispatcher {
	if credits == nil {
		credits = NewCreditPool(QueueCapacity)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Dispatcher{
		conn:      conn,
		queue:     queue,
		callbacks: callbacks,
		credits:   credits,
		cleanup:   cleanup,
		logger:    logger,
	}
}

// Run delivers events until the queue is closed, then tears the connection
// down. It must run on its own goroutine.
func (d *Dispatcher) Run() {
	handle := d.conn.Handle()

	closeEmitted := false
	for evt := range d.queue {
		if closeEmitted {
			// Nothing may follow the terminal Close.
			continue
		}
		d.deliver(evt)
		if evt.Kind == EventClose {
			closeEmitted = true
		}
	}

	if !closeEmitted {
		// The pump went away without an explicit Close; the consumer still
		// gets exactly one.
		d.deliver(Event{Kind: EventClose})
	}

	if d.cleanup != nil {
		d.cleanup(handle)
	}
	d.conn.Shutdown()
	d.logger.Debug("dispatcher finished", "handle", handle)
}

// deliver invokes the callback for one event under a held credit. A
// panicking callback is logged and does not abandon the loop or leak the
// credit.
func (d *Dispatcher) deliver(evt Event) {
	d.credits.acquire()
	defer d.credits.release()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("consumer callback panicked",
				"handle", d.conn.Handle(),
				"kind", evt.Kind,
				"panic", r,
			)
		}
	}()

	switch evt.Kind {
	case EventText, EventBinary:
		if d.callbacks.OnMessage != nil {
			d.callbacks.OnMessage(evt.Kind, evt.Data)
		}
	case EventError:
		if d.callbacks.OnError != nil {
			d.callbacks.OnError(evt.Err)
		}
	case EventClose:
		if d.callbacks.OnClose != nil {
			d.callbacks.OnClose()
		}
	}
}

// Spawn wires a pump/dispatcher pair for conn and starts both goroutines.
// queueSize values below one use QueueCapacity. cleanup runs once after the
// terminal Close has been delivered.
func Spawn(conn *Conn, callbacks Callbacks, credits *CreditPool, queueSize int, cleanup func(registry.Handle), logger *slog.Logger) {
	if queueSize < 1 {
		queueSize = QueueCapacity
	}
	queue := make(chan Event, queueSize)

	pump := NewPump(conn, queue, logger)
	dispatcher := NewDispatcher(conn, queue, callbacks, credits, cleanup, logger)

	go pump.Run()
	go dispatcher.Run()
}
