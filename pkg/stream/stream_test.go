package stream

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sqdshguy/wirebridge/pkg/registry"
)

// fakeResult scripts one ReadFrame outcome.
type fakeResult struct {
	frame Frame
	err   error
}

// fakeTransport scripts inbound frames and records outbound writes.
type fakeTransport struct {
	inbound chan fakeResult
	reads   atomic.Int64

	mu         sync.Mutex
	writes     []Frame
	closeSent  int
	inFlight   atomic.Int32
	overlapped atomic.Bool

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeTransport(buf int) *fakeTransport {
	return &fakeTransport{
		inbound: make(chan fakeResult, buf),
		closed:  make(chan struct{}),
	}
}

func (f *fakeTransport) push(frame Frame) {
	f.inbound <- fakeResult{frame: frame}
}

func (f *fakeTransport) pushErr(err error) {
	f.inbound <- fakeResult{err: err}
}

// end simulates the stream ending without a close frame.
func (f *fakeTransport) end() {
	close(f.inbound)
}

func (f *fakeTransport) ReadFrame() (Frame, error) {
	select {
	case r, ok := <-f.inbound:
		if !ok {
			return Frame{}, io.ErrUnexpectedEOF
		}
		f.reads.Add(1)
		return r.frame, r.err
	case <-f.closed:
		return Frame{}, net.ErrClosed
	}
}

func (f *fakeTransport) WriteFrame(kind FrameKind, data []byte) error {
	if f.inFlight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	defer f.inFlight.Add(-1)

	select {
	case <-f.closed:
		return net.ErrClosed
	default:
	}

	f.mu.Lock()
	f.writes = append(f.writes, Frame{Kind: kind, Data: data})
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) WriteClose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeSent++
	return nil
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// recorder collects callback invocations in order.
type recorder struct {
	mu       sync.Mutex
	messages []string
	errs     []error
	closes   int
	sequence []string
	done     chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnMessage: func(kind EventKind, data []byte) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.messages = append(r.messages, string(data))
			r.sequence = append(r.sequence, fmt.Sprintf("%s:%s", kind, data))
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
			r.sequence = append(r.sequence, "error")
		},
		OnClose: func() {
			r.mu.Lock()
			r.closes++
			first := r.closes == 1
			r.sequence = append(r.sequence, "close")
			r.mu.Unlock()
			if first {
				close(r.done)
			}
		},
	}
}

func (r *recorder) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for close delivery")
	}
}

func (r *recorder) snapshot() (messages []string, errs []error, closes int, sequence []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...),
		append([]error(nil), r.errs...),
		r.closes,
		append([]string(nil), r.sequence...)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDeliveryOrderMatchesArrival(t *testing.T) {
	transport := newFakeTransport(8)
	conn := NewConn(1, transport, nil)
	rec := newRecorder()

	cleanups := atomic.Int32{}
	Spawn(conn, rec.callbacks(), nil, 0, func(registry.Handle) { cleanups.Add(1) }, nil)

	transport.push(Frame{Kind: FrameText, Data: []byte("A")})
	transport.push(Frame{Kind: FrameBinary, Data: []byte("B")})
	transport.push(Frame{Kind: FrameText, Data: []byte("C")})
	transport.push(Frame{Kind: FrameClose, Code: 1000})

	rec.waitClosed(t)
	waitFor(t, func() bool { return cleanups.Load() == 1 }, "cleanup never ran")

	_, errs, closes, sequence := rec.snapshot()
	want := []string{"text:A", "binary:B", "text:C", "close"}
	if len(sequence) != len(want) {
		t.Fatalf("sequence = %v, want %v", sequence, want)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Errorf("sequence[%d] = %q, want %q", i, sequence[i], want[i])
		}
	}
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestReadErrorDeliversErrorThenClose(t *testing.T) {
	transport := newFakeTransport(4)
	conn := NewConn(2, transport, nil)
	rec := newRecorder()

	Spawn(conn, rec.callbacks(), nil, 0, nil, nil)

	boom := errors.New("connection reset")
	transport.push(Frame{Kind: FrameText, Data: []byte("hi")})
	transport.pushErr(boom)

	rec.waitClosed(t)

	_, errs, closes, sequence := rec.snapshot()
	want := []string{"text:hi", "error", "close"}
	if len(sequence) != len(want) {
		t.Fatalf("sequence = %v, want %v", sequence, want)
	}
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("errs = %v, want [%v]", errs, boom)
	}
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestAbruptEndDeliversErrorThenClose(t *testing.T) {
	transport := newFakeTransport(4)
	conn := NewConn(3, transport, nil)
	rec := newRecorder()

	Spawn(conn, rec.callbacks(), nil, 0, nil, nil)

	transport.end()
	rec.waitClosed(t)

	_, errs, closes, _ := rec.snapshot()
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one entry", errs)
	}
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestDispatcherSynthesizesCloseOnBareChannelEnd(t *testing.T) {
	transport := newFakeTransport(1)
	conn := NewConn(4, transport, nil)
	rec := newRecorder()

	queue := make(chan Event, 4)
	queue <- Event{Kind: EventText, Data: []byte("x")}
	queue <- Event{Kind: EventText, Data: []byte("y")}
	close(queue)

	cleanups := atomic.Int32{}
	d := NewDispatcher(conn, queue, rec.callbacks(), nil, func(registry.Handle) { cleanups.Add(1) }, nil)
	go d.Run()

	rec.waitClosed(t)
	waitFor(t, func() bool { return cleanups.Load() == 1 }, "cleanup never ran")

	messages, _, closes, _ := rec.snapshot()
	if len(messages) != 2 {
		t.Errorf("messages = %v, want 2 entries", messages)
	}
	if closes != 1 {
		t.Errorf("closes = %d, want 1 synthesized close", closes)
	}
}

func TestDispatcherSuppressesEventsAfterClose(t *testing.T) {
	transport := newFakeTransport(1)
	conn := NewConn(5, transport, nil)
	rec := newRecorder()

	queue := make(chan Event, 8)
	queue <- Event{Kind: EventText, Data: []byte("before")}
	queue <- Event{Kind: EventClose}
	queue <- Event{Kind: EventClose}
	queue <- Event{Kind: EventText, Data: []byte("after")}
	close(queue)

	done := make(chan struct{})
	d := NewDispatcher(conn, queue, rec.callbacks(), nil, func(registry.Handle) { close(done) }, nil)
	go d.Run()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher never finished")
	}

	messages, _, closes, sequence := rec.snapshot()
	if closes != 1 {
		t.Errorf("closes = %d, want exactly 1", closes)
	}
	if len(messages) != 1 || messages[0] != "before" {
		t.Errorf("messages = %v, want [before]", messages)
	}
	if sequence[len(sequence)-1] != "close" {
		t.Errorf("close is not the final delivery: %v", sequence)
	}
}

func TestCallbackPanicDoesNotAbandonLoop(t *testing.T) {
	transport := newFakeTransport(4)
	conn := NewConn(6, transport, nil)

	var calls atomic.Int32
	closed := make(chan struct{})
	cbs := Callbacks{
		OnMessage: func(kind EventKind, data []byte) {
			if calls.Add(1) == 1 {
				panic("consumer bug")
			}
		},
		OnClose: func() { close(closed) },
	}

	Spawn(conn, cbs, nil, 0, nil, nil)

	transport.push(Frame{Kind: FrameText, Data: []byte("first")})
	transport.push(Frame{Kind: FrameText, Data: []byte("second")})
	transport.push(Frame{Kind: FrameClose, Code: 1000})

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close never delivered after callback panic")
	}
	if calls.Load() != 2 {
		t.Errorf("OnMessage calls = %d, want 2", calls.Load())
	}
}

func TestBlockedConsumerBoundsBuffering(t *testing.T) {
	const total = 200

	transport := newFakeTransport(total + 8)
	conn := NewConn(7, transport, nil)

	gate := make(chan struct{})
	var started atomic.Int32
	rec := newRecorder()
	base := rec.callbacks()
	cbs := Callbacks{
		OnMessage: func(kind EventKind, data []byte) {
			started.Add(1)
			<-gate
			base.OnMessage(kind, data)
		},
		OnClose: base.OnClose,
	}

	Spawn(conn, cbs, nil, 0, nil, nil)

	for i := 0; i < total; i++ {
		transport.push(Frame{Kind: FrameText, Data: []byte{byte(i)}})
	}
	transport.push(Frame{Kind: FrameClose, Code: 1000})

	// With the consumer held, the pipeline may hold at most one in-flight
	// callback, a full queue, and one frame stuck in the pump's push.
	waitFor(t, func() bool { return started.Load() == 1 }, "first callback never started")
	time.Sleep(200 * time.Millisecond)

	if got := started.Load(); got != 1 {
		t.Errorf("callbacks started under blocked consumer = %d, want 1", got)
	}
	if consumed := transport.reads.Load(); consumed > QueueCapacity+2 {
		t.Errorf("pump consumed %d frames under blocked consumer, want <= %d", consumed, QueueCapacity+2)
	}

	close(gate)
	rec.waitClosed(t)

	messages, _, closes, _ := rec.snapshot()
	if len(messages) != total {
		t.Fatalf("delivered %d messages, want %d", len(messages), total)
	}
	for i := 0; i < total; i++ {
		if messages[i] != string([]byte{byte(i)}) {
			t.Fatalf("message %d out of order", i)
		}
	}
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestCreditPoolSharedAcrossConnections(t *testing.T) {
	pool := NewCreditPool(2)
	gate := make(chan struct{})
	var started atomic.Int32
	var closedCount atomic.Int32

	for i := 0; i < 3; i++ {
		transport := newFakeTransport(4)
		conn := NewConn(registry.Handle(10+i), transport, nil)
		cbs := Callbacks{
			OnMessage: func(kind EventKind, data []byte) {
				started.Add(1)
				<-gate
			},
			OnClose: func() { closedCount.Add(1) },
		}
		Spawn(conn, cbs, pool, 4, nil, nil)
		transport.push(Frame{Kind: FrameText, Data: []byte("m")})
		transport.push(Frame{Kind: FrameClose, Code: 1000})
	}

	waitFor(t, func() bool { return started.Load() == 2 }, "two callbacks should hold the pool")
	time.Sleep(100 * time.Millisecond)
	if got := started.Load(); got != 2 {
		t.Errorf("callbacks in flight = %d, want 2 with a 2-credit pool", got)
	}

	close(gate)
	waitFor(t, func() bool { return closedCount.Load() == 3 }, "all connections should close")
	if started.Load() != 3 {
		t.Errorf("total callbacks = %d, want 3", started.Load())
	}
}

func TestConnSendAfterCloseFails(t *testing.T) {
	transport := newFakeTransport(1)
	conn := NewConn(20, transport, nil)

	if err := conn.SendText("ok"); err != nil {
		t.Fatalf("send on open connection failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := conn.SendText("late"); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("send after close = %v, want ErrConnectionClosed", err)
	}
	if err := conn.Close(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("second close = %v, want ErrConnectionClosed", err)
	}

	transport.mu.Lock()
	closeSent := transport.closeSent
	transport.mu.Unlock()
	if closeSent != 1 {
		t.Errorf("close frames sent = %d, want 1", closeSent)
	}
}

func TestConnSerializesWriters(t *testing.T) {
	transport := newFakeTransport(1)
	conn := NewConn(21, transport, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := conn.SendText("x"); err != nil {
					t.Errorf("send failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if transport.overlapped.Load() {
		t.Error("two writers reached the transport concurrently")
	}
	if got := transport.writeCount(); got != 16*50 {
		t.Errorf("writes = %d, want %d", got, 16*50)
	}
}

func TestLocalCloseEndsStreamWithoutError(t *testing.T) {
	transport := newFakeTransport(4)
	conn := NewConn(22, transport, nil)
	rec := newRecorder()

	Spawn(conn, rec.callbacks(), nil, 0, nil, nil)

	transport.push(Frame{Kind: FrameText, Data: []byte("hello")})
	waitFor(t, func() bool {
		messages, _, _, _ := rec.snapshot()
		return len(messages) == 1
	}, "message never delivered")

	if err := conn.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	// The forced transport shutdown makes the pump's read fail; with the
	// connection locally closed that must surface as a clean close, not an
	// error.
	transport.Close()

	rec.waitClosed(t)
	_, errs, closes, _ := rec.snapshot()
	if len(errs) != 0 {
		t.Errorf("local close surfaced errors: %v", errs)
	}
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}
