package stream

// EventKind identifies what a connection event carries.
type EventKind int

// Event kinds.
const (
	// EventText is a text payload.
	EventText EventKind = iota + 1
	// EventBinary is a binary payload.
	EventBinary
	// EventError reports a transport failure on an established connection.
	EventError
	// EventClose is the terminal event of a connection's stream.
	EventClose
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventBinary:
		return "binary"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// Event is one unit of consumer-visible connection activity. Text and
// Binary events carry payloads, Error carries the transport failure, and
// Close ends the stream. Code holds the peer's close status code when the
// stream ended with a close frame.
type Event struct {
	Kind EventKind
	Data []byte
	Code int
	Err  error
}

// Callbacks receives a connection's events. OnMessage is required; OnError
// and OnClose may be nil. For any one connection, invocations are strictly
// serialized and arrive in frame order, with OnClose always last and never
// repeated.
type Callbacks struct {
	// OnMessage receives EventText and EventBinary payloads.
	OnMessage func(kind EventKind, data []byte)

	// OnError receives transport failures. The stream always ends with
	// OnClose afterwards; OnError never terminates it on its own.
	OnError func(err error)

	// OnClose marks the end of the stream.
	OnClose func()
}
