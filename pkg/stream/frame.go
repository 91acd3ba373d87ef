package stream

// FrameKind identifies a wire frame's payload type.
type FrameKind int

// Frame kinds.
const (
	// FrameText is a text data frame.
	FrameText FrameKind = iota + 1
	// FrameBinary is a binary data frame.
	FrameBinary
	// FrameClose is a close frame from the peer.
	FrameClose
)

// String returns the string representation of the frame kind.
func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FrameClose:
		return "close"
	default:
		return "unknown"
	}
}

// Frame is one inbound wire frame. Control traffic the transport answers on
// its own (ping/pong) never appears here. Code is the close status code,
// set only for FrameClose.
type Frame struct {
	Kind FrameKind
	Data []byte
	Code int
}

// FrameReader is the inbound half of a socket transport. A connection's
// pump is its only caller.
type FrameReader interface {
	// ReadFrame blocks until the next data or close frame arrives.
	ReadFrame() (Frame, error)
}

// FrameWriter is the outbound half of a socket transport. Implementations
// are not required to tolerate concurrent writes; Conn serializes them.
type FrameWriter interface {
	// WriteFrame sends one data frame.
	WriteFrame(kind FrameKind, data []byte) error
	// WriteClose sends a close frame.
	WriteClose() error
}

// FrameConn is a full-duplex socket transport as produced by a dialer.
// Close tears down the underlying connection without a close handshake.
type FrameConn interface {
	FrameReader
	FrameWriter
	Close() error
}
