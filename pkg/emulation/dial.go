package emulation

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sqdshguy/wirebridge/pkg/stream"
)

// DefaultHandshakeTimeout bounds WebSocket upgrades when SocketOptions
// does not.
const DefaultHandshakeTimeout = 30 * time.Second

// SocketOptions configures a WebSocket dial.
type SocketOptions struct {
	// URL accepts ws, wss, http and https schemes; the http forms are
	// mapped to their socket equivalents.
	URL string

	// Profile selects the emulated identity for the upgrade request.
	Profile Profile

	// Headers are applied to the upgrade request in order on top of the
	// profile baseline. Duplicate names are preserved.
	Headers []Header

	// Proxy routes the connection when set. Supported schemes: http,
	// https, socks5, socks5h.
	Proxy string

	// HandshakeTimeout bounds the upgrade. Zero uses
	// DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration
}

// DialSocket performs a WebSocket handshake shaped like the given profile
// and returns the established frame transport. Failures before or during
// the upgrade surface as ConfigError or HandshakeError; no connection
// exists when an error is returned.
func DialSocket(ctx context.Context, opts SocketOptions) (*SocketConn, error) {
	wsURL, err := socketURL(opts.URL)
	if err != nil {
		return nil, err
	}
	profile := Resolve(string(opts.Profile))

	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
		TLSClientConfig:  &tls.Config{NextProtos: []string{"http/1.1"}},
	}
	if opts.Proxy != "" {
		pu, err := parseProxyURL(opts.Proxy)
		if err != nil {
			return nil, err
		}
		switch pu.Scheme {
		case "http", "https":
			dialer.Proxy = http.ProxyURL(pu)
		default: // socks5, socks5h
			sd, err := socksDialer(pu)
			if err != nil {
				return nil, err
			}
			dialer.NetDialContext = sd.DialContext
		}
	}

	header := http.Header{}
	header.Set("User-Agent", profile.UserAgent())
	if host := applyHeaders(header, opts.Headers); host != "" {
		header.Set("Host", host)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		he := &HandshakeError{URL: wsURL, Err: err}
		if resp != nil {
			he.Status = resp.StatusCode
			resp.Body.Close()
		}
		return nil, he
	}

	return &SocketConn{conn: conn}, nil
}

// socketURL normalizes a connection URL to its ws/wss form.
func socketURL(raw string) (string, error) {
	if raw == "" {
		return "", &ConfigError{Field: "url", Reason: "missing URL"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ConfigError{Field: "url", Value: raw, Reason: err.Error()}
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", &ConfigError{Field: "url", Value: raw, Reason: "unsupported scheme " + u.Scheme}
	}
	return u.String(), nil
}

// SocketConn adapts a dialed WebSocket to the stream package's frame
// interfaces. A read may run concurrently with a write, but writes must be
// serialized; stream.Conn provides that serialization.
type SocketConn struct {
	conn *websocket.Conn
}

// ReadFrame blocks for the next data frame. A close frame from the peer is
// returned as FrameClose carrying the close code; ping/pong traffic is
// answered by the underlying connection and never surfaces.
func (s *SocketConn) ReadFrame() (stream.Frame, error) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return stream.Frame{Kind: stream.FrameClose, Code: ce.Code, Data: []byte(ce.Text)}, nil
			}
			return stream.Frame{}, err
		}

		switch msgType {
		case websocket.TextMessage:
			return stream.Frame{Kind: stream.FrameText, Data: data}, nil
		case websocket.BinaryMessage:
			return stream.Frame{Kind: stream.FrameBinary, Data: data}, nil
		}
	}
}

// WriteFrame sends one data frame.
func (s *SocketConn) WriteFrame(kind stream.FrameKind, data []byte) error {
	msgType := websocket.TextMessage
	if kind == stream.FrameBinary {
		msgType = websocket.BinaryMessage
	}
	return s.conn.WriteMessage(msgType, data)
}

// WriteClose sends a normal-closure close frame.
func (s *SocketConn) WriteClose() error {
	return s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close tears down the underlying network connection without a closing
// handshake.
func (s *SocketConn) Close() error {
	return s.conn.Close()
}

var _ stream.FrameConn = (*SocketConn)(nil)
