// Package emulation is the transport layer of wirebridge: HTTP clients and
// WebSocket dialing shaped after real browser profiles.
//
// A Profile selects the identity a client presents on the wire: its
// User-Agent, baseline request headers, and ALPN preference. Clients built
// here carry an optional resettable cookie jar and an optional proxy
// (http, https, socks5, socks5h). DialSocket performs the WebSocket
// handshake under the same profile and proxy rules and returns a transport
// satisfying the stream package's frame interfaces.
//
// Full TLS-fingerprint emulation is the concern of whatever transport is
// plugged in behind these types; the defaults here configure net/http and
// gorilla/websocket as far as those libraries allow.
package emulation
