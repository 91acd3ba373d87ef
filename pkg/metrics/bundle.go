package metrics

import (
	"strconv"
	"time"
)

// Bundle is the set of instruments a bridge maintains about its own
// activity. Every bridge owns one; the recording methods hide the label
// plumbing so call sites stay one line.
type Bundle struct {
	registry *Registry

	connectionsOpened *Counter
	handshakeFailures *Counter
	activeConnections *Gauge
	framesSent        *Counter
	eventsDelivered   *Counter
	activeSessions    *Gauge
	requestsTotal     *Counter
	requestFailures   *Counter
	requestDuration   *Histogram
}

// NewBundle registers the bridge's instruments on reg. A nil reg gets a
// private registry. Sharing one registry between two bundles panics on
// the duplicate names, like any other double registration.
func NewBundle(reg *Registry) *Bundle {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Bundle{
		registry: reg,
		connectionsOpened: reg.NewCounter("wirebridge_connections_opened_total",
			"WebSocket connections successfully established."),
		handshakeFailures: reg.NewCounter("wirebridge_handshake_failures_total",
			"WebSocket upgrades that never produced a connection."),
		activeConnections: reg.NewGauge("wirebridge_active_connections",
			"Live WebSocket connections."),
		framesSent: reg.NewCounter("wirebridge_frames_sent_total",
			"Outbound data frames by kind.", "kind"),
		eventsDelivered: reg.NewCounter("wirebridge_events_delivered_total",
			"Events handed to consumer callbacks by kind.", "kind"),
		activeSessions: reg.NewGauge("wirebridge_active_sessions",
			"Registered HTTP sessions."),
		requestsTotal: reg.NewCounter("wirebridge_requests_total",
			"Completed HTTP exchanges by method and status.", "method", "status"),
		requestFailures: reg.NewCounter("wirebridge_request_failures_total",
			"HTTP exchanges that ended in an error, by method.", "method"),
		requestDuration: reg.NewHistogram("wirebridge_request_duration_seconds",
			"HTTP exchange latency by method.", DefaultBuckets, "method"),
	}
}

// Registry returns the registry the bundle's instruments live on, for
// exposition via WriteText or Handler.
func (b *Bundle) Registry() *Registry { return b.registry }

// ConnectionOpened records a successful WebSocket handshake.
func (b *Bundle) ConnectionOpened() { _ = b.connectionsOpened.Inc() }

// HandshakeFailed records a dial or upgrade failure.
func (b *Bundle) HandshakeFailed() { _ = b.handshakeFailures.Inc() }

// SetActiveConnections reports the current live connection count.
func (b *Bundle) SetActiveConnections(n int) { _ = b.activeConnections.Set(float64(n)) }

// FrameSent records one outbound data frame.
func (b *Bundle) FrameSent(kind string) {
	if vec, err := b.framesSent.WithLabels(kind); err == nil {
		_ = vec.Inc()
	}
}

// EventDelivered records one event handed to a consumer callback.
func (b *Bundle) EventDelivered(kind string) {
	if vec, err := b.eventsDelivered.WithLabels(kind); err == nil {
		_ = vec.Inc()
	}
}

// SetActiveSessions reports the current registered session count.
func (b *Bundle) SetActiveSessions(n int) { _ = b.activeSessions.Set(float64(n)) }

// RequestCompleted records one finished HTTP exchange.
func (b *Bundle) RequestCompleted(method string, status int, elapsed time.Duration) {
	if vec, err := b.requestsTotal.WithLabels(method, strconv.Itoa(status)); err == nil {
		_ = vec.Inc()
	}
	if vec, err := b.requestDuration.WithLabels(method); err == nil {
		vec.Observe(elapsed.Seconds())
	}
}

// RequestFailed records an HTTP exchange that returned an error instead
// of a response.
func (b *Bundle) RequestFailed(method string) {
	if vec, err := b.requestFailures.WithLabels(method); err == nil {
		_ = vec.Inc()
	}
}

// Stats is a point-in-time reading of the bundle's headline numbers.
// Label-split counters are summed per label value.
type Stats struct {
	ConnectionsOpened uint64
	HandshakeFailures uint64
	ActiveConnections int
	ActiveSessions    int
	FramesSent        map[string]uint64
	EventsDelivered   map[string]uint64
	Requests          uint64
	RequestFailures   uint64
}

// Snapshot reads the bundle's current values.
func (b *Bundle) Snapshot() Stats {
	s := Stats{
		ConnectionsOpened: counterTotal(b.connectionsOpened),
		HandshakeFailures: counterTotal(b.handshakeFailures),
		ActiveConnections: int(gaugeValue(b.activeConnections)),
		ActiveSessions:    int(gaugeValue(b.activeSessions)),
		FramesSent:        counterByLabel(b.framesSent, "kind"),
		EventsDelivered:   counterByLabel(b.eventsDelivered, "kind"),
		Requests:          counterTotal(b.requestsTotal),
		RequestFailures:   counterTotal(b.requestFailures),
	}
	return s
}

func counterTotal(c *Counter) uint64 {
	var total float64
	for _, s := range c.Collect() {
		total += s.Value
	}
	return uint64(total)
}

func counterByLabel(c *Counter, label string) map[string]uint64 {
	out := make(map[string]uint64)
	for _, s := range c.Collect() {
		out[s.Labels[label]] += uint64(s.Value)
	}
	return out
}

func gaugeValue(g *Gauge) float64 {
	samples := g.Collect()
	if len(samples) == 0 {
		return 0
	}
	return samples[0].Value
}
