package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values does
// not match the metric's label names.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when a counter would be decreased.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is the panic cause when a name is registered twice.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 stores a float64 as its bit pattern for lock-free updates.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Kind is the exposition type of a metric.
type Kind string

const (
	KindCounter   Kind = "counter"
	KindGauge     Kind = "gauge"
	KindHistogram Kind = "histogram"
)

// Metric is implemented by every instrument a Registry can hold.
type Metric interface {
	Name() string
	Help() string
	Kind() Kind
	// Collect returns the metric's current samples for exposition.
	Collect() []Sample
}

// Sample is one exposition line: a name, a label set, and a value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name       string
	help       string
	labelNames []string

	mu     sync.RWMutex
	series map[string]*counterSeries
}

type counterSeries struct {
	labels map[string]string
	value  atomicFloat64
}

func newCounter(name, help string, labelNames []string) *Counter {
	return &Counter{
		name:       name,
		help:       help,
		labelNames: labelNames,
		series:     make(map[string]*counterSeries),
	}
}

func (c *Counter) Name() string { return c.name }
func (c *Counter) Help() string { return c.help }
func (c *Counter) Kind() Kind   { return KindCounter }

// WithLabels resolves the series for the given label values, creating it
// on first use. The value count must match the counter's label names.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	if len(values) != len(c.labelNames) {
		return nil, fmt.Errorf("%w: counter %s expected %d labels, got %d",
			ErrLabelCountMismatch, c.name, len(c.labelNames), len(values))
	}

	key := seriesKey(values)
	c.mu.RLock()
	cs, ok := c.series[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		cs, ok = c.series[key]
		if !ok {
			cs = &counterSeries{labels: labelMap(c.labelNames, values)}
			c.series[key] = cs
		}
		c.mu.Unlock()
	}
	return &CounterVec{cs: cs}, nil
}

// Inc increments an unlabeled counter by one.
func (c *Counter) Inc() error { return c.Add(1) }

// Add adds delta to an unlabeled counter. Negative deltas are rejected.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

func (c *Counter) Collect() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	samples := make([]Sample, 0, len(c.series))
	for _, cs := range c.series {
		samples = append(samples, Sample{Name: c.name, Labels: cs.labels, Value: cs.value.Load()})
	}
	return samples
}

// CounterVec is a counter bound to one label combination.
type CounterVec struct {
	cs *counterSeries
}

// Inc increments the counter by one.
func (v *CounterVec) Inc() error { return v.Add(1) }

// Add adds delta to the counter. Negative deltas are rejected.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v.cs.value.Add(delta)
	return nil
}

// Value returns the counter's current reading.
func (v *CounterVec) Value() float64 { return v.cs.value.Load() }

// Gauge is a metric that can move in both directions.
type Gauge struct {
	name       string
	help       string
	labelNames []string

	mu     sync.RWMutex
	series map[string]*gaugeSeries
}

type gaugeSeries struct {
	labels map[string]string
	value  atomicFloat64
}

func newGauge(name, help string, labelNames []string) *Gauge {
	return &Gauge{
		name:       name,
		help:       help,
		labelNames: labelNames,
		series:     make(map[string]*gaugeSeries),
	}
}

func (g *Gauge) Name() string { return g.name }
func (g *Gauge) Help() string { return g.help }
func (g *Gauge) Kind() Kind   { return KindGauge }

// WithLabels resolves the series for the given label values, creating it
// on first use.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	if len(values) != len(g.labelNames) {
		return nil, fmt.Errorf("%w: gauge %s expected %d labels, got %d",
			ErrLabelCountMismatch, g.name, len(g.labelNames), len(values))
	}

	key := seriesKey(values)
	g.mu.RLock()
	gs, ok := g.series[key]
	g.mu.RUnlock()

	if !ok {
		g.mu.Lock()
		gs, ok = g.series[key]
		if !ok {
			gs = &gaugeSeries{labels: labelMap(g.labelNames, values)}
			g.series[key] = gs
		}
		g.mu.Unlock()
	}
	return &GaugeVec{gs: gs}, nil
}

// Set sets an unlabeled gauge.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Inc increments an unlabeled gauge by one.
func (g *Gauge) Inc() error { return g.Add(1) }

// Dec decrements an unlabeled gauge by one.
func (g *Gauge) Dec() error { return g.Add(-1) }

// Add adds delta to an unlabeled gauge.
func (g *Gauge) Add(delta float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Add(delta)
	return nil
}

func (g *Gauge) Collect() []Sample {
	g.mu.RLock()
	defer g.mu.RUnlock()

	samples := make([]Sample, 0, len(g.series))
	for _, gs := range g.series {
		samples = append(samples, Sample{Name: g.name, Labels: gs.labels, Value: gs.value.Load()})
	}
	return samples
}

// GaugeVec is a gauge bound to one label combination.
type GaugeVec struct {
	gs *gaugeSeries
}

// Set sets the gauge.
func (v *GaugeVec) Set(value float64) { v.gs.value.Store(value) }

// Inc increments the gauge by one.
func (v *GaugeVec) Inc() { v.Add(1) }

// Dec decrements the gauge by one.
func (v *GaugeVec) Dec() { v.Add(-1) }

// Add adds delta to the gauge.
func (v *GaugeVec) Add(delta float64) { v.gs.value.Add(delta) }

// Value returns the gauge's current reading.
func (v *GaugeVec) Value() float64 { return v.gs.value.Load() }

// Histogram tracks the distribution of observed values in cumulative
// buckets with _sum and _count aggregates.
type Histogram struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64

	mu     sync.RWMutex
	series map[string]*histogramSeries
}

type histogramSeries struct {
	labels map[string]string
	bounds []float64
	counts []atomic.Uint64
	sum    atomicFloat64
	count  atomic.Uint64
}

func newHistogram(name, help string, buckets []float64, labelNames []string) *Histogram {
	bounds := make([]float64, len(buckets))
	copy(bounds, buckets)
	sort.Float64s(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}

	return &Histogram{
		name:       name,
		help:       help,
		labelNames: labelNames,
		buckets:    bounds,
		series:     make(map[string]*histogramSeries),
	}
}

func (h *Histogram) Name() string { return h.name }
func (h *Histogram) Help() string { return h.help }
func (h *Histogram) Kind() Kind   { return KindHistogram }

// WithLabels resolves the series for the given label values, creating it
// on first use.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	if len(values) != len(h.labelNames) {
		return nil, fmt.Errorf("%w: histogram %s expected %d labels, got %d",
			ErrLabelCountMismatch, h.name, len(h.labelNames), len(values))
	}

	key := seriesKey(values)
	h.mu.RLock()
	hs, ok := h.series[key]
	h.mu.RUnlock()

	if !ok {
		h.mu.Lock()
		hs, ok = h.series[key]
		if !ok {
			hs = &histogramSeries{
				labels: labelMap(h.labelNames, values),
				bounds: h.buckets,
				counts: make([]atomic.Uint64, len(h.buckets)),
			}
			h.series[key] = hs
		}
		h.mu.Unlock()
	}
	return &HistogramVec{hs: hs}, nil
}

// Observe records a value on an unlabeled histogram.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

func (h *Histogram) Collect() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	samples := make([]Sample, 0, (len(h.buckets)+2)*len(h.series))
	for _, hs := range h.series {
		cumulative := uint64(0)
		for i, bound := range hs.bounds {
			cumulative += hs.counts[i].Load()
			labels := make(map[string]string, len(hs.labels)+1)
			for k, v := range hs.labels {
				labels[k] = v
			}
			if math.IsInf(bound, 1) {
				labels["le"] = "+Inf"
			} else {
				labels["le"] = formatFloat(bound)
			}
			samples = append(samples, Sample{
				Name:   h.name + "_bucket",
				Labels: labels,
				Value:  float64(cumulative),
			})
		}
		samples = append(samples,
			Sample{Name: h.name + "_sum", Labels: hs.labels, Value: hs.sum.Load()},
			Sample{Name: h.name + "_count", Labels: hs.labels, Value: float64(hs.count.Load())},
		)
	}
	return samples
}

// HistogramVec is a histogram bound to one label combination.
type HistogramVec struct {
	hs *histogramSeries
}

// Observe records one value.
func (v *HistogramVec) Observe(value float64) {
	for i, bound := range v.hs.bounds {
		if value <= bound {
			v.hs.counts[i].Add(1)
			break
		}
	}
	v.hs.sum.Add(value)
	v.hs.count.Add(1)
}

// Registry holds a set of uniquely named metrics and renders them in the
// Prometheus text exposition format.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter creates and registers a counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := newCounter(name, help, labels)
	r.register(c)
	return c
}

// NewGauge creates and registers a gauge.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := newGauge(name, help, labels)
	r.register(g)
	return g
}

// NewHistogram creates and registers a histogram with the given bucket
// upper bounds. A +Inf bucket is added when missing.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	h := newHistogram(name, help, buckets, labels)
	r.register(h)
	return h
}

// register panics on duplicate names; two metrics sharing a name would
// produce invalid exposition output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// WriteText renders every registered metric in the Prometheus text format,
// in registration order.
func (r *Registry) WriteText(w io.Writer) error {
	r.mu.RLock()
	metrics := make([]Metric, len(r.metrics))
	copy(metrics, r.metrics)
	r.mu.RUnlock()

	for _, m := range metrics {
		if err := writeMetric(w, m); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry as a /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = r.WriteText(w)
	})
}

func writeMetric(w io.Writer, m Metric) error {
	samples := m.Collect()
	if len(samples) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", m.Name(), escapeHelp(m.Help())); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s %s\n", m.Name(), m.Kind()); err != nil {
		return err
	}
	for _, s := range samples {
		if err := writeSample(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSample(w io.Writer, s Sample) error {
	var err error
	if len(s.Labels) == 0 {
		_, err = fmt.Fprintf(w, "%s %s\n", s.Name, formatFloat(s.Value))
	} else {
		_, err = fmt.Fprintf(w, "%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value))
	}
	return err
}

// formatLabels renders a label set as key="value" pairs with keys sorted
// for deterministic output.
func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, escapeLabelValue(labels[k]))
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	s := fmt.Sprintf("%g", v)
	if v == float64(int64(v)) && !strings.Contains(s, ".") && !strings.Contains(s, "e") {
		return fmt.Sprintf("%.0f", v)
	}
	return s
}

func escapeHelp(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func escapeLabelValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func labelMap(names, values []string) map[string]string {
	labels := make(map[string]string, len(names))
	for i, name := range names {
		labels[name] = values[i]
	}
	return labels
}

// seriesKey builds the lookup key for one label-value combination.
func seriesKey(values []string) string {
	return strings.Join(values, "\x00")
}

// DefaultBuckets suit request latencies measured in seconds.
var DefaultBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}
