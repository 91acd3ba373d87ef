// Package metrics provides dependency-free counters, gauges, and
// histograms with Prometheus text exposition.
//
// Instruments are created through a Registry, which enforces unique names
// and renders everything it holds via WriteText or an HTTP Handler. All
// updates are lock-free on the hot path; label lookup takes a read lock
// only until the series exists. Bundle groups the instruments a bridge
// records about its own activity behind one-line recording methods.
package metrics
