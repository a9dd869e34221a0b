// Package metrics counts load outcomes in a Prometheus registry that can be
// exported to a node_exporter textfile after the run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gtload"

// Metrics holds the counters of one load run.
type Metrics struct {
	reg *prometheus.Registry

	Records      *prometheus.CounterVec
	Events       *prometheus.CounterVec
	RecordErrors *prometheus.CounterVec
	MergeSplits  *prometheus.CounterVec
	Notes        prometheus.Counter
	Duration     prometheus.Gauge
}

// New creates the counters in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records processed, by outcome.",
		}, []string{"outcome"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_events_total",
			Help:      "Sequence events detected, by event.",
		}, []string{"event"}),
		RecordErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_errors_total",
			Help:      "Records skipped for a data-quality error, by kind.",
		}, []string{"kind"}),
		MergeSplits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mergesplit_events_total",
			Help:      "Merge and split events detected.",
		}, []string{"kind"}),
		Notes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discrepancy_notes_total",
			Help:      "Non-fatal discrepancies reported to curators.",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}
	m.reg.MustRegister(m.Records, m.Events, m.RecordErrors, m.MergeSplits, m.Notes, m.Duration)
	return m
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Record counts one record outcome.
func (m *Metrics) Record(outcome string) {
	m.Records.WithLabelValues(outcome).Inc()
}

// Event counts one sequence event.
func (m *Metrics) Event(event string) {
	m.Events.WithLabelValues(event).Inc()
}

// RecordError counts one skipped record.
func (m *Metrics) RecordError(kind string) {
	m.RecordErrors.WithLabelValues(kind).Inc()
}

// MergeSplit counts one merge or split event.
func (m *Metrics) MergeSplit(kind string) {
	m.MergeSplits.WithLabelValues(kind).Inc()
}

// ObserveRun sets the run duration.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.Duration.Set(d.Seconds())
}

// WriteTextfile writes every metric in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
