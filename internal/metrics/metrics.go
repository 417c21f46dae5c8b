// Package metrics holds the run counters of a conversion. They are kept in a
// private registry and can be written in the Prometheus text format for the
// node_exporter textfile collector once the run is over.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinvar_tsv"

// Metrics implements the observer interfaces of the pipeline stages.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	setsTotal        prometheus.Counter
	bytesRead        prometheus.Counter
	rowsTotal        *prometheus.CounterVec // by bucket
	unknownLabels    *prometheus.CounterVec // by kind
	skippedLocations *prometheus.CounterVec // by reason
	runDuration      prometheus.Gauge
}

// New creates and registers the run counters
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		setsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sets_total",
			Help:      "ClinVarSet records converted",
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Decompressed input bytes consumed by the parser",
		}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows written per output bucket",
		}, []string{"bucket"}),
		unknownLabels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_labels_total",
			Help:      "Labels that fell back to a default value",
		}, []string{"kind"}),
		skippedLocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_locations_total",
			Help:      "Sequence locations not written to any bucket",
		}, []string{"reason"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the conversion",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.setsTotal, m.bytesRead, m.rowsTotal, m.unknownLabels, m.skippedLocations, m.runDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// SetConverted counts one finished record
func (m *Metrics) SetConverted() {
	if m == nil {
		return
	}
	m.setsTotal.Inc()
}

// BytesRead adds n consumed input bytes
func (m *Metrics) BytesRead(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesRead.Add(float64(n))
}

// RowRouted implements router.Observer
func (m *Metrics) RowRouted(bucket string) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues(bucket).Inc()
}

// LocationSkipped implements router.Observer
func (m *Metrics) LocationSkipped(reason string) {
	if m == nil {
		return
	}
	m.skippedLocations.WithLabelValues(reason).Inc()
}

// UnknownLabel implements vocab.UnknownLabelObserver
func (m *Metrics) UnknownLabel(kind string) {
	if m == nil {
		return
	}
	m.unknownLabels.WithLabelValues(kind).Inc()
}

// RunFinished records the wall time of the run
func (m *Metrics) RunFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Set(d.Seconds())
}

// Registry returns the registry holding the counters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all counters to path in the Prometheus text format.
// The file is written to a temporary name and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
