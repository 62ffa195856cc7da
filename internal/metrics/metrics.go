// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records import, materialization, and validation counters.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skos_engine"

// Metrics holds the Prometheus collectors for one engine instance.
type Metrics struct {
	importItems  *prometheus.CounterVec // by kind
	importErrors *prometheus.CounterVec // by phase
	imports      *prometheus.CounterVec // by outcome

	rebuilds       prometheus.Counter
	rebuildLatency prometheus.Histogram
	paths          prometheus.Gauge

	findings *prometheus.CounterVec // by rule and severity
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		importItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "items_total",
			Help:      "Items written by imports",
		}, []string{"kind"}),

		importErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "errors_total",
			Help:      "Items skipped during import",
		}, []string{"phase"}),

		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Import calls by outcome",
		}, []string{"outcome"}),

		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "rebuilds_total",
			Help:      "Closure table rebuilds",
		}),

		rebuildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "rebuild_seconds",
			Help:      "Closure table rebuild duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		}),

		paths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "paths",
			Help:      "Rows in the closure table after the last rebuild",
		}),

		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "findings_total",
			Help:      "Validation findings by rule and severity",
		}, []string{"rule", "severity"}),
	}

	for _, c := range []prometheus.Collector{
		m.importItems, m.importErrors, m.imports,
		m.rebuilds, m.rebuildLatency, m.paths, m.findings,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

// ImportItems adds n written items of kind.
func (m *Metrics) ImportItems(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.importItems.WithLabelValues(kind).Add(float64(n))
}

// ImportError counts one skipped item in phase.
func (m *Metrics) ImportError(phase string) {
	if m == nil {
		return
	}
	m.importErrors.WithLabelValues(phase).Inc()
}

// ImportRun counts one import call. outcome is "ok", "partial", or "failed".
func (m *Metrics) ImportRun(outcome string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
}

// Rebuild records one closure rebuild.
func (m *Metrics) Rebuild(d time.Duration, paths int) {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
	m.rebuildLatency.Observe(d.Seconds())
	m.paths.Set(float64(paths))
}

// Finding counts one validation finding.
func (m *Metrics) Finding(rule, severity string) {
	if m == nil {
		return
	}
	m.findings.WithLabelValues(rule, severity).Inc()
}
