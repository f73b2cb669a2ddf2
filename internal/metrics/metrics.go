// Package metrics counts resolution outcomes in a Prometheus registry that
// the driver can dump to a text file after a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"jopa/internal/diag"
	"jopa/internal/source"
)

// Recorder owns one registry. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	// callSites counts call sites by final state.
	// Labels: outcome (resolved, failed, deferred)
	callSites *prometheus.CounterVec
	// diagnostics counts reported diagnostics.
	// Labels: code (RES3001, PRJ5001, ...)
	diagnostics *prometheus.CounterVec
	accessors   prometheus.Counter
	// phases counts resolved sites by the applicability phase that bound them.
	// Labels: phase (strict, loose, varargs)
	phases   *prometheus.CounterVec
	fixtures prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		callSites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jopa",
			Name:      "call_sites_total",
			Help:      "Call sites processed, by final state",
		}, []string{"outcome"}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jopa",
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported, by code",
		}, []string{"code"}),
		accessors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "jopa",
			Name:      "accessors_total",
			Help:      "Accessor methods synthesized for private and protected members",
		}),
		phases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jopa",
			Name:      "phase_total",
			Help:      "Resolved call sites, by the applicability phase that bound them",
		}, []string{"phase"}),
		fixtures: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jopa",
			Name:      "fixture_seconds",
			Help:      "Wall time spent loading and resolving one fixture file",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// ObserveSite counts one call site. phase is empty for sites that did not
// resolve.
func (r *Recorder) ObserveSite(outcome, phase string) {
	if r == nil {
		return
	}
	r.callSites.WithLabelValues(outcome).Inc()
	if phase != "" {
		r.phases.WithLabelValues(phase).Inc()
	}
}

// ObserveDiagnostic counts one diagnostic by code.
func (r *Recorder) ObserveDiagnostic(code diag.Code) {
	if r == nil {
		return
	}
	r.diagnostics.WithLabelValues(code.ID()).Inc()
}

// AddAccessors counts synthesized accessors.
func (r *Recorder) AddAccessors(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.accessors.Add(float64(n))
}

// ObserveFixture records the time one fixture took.
func (r *Recorder) ObserveFixture(d time.Duration) {
	if r == nil {
		return
	}
	r.fixtures.Observe(d.Seconds())
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Reporter counts every diagnostic passing through to next.
func (r *Recorder) Reporter(next diag.Reporter) diag.Reporter {
	if r == nil {
		return next
	}
	return countingReporter{rec: r, next: next}
}

type countingReporter struct {
	rec  *Recorder
	next diag.Reporter
}

func (c countingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	c.rec.ObserveDiagnostic(code)
	if c.next != nil {
		c.next.Report(code, sev, primary, msg, notes, fixes)
	}
}
