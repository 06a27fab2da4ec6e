// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/eppd/lib/profile"
	"github.com/bureau-foundation/eppd/lib/reconcile"
)

const namespace = "eppd"

// Pass results.
const (
	ResultComplete = "complete"
	ResultPartial  = "partial"
	ResultFailed   = "failed"
	ResultSkipped  = "skipped"
)

// Metrics holds the daemon's collectors. All methods are safe for
// concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	PassesTotal   *prometheus.CounterVec
	WritesTotal   *prometheus.CounterVec
	FaultsTotal   *prometheus.CounterVec
	RetriesTotal  prometheus.Counter
	EventsTotal   *prometheus.CounterVec
	ActiveProfile *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry, together with the
// standard Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		PassesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "passes_total",
			Help:      "Reconciliation passes by result.",
		}, []string{"result"}),
		WritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "writes_total",
			Help:      "Per-CPU sysfs writes by attribute.",
		}, []string{"attribute"}),
		FaultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "faults_total",
			Help:      "Per-CPU reconciliation faults by attribute.",
		}, []string{"attribute"}),
		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "retries_total",
			Help:      "Passes started by the retry timer after a partial pass.",
		}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "events_total",
			Help:      "Power profile notifications by result.",
		}, []string{"result"}),
		ActiveProfile: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "active",
			Help:      "1 for the power profile most recently applied to every CPU.",
		}, []string{"profile"}),
	}

	// Pre-create the label sets so dashboards see zeros rather than
	// absent series before the first pass.
	for _, result := range []string{ResultComplete, ResultPartial, ResultFailed, ResultSkipped} {
		m.PassesTotal.WithLabelValues(result)
	}
	for _, attribute := range []reconcile.Attribute{reconcile.AttributeGovernor, reconcile.AttributeEPP} {
		m.WritesTotal.WithLabelValues(string(attribute))
		m.FaultsTotal.WithLabelValues(string(attribute))
	}
	for _, p := range profile.All() {
		m.ActiveProfile.WithLabelValues(p.String())
	}
	return m
}

// Record implements reconcile.Recorder.
func (m *Metrics) Record(report reconcile.Report) {
	switch {
	case report.Skipped:
		m.PassesTotal.WithLabelValues(ResultSkipped).Inc()
		return
	case report.PassErr != nil:
		m.PassesTotal.WithLabelValues(ResultFailed).Inc()
	case len(report.Faults) > 0:
		m.PassesTotal.WithLabelValues(ResultPartial).Inc()
	default:
		m.PassesTotal.WithLabelValues(ResultComplete).Inc()
	}

	for _, write := range report.Writes {
		m.WritesTotal.WithLabelValues(string(write.Attribute)).Inc()
	}
	for _, fault := range report.Faults {
		m.FaultsTotal.WithLabelValues(string(fault.Attribute)).Inc()
	}

	if report.Complete() {
		for _, p := range profile.All() {
			value := 0.0
			if p == report.Profile {
				value = 1
			}
			m.ActiveProfile.WithLabelValues(p.String()).Set(value)
		}
	}
}

// RecordEvent counts one profile notification. rejected is true for
// notifications carrying an unparseable profile.
func (m *Metrics) RecordEvent(rejected bool) {
	result := "accepted"
	if rejected {
		result = "rejected"
	}
	m.EventsTotal.WithLabelValues(result).Inc()
}

// RecordRetry counts one pass started by the retry timer.
func (m *Metrics) RecordRetry() {
	m.RetriesTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
