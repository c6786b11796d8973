// Package metrics exposes Prometheus collectors for generation and download activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sunobot"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	generations      *prometheus.CounterVec
	generateDuration prometheus.Histogram
	downloads        *prometheus.CounterVec
	pollTicks        prometheus.Counter
	jobsRunning      prometheus.Gauge
	sessionRotations prometheus.Counter
}

// MustNewMetrics registers the collectors with reg and panics on a conflicting
// registration. A nil reg uses the default registerer.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Generation requests by final status.",
			},
			[]string{"status"},
		),
		generateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Wall time of waited generations, submit to last download.",
				Buckets:   []float64{10, 30, 60, 120, 180, 300, 600},
			},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "download_attempts_total",
				Help:      "Row download attempts by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		pollTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_ticks_total",
				Help:      "Reconciliation loop ticks.",
			},
		),
		jobsRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "jobs_running",
				Help:      "Background polling jobs currently running.",
			},
		),
		sessionRotations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_rotations_total",
				Help:      "Browser sessions replaced after reaching their lifetime.",
			},
		),
	}

	reg.MustRegister(m.generations, m.generateDuration, m.downloads, m.pollTicks, m.jobsRunning, m.sessionRotations)
	return m
}

// Generation counts a finished generation request
func (m *Metrics) Generation(status string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(status).Inc()
}

// ObserveGeneration records the duration of a waited generation
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generateDuration.Observe(d.Seconds())
}

func (m *Metrics) DownloadAttempt(mode, outcome string) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) PollTick() {
	if m == nil {
		return
	}
	m.pollTicks.Inc()
}

// JobStarted and JobFinished track the running-jobs gauge
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.jobsRunning.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.jobsRunning.Dec()
}

func (m *Metrics) SessionRotated() {
	if m == nil {
		return
	}
	m.sessionRotations.Inc()
}
