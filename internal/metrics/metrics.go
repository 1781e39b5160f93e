// Package metrics keeps playback counters in a private Prometheus registry
// and writes them in the node_exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/banshee-data/sendsubghz/internal/playback"
	"github.com/banshee-data/sendsubghz/internal/subghz"
)

// Metrics holds all playback metrics.
type Metrics struct {
	registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	Transmits   prometheus.Counter
	Pauses      prometheus.Counter
	PulsesSent  prometheus.Counter
	AirTime     prometheus.Counter
	Warnings    *prometheus.CounterVec
	RunDuration prometheus.Histogram
	Frequency   prometheus.Gauge
}

// New creates the metrics in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendsubghz_runs_total",
			Help: "Playback runs by outcome",
		}, []string{"outcome"}),
		Transmits: factory.NewCounter(prometheus.CounterOpts{
			Name: "sendsubghz_transmits_total",
			Help: "Sequences handed to the transmitter",
		}),
		Pauses: factory.NewCounter(prometheus.CounterOpts{
			Name: "sendsubghz_pauses_total",
			Help: "Inter-burst pauses taken",
		}),
		PulsesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "sendsubghz_pulses_sent_total",
			Help: "Pulses handed to the transmitter",
		}),
		AirTime: factory.NewCounter(prometheus.CounterOpts{
			Name: "sendsubghz_air_time_seconds_total",
			Help: "Sum of transmitted pulse durations",
		}),
		Warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendsubghz_warnings_total",
			Help: "Non-fatal diagnostics by pipeline stage",
		}, []string{"stage"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sendsubghz_run_duration_seconds",
			Help:    "Wall-clock duration of playback runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		Frequency: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sendsubghz_frequency_hz",
			Help: "Carrier frequency of the last run",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveWarnings counts each warning under its stage label.
func (m *Metrics) ObserveWarnings(ws subghz.Warnings) {
	for _, w := range ws {
		m.Warnings.WithLabelValues(w.Stage).Inc()
	}
}

// ObserveRun records the result of one scheduler run.
func (m *Metrics) ObserveRun(frequencyHz uint64, r playback.Result) {
	m.Runs.WithLabelValues(string(r.Outcome)).Inc()
	m.Transmits.Add(float64(r.Transmits))
	m.Pauses.Add(float64(r.Pauses))
	m.PulsesSent.Add(float64(r.PulsesSent))
	m.AirTime.Add(r.AirTime.Seconds())
	m.RunDuration.Observe(r.Elapsed.Seconds())
	m.Frequency.Set(float64(frequencyHz))
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
