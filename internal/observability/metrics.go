package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_harvester"

// Metrics holds the Prometheus counters, histograms, and gauges for a harvest run.
type Metrics struct {
	Days                *prometheus.CounterVec // labels: outcome={recorded,skipped,failed}
	ObservationsWritten prometheus.Counter
	RunInProgress       prometheus.Gauge
	CurrentDay          prometheus.Gauge // unix seconds of the date being processed
	DayDuration         prometheus.Histogram
	PaceDelay           prometheus.Gauge
}

// NewMetrics creates and registers all harvester metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Days,
		m.ObservationsWritten,
		m.RunInProgress,
		m.CurrentDay,
		m.DayDuration,
		m.PaceDelay,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_total",
			Help:      "Days processed, by terminal outcome.",
		}, []string{"outcome"}),
		ObservationsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_written_total",
			Help:      "Observations appended to the output sinks.",
		}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a harvest run is active, 0 otherwise.",
		}),
		CurrentDay: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_day_timestamp_seconds",
			Help:      "Unix timestamp of the date currently being harvested.",
		}),
		DayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "day_duration_seconds",
			Help:      "Time spent selecting and extracting one day, excluding pacing.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 20, 30, 45, 60},
		}),
		PaceDelay: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pace_delay_seconds",
			Help:      "Pause applied after the most recent day.",
		}),
	}
}
