package observability

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "discharge_warning"

// Metrics holds the Prometheus counters, histograms, and gauges for a
// classification run. Each Metrics owns its registry so batch runs and tests
// never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	ReadingsTotal   prometheus.Counter
	ClassifiedTotal prometheus.Counter
	SkippedTotal    *prometheus.CounterVec // labels: reason={no_curve,invalid_discharge}
	ClampedTotal    *prometheus.CounterVec // labels: edge={above_range,below_range}
	WarningLevels   *prometheus.CounterVec // labels: level

	BatchDuration    prometheus.Histogram
	LastRunTimestamp prometheus.Gauge

	PublishErrors prometheus.Counter
}

// NewMetrics creates all classification metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ReadingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Discharge readings submitted for classification.",
		}),
		ClassifiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classified_total",
			Help:      "Readings assigned a warning level.",
		}),
		SkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Readings skipped, by reason.",
		}, []string{"reason"}),
		ClampedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clamped_total",
			Help:      "Readings outside their station's curve range, by edge.",
		}, []string{"edge"}),
		WarningLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warning_level_total",
			Help:      "Classified readings by warning level.",
		}, []string{"level"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete classify-and-load batch.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch finished.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Result batches that failed to load.",
		}),
	}

	m.Registry.MustRegister(
		m.ReadingsTotal,
		m.ClassifiedTotal,
		m.SkippedTotal,
		m.ClampedTotal,
		m.WarningLevels,
		m.BatchDuration,
		m.LastRunTimestamp,
		m.PublishErrors,
	)

	return m
}

// ObserveLevel counts one classified reading at level.
func (m *Metrics) ObserveLevel(level int) {
	m.ClassifiedTotal.Inc()
	m.WarningLevels.WithLabelValues(strconv.Itoa(level)).Inc()
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
