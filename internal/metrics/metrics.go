// Package metrics exposes per-run Prometheus metrics and writes them to a
// node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"madison/internal/models"
)

const namespace = "madison"

// Run outcomes used as the "status" label.
const (
	StatusOK        = "ok"
	StatusNoMetrics = "no_metrics"
	StatusError     = "error"
)

// Recorder holds the metrics of an agent process. It owns a private
// registry so repeated construction in tests never collides.
type Recorder struct {
	registry *prometheus.Registry

	sourceRecords  *prometheus.GaugeVec
	sourceErrors   *prometheus.GaugeVec
	sourceFailures *prometheus.CounterVec
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	anomalies      prometheus.Gauge
	threshold      prometheus.Gauge
	average        prometheus.Gauge
	fallbacks      prometheus.Counter
	lastSuccessTS  prometheus.Gauge
}

// New registers every metric on a fresh registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.sourceRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_records",
		Help:      "Records contributed by each source in the last run",
	}, []string{"source"})
	r.sourceErrors = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_parse_errors",
		Help:      "Rows dropped by each source in the last run",
	}, []string{"source"})
	r.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Source fetches that failed",
	}, []string{"source"})
	r.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Analysis runs by outcome",
	}, []string{"status"})
	r.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of an analysis run",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	r.anomalies = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "anomalies",
		Help:      "Values above the anomaly threshold in the last run",
	})
	r.threshold = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "anomaly_threshold_percent",
		Help:      "Anomaly threshold of the last run",
	})
	r.average = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cpu_average_percent",
		Help:      "Mean CPU utilization of the last run",
	})
	r.fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "narrative_fallbacks_total",
		Help:      "Runs whose narrative came from the deterministic fallback",
	})
	r.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful run",
	})

	r.registry.MustRegister(
		r.sourceRecords, r.sourceErrors, r.sourceFailures, r.runsTotal, r.runDuration,
		r.anomalies, r.threshold, r.average, r.fallbacks, r.lastSuccessTS,
	)

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveSource records one source fetch. A failed fetch counts zero records.
func (r *Recorder) ObserveSource(key string, records, parseErrors int, err error) {
	if err != nil {
		r.sourceFailures.WithLabelValues(key).Inc()
	}

	r.sourceRecords.WithLabelValues(key).Set(float64(records))
	r.sourceErrors.WithLabelValues(key).Set(float64(parseErrors))
}

// ObserveRun records the outcome of a run.
func (r *Recorder) ObserveRun(status string, s models.StatisticsSummary, took time.Duration, fallback bool) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(took.Seconds())

	if status != StatusOK {
		return
	}

	r.anomalies.Set(float64(s.PotentialAnomaliesCount))
	r.threshold.Set(s.AnomalyThreshold)
	r.average.Set(s.Average)
	r.lastSuccessTS.SetToCurrentTime()

	if fallback {
		r.fallbacks.Inc()
	}
}

// WriteTextfile writes the current values in the text exposition format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
