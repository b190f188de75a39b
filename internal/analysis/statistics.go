// Package analysis computes descriptive statistics over a metric series and
// classifies the points that exceed the sigma threshold.
//
// Three independent band schemes live here and are intentionally not unified:
// the sigma threshold (ComputeStatistics), the absolute severity tiers
// (ClassifySeverity) and the anomaly-count health label (HealthFor).
package analysis

import (
	"math"
	"strconv"

	"madison/internal/models"
)

const (
	// DefaultSigmaMultiplier is k in threshold = mean + k*stddev.
	DefaultSigmaMultiplier = 1.5
	// MaxListedAnomalies caps StatisticsSummary.PotentialAnomalies.
	MaxListedAnomalies = 10
	// DefaultMetricName is used when the first record carries no metric name.
	DefaultMetricName = "cpu_utilization"
)

// ComputeStatistics returns the summary of metrics using a population standard
// deviation (divisor N). Anomalies are values strictly greater than the
// full-precision threshold; only the reported numbers are rounded.
//
// An empty series yields the zero summary; callers check IsEmpty.
func ComputeStatistics(metrics []models.MetricRecord, sigmaMultiplier float64) models.StatisticsSummary {
	n := len(metrics)
	if n == 0 {
		return models.StatisticsSummary{}
	}

	values := make([]float64, n)
	for i, m := range metrics {
		values[i] = m.MetricValue
	}

	var sum float64

	minV, maxV := values[0], values[0]

	for _, v := range values {
		sum += v

		if v < minV {
			minV = v
		}

		if v > maxV {
			maxV = v
		}
	}

	avg := sum / float64(n)

	var sqDiffs float64
	for _, v := range values {
		d := v - avg
		sqDiffs += d * d
	}

	stdDev := math.Sqrt(sqDiffs / float64(n))
	threshold := avg + sigmaMultiplier*stdDev

	var (
		listed []models.MetricRecord
		count  int
	)

	for _, m := range metrics {
		if !IsAnomalous(m.MetricValue, threshold) {
			continue
		}

		count++

		if len(listed) < MaxListedAnomalies {
			listed = append(listed, m)
		}
	}

	name := metrics[0].MetricName
	if name == "" {
		name = DefaultMetricName
	}

	return models.StatisticsSummary{
		TotalRecords:            n,
		MetricName:              name,
		Average:                 Round2(avg),
		Min:                     Round2(minV),
		Max:                     Round2(maxV),
		StdDev:                  Round2(stdDev),
		AnomalyThreshold:        Round2(threshold),
		SigmaMultiplier:         sigmaMultiplier,
		PotentialAnomaliesCount: count,
		PotentialAnomalies:      listed,
	}
}

// IsAnomalous reports value > threshold. Ties are not anomalies.
func IsAnomalous(value, threshold float64) bool {
	return value > threshold
}

// Round2 rounds to two decimal places. The exact binary value is rounded,
// so 2.675 (stored as 2.67499...) becomes 2.67, and exact ties go to even.
func Round2(v float64) float64 {
	return roundTo(v, 2)
}

// Round1 rounds to one decimal place the same way as Round2.
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

// roundTo relies on strconv's correctly rounded decimal conversion.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}

	return r
}
