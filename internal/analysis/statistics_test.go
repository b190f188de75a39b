package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madison/internal/models"
)

func series(values ...float64) []models.MetricRecord {
	out := make([]models.MetricRecord, len(values))
	for i, v := range values {
		out[i] = *models.NewMetricRecord(models.RecordHeader{
			RecordID: fmt.Sprintf("nab_cpu_%d", i+1),
			Source:   models.SourceKaggle,
		}, "cpu_utilization", v)
	}

	return out
}

func TestComputeStatistics_Empty(t *testing.T) {
	s := ComputeStatistics(nil, DefaultSigmaMultiplier)

	assert.True(t, s.IsEmpty())
	assert.Zero(t, s.PotentialAnomaliesCount)
	assert.Empty(t, s.PotentialAnomalies)
}

func TestComputeStatistics_SingleSpike(t *testing.T) {
	s := ComputeStatistics(series(10, 10, 10, 90), 1.5)

	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, "cpu_utilization", s.MetricName)
	assert.Equal(t, 30.0, s.Average)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 90.0, s.Max)
	assert.Equal(t, 34.64, s.StdDev)
	assert.Equal(t, 81.96, s.AnomalyThreshold)

	require.Equal(t, 1, s.PotentialAnomaliesCount)
	require.Len(t, s.PotentialAnomalies, 1)
	assert.Equal(t, 90.0, s.PotentialAnomalies[0].MetricValue)
	assert.Equal(t, "nab_cpu_4", s.PotentialAnomalies[0].RecordID)
	assert.Equal(t, SeverityCritical, ClassifySeverity(s.PotentialAnomalies[0].MetricValue))
}

func TestComputeStatistics_NoAnomalyBelowThreshold(t *testing.T) {
	s := ComputeStatistics(series(50, 55, 45, 50), 1.5)

	assert.Equal(t, 50.0, s.Average)
	assert.Equal(t, 3.54, s.StdDev)
	assert.Equal(t, 55.3, s.AnomalyThreshold)
	assert.Zero(t, s.PotentialAnomaliesCount)
	assert.Empty(t, s.PotentialAnomalies)
}

func TestComputeStatistics_PopulationStdDev(t *testing.T) {
	// Sample std-dev (N-1) of this series would be 2.138; population is 2.0.
	s := ComputeStatistics(series(2, 4, 4, 4, 5, 5, 7, 9), 1)

	assert.Equal(t, 5.0, s.Average)
	assert.Equal(t, 2.0, s.StdDev)
	assert.Equal(t, 7.0, s.AnomalyThreshold)
	assert.Equal(t, 1, s.PotentialAnomaliesCount, "7 equals the threshold and is not an anomaly")
}

func TestComputeStatistics_ZeroMultiplier(t *testing.T) {
	s := ComputeStatistics(series(1, 2, 3, 4, 5), 0)

	assert.Equal(t, s.Average, s.AnomalyThreshold)
	require.Equal(t, 2, s.PotentialAnomaliesCount)
	assert.Equal(t, 4.0, s.PotentialAnomalies[0].MetricValue)
	assert.Equal(t, 5.0, s.PotentialAnomalies[1].MetricValue)
}

func TestComputeStatistics_ConstantSeries(t *testing.T) {
	s := ComputeStatistics(series(42, 42, 42), 2)

	assert.Zero(t, s.StdDev)
	assert.Equal(t, 42.0, s.AnomalyThreshold)
	assert.Zero(t, s.PotentialAnomaliesCount)
}

func TestComputeStatistics_CapsListButNotCount(t *testing.T) {
	values := make([]float64, 0, 40)
	for i := 0; i < 25; i++ {
		values = append(values, 1)
	}

	for i := 0; i < 15; i++ {
		values = append(values, 100+float64(i))
	}

	s := ComputeStatistics(series(values...), 0)

	assert.Equal(t, 15, s.PotentialAnomaliesCount)
	require.Len(t, s.PotentialAnomalies, MaxListedAnomalies)

	for i, a := range s.PotentialAnomalies {
		assert.Equal(t, 100+float64(i), a.MetricValue, "anomalies keep input order")
	}
}

func TestComputeStatistics_OrderNotMagnitude(t *testing.T) {
	s := ComputeStatistics(series(95, 1, 1, 1, 1, 1, 1, 99, 1, 97), 0.5)

	require.Equal(t, 3, s.PotentialAnomaliesCount)
	assert.Equal(t, []float64{95, 99, 97}, []float64{
		s.PotentialAnomalies[0].MetricValue,
		s.PotentialAnomalies[1].MetricValue,
		s.PotentialAnomalies[2].MetricValue,
	})
}

func TestComputeStatistics_ComparesUnroundedThreshold(t *testing.T) {
	// Full threshold is 31.5475; the reported one rounds up to 31.55.
	// 31.548 sits between them and must still be flagged.
	metrics := series(10, 20, 30, 31.548)
	s := ComputeStatistics(metrics, 1)

	assert.Equal(t, 31.55, s.AnomalyThreshold)
	require.Equal(t, 1, s.PotentialAnomaliesCount)
	assert.Equal(t, "nab_cpu_4", s.PotentialAnomalies[0].RecordID)

	full := fullThreshold(metrics, 1)
	for _, m := range metrics {
		listed := contains(s.PotentialAnomalies, m.RecordID)
		assert.Equal(t, m.MetricValue > full, listed, "record %s", m.RecordID)
	}
}

func TestComputeStatistics_DefaultMetricName(t *testing.T) {
	metrics := series(1, 2)
	metrics[0].MetricName = ""

	assert.Equal(t, DefaultMetricName, ComputeStatistics(metrics, 1).MetricName)
}

func TestComputeStatistics_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 200; run++ {
		n := 1 + rng.IntN(60)
		values := make([]float64, n)

		for i := range values {
			values[i] = rng.Float64() * 100
		}

		k := rng.Float64() * 3
		metrics := series(values...)

		first := ComputeStatistics(metrics, k)
		second := ComputeStatistics(metrics, k)

		if !reflect.DeepEqual(first, second) {
			t.Fatalf("run %d: results differ between identical calls", run)
		}

		if first.StdDev < 0 {
			t.Fatalf("run %d: std_dev %v < 0", run, first.StdDev)
		}

		if first.AnomalyThreshold < first.Average {
			t.Fatalf("run %d: threshold %v < average %v", run, first.AnomalyThreshold, first.Average)
		}

		full := fullThreshold(metrics, k)
		want := 0

		for _, m := range metrics {
			if m.MetricValue > full {
				want++
			}
		}

		if first.PotentialAnomaliesCount != want {
			t.Fatalf("run %d: count = %d, want %d", run, first.PotentialAnomaliesCount, want)
		}

		for _, a := range first.PotentialAnomalies {
			if !(a.MetricValue > full) {
				t.Fatalf("run %d: %v listed but not above %v", run, a.MetricValue, full)
			}
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{34.641016, 34.64},
		{81.961524, 81.96},
		{3.535534, 3.54},
		{-1.005, -1.0},
		{0, 0},
		{2.675, 2.67},
		{0.125, 0.12},
		{0.375, 0.38},
		{1.0049999, 1.0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{73.764, 73.8},
		{0.25, 0.2},
		{0.35, 0.3},
		{49.77, 49.8},
	}

	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeStatistics_RoundsBinaryValue(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.125, 0.12},
		{2.675, 2.67},
	}

	for _, tt := range tests {
		s := ComputeStatistics(series(tt.in), DefaultSigmaMultiplier)

		if s.Average != tt.want || s.Min != tt.want || s.Max != tt.want || s.AnomalyThreshold != tt.want {
			t.Errorf("ComputeStatistics([%v]) = avg %v min %v max %v threshold %v, want %v",
				tt.in, s.Average, s.Min, s.Max, s.AnomalyThreshold, tt.want)
		}
	}
}

func fullThreshold(metrics []models.MetricRecord, k float64) float64 {
	var sum float64
	for _, m := range metrics {
		sum += m.MetricValue
	}

	avg := sum / float64(len(metrics))

	var sq float64
	for _, m := range metrics {
		sq += (m.MetricValue - avg) * (m.MetricValue - avg)
	}

	return avg + k*math.Sqrt(sq/float64(len(metrics)))
}

func contains(records []models.MetricRecord, id string) bool {
	for _, r := range records {
		if r.RecordID == id {
			return true
		}
	}

	return false
}
