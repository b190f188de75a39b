package analysis

import "strings"

// Health is the overall system health label shown on reports.
type Health string

// Health labels.
const (
	HealthHealthy  Health = "HEALTHY"
	HealthWarning  Health = "WARNING"
	HealthCritical Health = "CRITICAL"
)

// criticalAnomalyCount is the largest count still labelled WARNING.
const criticalAnomalyCount = 5

// HealthFor labels an anomaly count: 0 HEALTHY, 1-5 WARNING, >5 CRITICAL.
func HealthFor(anomalyCount int) Health {
	switch {
	case anomalyCount <= 0:
		return HealthHealthy
	case anomalyCount > criticalAnomalyCount:
		return HealthCritical
	default:
		return HealthWarning
	}
}

// ParseHealth matches a label case-insensitively. ok is false for anything else.
func ParseHealth(s string) (Health, bool) {
	switch h := Health(strings.ToUpper(strings.TrimSpace(s))); h {
	case HealthHealthy, HealthWarning, HealthCritical:
		return h, true
	}

	return "", false
}
