package analysis

// Severity is the absolute-value tier of a metric sample on the 0-100 scale.
type Severity string

// Severity tiers.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// Severity band boundaries (percent).
const (
	criticalAbove = 80.0
	highAbove     = 60.0
)

// ClassifySeverity maps a value to its tier: >80 CRITICAL, >60 HIGH, anything
// else (NaN included) MEDIUM. The bands ignore the sigma threshold, so a
// statistically anomalous value at or below 60 is still MEDIUM.
func ClassifySeverity(value float64) Severity {
	switch {
	case value > criticalAbove:
		return SeverityCritical
	case value > highAbove:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// RiskLevel is the coarse level reported by the statistics-only analysis.
type RiskLevel string

// Risk levels.
const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
)

// RiskFor returns HIGH when more than three anomalies were found.
func RiskFor(anomalyCount int) RiskLevel {
	if anomalyCount > 3 {
		return RiskHigh
	}

	return RiskMedium
}
