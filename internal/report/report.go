// Package report renders the result of one analysis run as a JSON document,
// a styled HTML page, a signed markdown file and a console dashboard.
package report

import (
	"time"

	"madison/internal/analysis"
	"madison/internal/models"
)

// Report identity written into every output.
const (
	AgentName    = "Madison Transparency Agent"
	AIModelLabel = "GPT-4o-mini"
	Version      = "1.0"
)

// MaxConsoleNews is the number of news items shown on the console.
const MaxConsoleNews = 15

// Input is everything a renderer needs from one run.
type Input struct {
	GeneratedAt      time.Time
	SourceCounts     *models.SourceCounts
	RunID            string
	Analysis         string
	ExecutiveSummary string
	News             []models.NewsRecord
	Summary          models.StatisticsSummary
	// Validated is set when the executive summary agreed with the computed
	// health label.
	Validated         bool
	NarrativeFallback bool
}

// Health is the label derived from the anomaly count.
func (in Input) Health() analysis.Health {
	return analysis.HealthFor(in.Summary.PotentialAnomaliesCount)
}

func (in Input) generatedAt() time.Time {
	if in.GeneratedAt.IsZero() {
		return time.Now()
	}

	return in.GeneratedAt
}

// HealthColor is the accent colour of a health label.
func HealthColor(h analysis.Health) string {
	switch h {
	case analysis.HealthHealthy:
		return "#28a745"
	case analysis.HealthCritical:
		return "#dc3545"
	default:
		return "#FFC107"
	}
}

// ReportDate formats t the way report headers show it.
func ReportDate(t time.Time) string {
	return t.Format("Monday, January 02, 2006")
}
