package narrative

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"madison/internal/analysis"
	"madison/internal/models"
	"madison/pkg/utils"
)

// Fallback analysis summaries.
const (
	noKeySummary    = "AI analysis unavailable - no API key configured."
	disabledSummary = "AI analysis unavailable - narrative generation disabled."
	failedSummary   = "AI analysis unavailable - narrative generation failed."
)

// ConfirmedAnomaly is one entry of the analysis JSON.
type ConfirmedAnomaly struct {
	RecordID  string            `json:"record_id"`
	Timestamp string            `json:"timestamp"`
	Severity  analysis.Severity `json:"severity"`
	Reason    string            `json:"reason"`
	Value     float64           `json:"value"`
}

// FallbackReport is the analysis produced without a model.
type FallbackReport struct {
	AnalysisSummary    string             `json:"analysis_summary"`
	RiskLevel          analysis.RiskLevel `json:"risk_level"`
	ConfirmedAnomalies []ConfirmedAnomaly `json:"confirmed_anomalies"`
}

// BuildFallbackReport lists every listed anomaly with its severity tier.
// cause selects the summary line and may be nil.
func BuildFallbackReport(s models.StatisticsSummary, cause error) FallbackReport {
	summary := failedSummary

	switch {
	case cause == nil, errors.Is(cause, ErrNoAPIKey):
		summary = noKeySummary
	case errors.Is(cause, ErrDisabled):
		summary = disabledSummary
	}

	confirmed := make([]ConfirmedAnomaly, 0, len(s.PotentialAnomalies))
	for _, a := range s.PotentialAnomalies {
		confirmed = append(confirmed, ConfirmedAnomaly{
			RecordID:  a.RecordID,
			Timestamp: a.Timestamp,
			Value:     a.MetricValue,
			Severity:  analysis.ClassifySeverity(a.MetricValue),
			Reason: fmt.Sprintf("Value %s%% exceeds threshold %s%%",
				utils.FormatFloat(a.MetricValue), utils.FormatFloat(s.AnomalyThreshold)),
		})
	}

	return FallbackReport{
		AnalysisSummary:    summary,
		ConfirmedAnomalies: confirmed,
		RiskLevel:          analysis.RiskFor(s.PotentialAnomaliesCount),
	}
}

// FallbackAnalysis renders BuildFallbackReport as indented JSON.
func FallbackAnalysis(s models.StatisticsSummary, cause error) string {
	out, err := json.MarshalIndent(BuildFallbackReport(s, cause), "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"analysis_summary": %q}`, failedSummary)
	}

	return string(out)
}

// AlertLevel is the recommended alerting threshold: 90% of the anomaly
// threshold, rounded to one decimal.
func AlertLevel(s models.StatisticsSummary) float64 {
	return analysis.Round1(s.AnomalyThreshold * 0.9)
}

// FallbackSummary is the executive summary produced without a model.
func FallbackSummary(s models.StatisticsSummary) string {
	threshold := utils.FormatFloat(s.AnomalyThreshold)

	var b strings.Builder

	b.WriteString("# Madison Transparency Agent - Executive Summary\n\n")
	fmt.Fprintf(&b, "## Overall System Health: %s\n\n", analysis.HealthFor(s.PotentialAnomaliesCount))
	b.WriteString("## Key Findings\n")
	fmt.Fprintf(&b, "- Analyzed %d CPU utilization records from the NAB benchmark dataset.\n", s.TotalRecords)
	fmt.Fprintf(&b, "- Detected %d potential anomalies above the %s%% threshold (%sσ).\n",
		s.PotentialAnomaliesCount, threshold, utils.FormatFloat(s.SigmaMultiplier))
	fmt.Fprintf(&b, "- CPU utilization ranged from %s%% to %s%% with an average of %s%%.\n\n",
		utils.FormatFloat(s.Min), utils.FormatFloat(s.Max), utils.FormatFloat(s.Average))
	b.WriteString("## Recommended Actions\n")
	fmt.Fprintf(&b, "1. Investigate timestamps where CPU exceeded %s%%.\n", threshold)
	fmt.Fprintf(&b, "2. Set up real-time alerting for values above %s%%.\n", utils.FormatFloat(AlertLevel(s)))
	b.WriteString("3. Review workload scaling policies.\n")

	return b.String()
}
