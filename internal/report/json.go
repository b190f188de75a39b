package report

import (
	"encoding/json"
	"regexp"

	"madison/internal/models"
)

// JSONReport is the machine-readable report. Field order is the key order.
type JSONReport struct {
	Metadata         Metadata                 `json:"report_metadata"`
	ExecutiveSummary string                   `json:"executive_summary"`
	AnomalyAnalysis  json.RawMessage          `json:"anomaly_analysis"`
	MetricsSummary   models.StatisticsSummary `json:"metrics_summary"`
	DataSources      *models.SourceCounts     `json:"data_sources"`
}

// Metadata describes how and when a report was produced.
type Metadata struct {
	GeneratedAt       string `json:"generated_at"`
	AgentName         string `json:"agent_name"`
	AIModel           string `json:"ai_model"`
	RunID             string `json:"run_id,omitempty"`
	NarrativeFallback bool   `json:"narrative_fallback"`
}

// jsonSpan matches from the first "{" to the last "}".
var jsonSpan = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseAnalysis extracts the JSON object embedded in the analysis text.
// Text without a brace span yields {}; a span that is not valid JSON yields
// {"raw_analysis": text}.
func ParseAnalysis(text string) json.RawMessage {
	span := jsonSpan.FindString(text)
	if span == "" {
		return json.RawMessage(`{}`)
	}

	if json.Valid([]byte(span)) {
		return json.RawMessage(span)
	}

	raw, err := json.Marshal(map[string]string{"raw_analysis": text})
	if err != nil {
		return json.RawMessage(`{}`)
	}

	return raw
}

// BuildJSON assembles the JSON report.
func BuildJSON(in Input) JSONReport {
	summary := in.Summary
	if summary.PotentialAnomalies == nil {
		summary.PotentialAnomalies = []models.MetricRecord{}
	}

	counts := in.SourceCounts
	if counts == nil {
		counts = models.NewSourceCounts()
	}

	return JSONReport{
		Metadata: Metadata{
			GeneratedAt:       in.generatedAt().UTC().Format("2006-01-02T15:04:05.000000Z"),
			AgentName:         AgentName,
			AIModel:           AIModelLabel,
			RunID:             in.RunID,
			NarrativeFallback: in.NarrativeFallback,
		},
		ExecutiveSummary: in.ExecutiveSummary,
		AnomalyAnalysis:  ParseAnalysis(in.Analysis),
		MetricsSummary:   summary,
		DataSources:      counts,
	}
}

// RenderJSON encodes the report with two-space indentation.
func RenderJSON(in Input) ([]byte, error) {
	return json.MarshalIndent(BuildJSON(in), "", "  ")
}
