package report

import (
	"fmt"
	"strings"

	"madison/internal/analysis"
	"madison/internal/formatter"
	"madison/internal/models"
	"madison/pkg/metadata"
	"madison/pkg/utils"
)

// AnomalyRows turns the listed anomalies into table rows of record id,
// timestamp, value and severity.
func AnomalyRows(anomalies []models.MetricRecord) [][]string {
	rows := make([][]string, 0, len(anomalies))
	for _, a := range anomalies {
		rows = append(rows, []string{
			a.RecordID,
			a.Timestamp,
			utils.FormatFloat(analysis.Round2(a.MetricValue)),
			string(analysis.ClassifySeverity(a.MetricValue)),
		})
	}

	return rows
}

var anomalyHeaders = []string{"Record ID", "Timestamp", "CPU (%)", "Severity"}

// RenderMarkdown returns the executive summary followed by the anomaly table,
// with tables aligned and a signed metadata block appended.
func RenderMarkdown(in Input) (string, error) {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(in.ExecutiveSummary))

	if len(in.Summary.PotentialAnomalies) > 0 {
		b.WriteString("\n\n## Detected Anomalies\n\n")
		b.WriteString(strings.Join(formatter.Table(anomalyHeaders, AnomalyRows(in.Summary.PotentialAnomalies)), "\n"))

		if extra := in.Summary.PotentialAnomaliesCount - len(in.Summary.PotentialAnomalies); extra > 0 {
			fmt.Fprintf(&b, "\n\n_%d more above the threshold not listed._", extra)
		}
	}

	formatted, err := formatter.FormatMarkdown(b.String())
	if err != nil {
		return "", fmt.Errorf("format markdown report: %w", err)
	}

	return metadata.Sign(formatted, in.Validated, &metadata.Metadata{Version: Version, RunID: in.RunID}), nil
}
