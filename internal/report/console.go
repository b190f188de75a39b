package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"madison/internal/formatter"
	"madison/pkg/utils"
)

const (
	consoleLabelWidth  = 16
	consoleTitleWidth  = 100
	consoleDescription = 150
)

// RenderConsole writes the terminal dashboard: health banner, key metrics,
// anomaly table, executive summary and up to MaxConsoleNews news items.
func RenderConsole(w io.Writer, in Input) error {
	bw := bufio.NewWriter(w)
	s := in.Summary
	health := in.Health()

	fmt.Fprintln(bw, AgentName)
	fmt.Fprintln(bw, "AI-powered CPU anomaly detection with news-correlated executive insights")
	fmt.Fprintf(bw, "Report date: %s\n\n", ReportDate(in.generatedAt()))

	fmt.Fprintf(bw, "System Health: %s\n", health)
	fmt.Fprintf(bw, "%d anomalies detected across %d records - threshold at %s%% (%sσ)\n\n",
		s.PotentialAnomaliesCount, s.TotalRecords,
		utils.FormatFloat(s.AnomalyThreshold), utils.FormatFloat(s.SigmaMultiplier))

	if in.NarrativeFallback {
		fmt.Fprintln(bw, "Narrative: generated without the language model")
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "Key Metrics")
	metric := func(label, value string) {
		fmt.Fprintf(bw, "  %s%s\n", formatter.Pad(label, consoleLabelWidth), value)
	}
	metric("Average CPU", utils.FormatFloat(s.Average)+"%")
	metric("Min / Max", utils.FormatFloat(s.Min)+"% / "+utils.FormatFloat(s.Max)+"%")
	metric("Std Deviation", utils.FormatFloat(s.StdDev))
	metric("Anomalies", fmt.Sprintf("%d (threshold %s%%)", s.PotentialAnomaliesCount, utils.FormatFloat(s.AnomalyThreshold)))
	fmt.Fprintln(bw)

	if len(s.PotentialAnomalies) > 0 {
		fmt.Fprintln(bw, "Detected Anomalies")

		for _, line := range formatter.Table(anomalyHeaders, AnomalyRows(s.PotentialAnomalies)) {
			fmt.Fprintln(bw, line)
		}

		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "Executive Summary")
	fmt.Fprintln(bw, strings.TrimSpace(in.ExecutiveSummary))

	if len(in.News) > 0 {
		fmt.Fprintf(bw, "\nNews Context (%d articles)\n", len(in.News))

		news := in.News
		if len(news) > MaxConsoleNews {
			news = news[:MaxConsoleNews]
		}

		for _, n := range news {
			date := "N/A"
			if n.Timestamp != "" {
				date = utils.TruncateRunes(n.Timestamp, 10)
			}

			fmt.Fprintf(bw, "\n- %s\n", formatter.Fit(n.Title, consoleTitleWidth))
			fmt.Fprintf(bw, "  %s - %s\n", n.SourceName, date)

			if desc := utils.TruncateRunes(n.Description, consoleDescription); desc != "" {
				fmt.Fprintf(bw, "  %s\n", desc)
			}

			if n.URL != "" {
				fmt.Fprintf(bw, "  %s\n", n.URL)
			}
		}
	}

	return bw.Flush()
}
