package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"madison/internal/models"
	"madison/pkg/utils"
)

// MaxNewsContext is the number of news items passed to the summary prompt.
const MaxNewsContext = 10

// AnalysisPrompt asks the model to confirm and classify the flagged points.
func AnalysisPrompt(s models.StatisticsSummary) string {
	anomalies := s.PotentialAnomalies
	if anomalies == nil {
		anomalies = []models.MetricRecord{}
	}

	anomaliesJSON, err := json.MarshalIndent(anomalies, "", "  ")
	if err != nil {
		anomaliesJSON = []byte("[]")
	}

	var b strings.Builder

	b.WriteString("You are a KPI Anomaly Detection Agent for the Madison Transparency system. ")
	b.WriteString("Analyze the following CPU utilization metrics and identify anomalies.\n\n")
	b.WriteString("## Metrics Summary:\n")
	fmt.Fprintf(&b, "- Total Records: %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "- Metric: %s\n", s.MetricName)
	fmt.Fprintf(&b, "- Average: %s%%\n", utils.FormatFloat(s.Average))
	fmt.Fprintf(&b, "- Min: %s%%\n", utils.FormatFloat(s.Min))
	fmt.Fprintf(&b, "- Max: %s%%\n", utils.FormatFloat(s.Max))
	fmt.Fprintf(&b, "- Std Deviation: %s\n", utils.FormatFloat(s.StdDev))
	fmt.Fprintf(&b, "- Anomaly Threshold (%s σ): %s%%\n", utils.FormatFloat(s.SigmaMultiplier), utils.FormatFloat(s.AnomalyThreshold))
	fmt.Fprintf(&b, "- Potential Anomalies Found: %d\n\n", s.PotentialAnomaliesCount)
	b.WriteString("## Potential Anomaly Records:\n")
	b.Write(anomaliesJSON)
	b.WriteString(`

## Your Task:
1. Analyze the metrics and confirm which are true anomalies
2. Classify each anomaly severity: CRITICAL (>80%), HIGH (60-80%), MEDIUM (40-60%)
3. Identify any patterns (time-based, consecutive spikes, etc.)

Respond in this JSON format:
{
  "analysis_summary": "Brief overview of findings",
  "confirmed_anomalies": [
    {
      "record_id": "xxx",
      "timestamp": "xxx",
      "value": xxx,
      "severity": "CRITICAL/HIGH/MEDIUM",
      "reason": "Why this is anomalous"
    }
  ],
  "patterns_detected": ["pattern1", "pattern2"],
  "risk_level": "HIGH/MEDIUM/LOW",
  "recommended_actions": ["action1", "action2"]
}`)

	return b.String()
}

// SummaryPrompt asks for the executive summary from the analysis text and
// up to MaxNewsContext news items.
func SummaryPrompt(analysis string, news []models.NewsContext) string {
	if len(news) > MaxNewsContext {
		news = news[:MaxNewsContext]
	}

	if news == nil {
		news = []models.NewsContext{}
	}

	newsJSON, err := json.MarshalIndent(news, "", "  ")
	if err != nil {
		newsJSON = []byte("[]")
	}

	var b strings.Builder

	b.WriteString("You are the Insight Narrator for the Madison Transparency Agent. ")
	b.WriteString("Your job is to generate clear, business-friendly explanations of KPI anomalies.\n\n")
	b.WriteString("## Anomaly Analysis Results:\n")
	b.WriteString(analysis)
	b.WriteString("\n\n## Recent News Context:\n")
	b.Write(newsJSON)
	b.WriteString(`

## Your Task:
Generate a professional executive summary that:
1. Summarizes the key findings in plain English (no technical jargon)
2. Correlates anomalies with any relevant news if applicable
3. Provides actionable recommendations for stakeholders
4. Rates overall system health: HEALTHY / WARNING / CRITICAL

Respond in this format:

# Madison Transparency Agent - Executive Summary

## Overall System Health: [HEALTHY/WARNING/CRITICAL]

## Key Findings
[2-3 bullet points summarizing the most important discoveries]

## Anomaly Details
[Brief description of each critical/high anomaly in business terms]

## Potential Business Context
[Any correlations with news or market events]

## Recommended Actions
[3-5 specific, actionable recommendations]

## Next Steps
[What should stakeholders do immediately]`)

	return b.String()
}
