package report

import (
	"bytes"
	"fmt"
	"html/template"

	"madison/pkg/utils"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Madison Transparency Agent Report</title>
<style>
body{font-family:Arial,sans-serif;max-width:800px;margin:0 auto;padding:20px;background:#f5f5f5}
.container{background:white;padding:30px;border-radius:8px;box-shadow:0 2px 8px rgba(0,0,0,0.1)}
h1{color:#1E3A5F;border-bottom:2px solid #1E3A5F;padding-bottom:10px}
h2{color:#2E5A8F}
.health{background-color:{{.Color}}22;padding:15px;border-radius:5px;border-left:4px solid {{.Color}};margin:15px 0}
.stat{background:#E8F4FD;padding:10px;margin:5px 0;border-radius:4px}
.action{background:#E8F5E9;padding:10px;margin:5px 0;border-radius:4px}
pre{background:#f4f4f4;padding:12px;border-radius:6px;overflow-x:auto;font-size:0.85em}
</style>
</head>
<body>
<div class="container">
<h1>Madison Transparency Agent</h1>
<p>Report Generated: {{.Date}}</p>
<div class="health"><strong>System Health: {{.Health}}</strong><br>{{.Count}} anomalies detected in {{.Total}} records</div>

<h2>Key Metrics</h2>
<div class="stat">Records Analyzed: {{.Total}}</div>
<div class="stat">Average CPU: {{.Average}}%</div>
<div class="stat">Min CPU: {{.Min}}% | Max CPU: {{.Max}}%</div>
<div class="stat">Std Deviation: {{.StdDev}}</div>
<div class="stat">Anomaly Threshold: {{.Threshold}}%</div>
<div class="stat">Anomalies Found: {{.Count}}</div>

<h2>Executive Summary</h2>
<pre>{{.ExecutiveSummary}}</pre>

<h2>Anomaly Analysis</h2>
<pre>{{.Analysis}}</pre>

<p><em>Powered by Madison Transparency Agent + OpenAI GPT-4o-mini</em></p>
</div>
</body>
</html>
`))

type htmlView struct {
	Color            template.CSS
	Date             string
	Health           string
	Average          string
	Min              string
	Max              string
	StdDev           string
	Threshold        string
	ExecutiveSummary string
	Analysis         string
	Count            int
	Total            int
}

// RenderHTML renders the long-form HTML report. Narrative text is escaped.
func RenderHTML(in Input) ([]byte, error) {
	s := in.Summary
	health := in.Health()

	view := htmlView{
		Color:            template.CSS(HealthColor(health)),
		Date:             ReportDate(in.generatedAt()),
		Health:           string(health),
		Count:            s.PotentialAnomaliesCount,
		Total:            s.TotalRecords,
		Average:          utils.FormatFloat(s.Average),
		Min:              utils.FormatFloat(s.Min),
		Max:              utils.FormatFloat(s.Max),
		StdDev:           utils.FormatFloat(s.StdDev),
		Threshold:        utils.FormatFloat(s.AnomalyThreshold),
		ExecutiveSummary: in.ExecutiveSummary,
		Analysis:         in.Analysis,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}

	return buf.Bytes(), nil
}
