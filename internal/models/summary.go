package models

// StatisticsSummary is the immutable result of one statistics run over a
// metric series. Numeric fields are rounded to two decimals for display.
type StatisticsSummary struct {
	MetricName              string         `json:"metric_name"`
	PotentialAnomalies      []MetricRecord `json:"potential_anomalies"`
	TotalRecords            int            `json:"total_records"`
	PotentialAnomaliesCount int            `json:"potential_anomalies_count"`
	Average                 float64        `json:"average"`
	Min                     float64        `json:"min"`
	Max                     float64        `json:"max"`
	StdDev                  float64        `json:"std_dev"`
	AnomalyThreshold        float64        `json:"anomaly_threshold"`
	SigmaMultiplier         float64        `json:"sigma_multiplier"`
}

// IsEmpty reports whether the summary is the "no metrics loaded" sentinel.
func (s StatisticsSummary) IsEmpty() bool {
	return s.TotalRecords == 0
}

// NewsContext is the reduced news item handed to the narrative generator.
type NewsContext struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Date   string `json:"date"`
}

// ToNewsContext converts up to limit news records into narrative context.
func ToNewsContext(news []NewsRecord, limit int) []NewsContext {
	if limit >= 0 && len(news) > limit {
		news = news[:limit]
	}

	out := make([]NewsContext, 0, len(news))
	for _, n := range news {
		out = append(out, NewsContext{Source: n.SourceName, Title: n.Title, Date: n.Timestamp})
	}

	return out
}
