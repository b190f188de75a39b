package normalizer

import "madison/internal/models"

func metric(id string, v float64) *models.MetricRecord {
	return models.NewMetricRecord(models.RecordHeader{RecordID: id, Source: models.SourceKaggle}, "cpu_utilization", v)
}

func article(id, title, url string) *models.NewsRecord {
	return models.NewNewsRecord(models.RecordHeader{RecordID: id, Source: models.SourceRSS}, title, "", url)
}
