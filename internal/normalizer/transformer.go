package normalizer

import (
	"madison/internal/models"
	"madison/pkg/utils"
)

// Dataset is a validated batch split by record variant.
type Dataset struct {
	Metrics  []models.MetricRecord
	News     []models.NewsRecord
	Rejected []Rejection
}

// Len returns the number of accepted records.
func (d *Dataset) Len() int {
	return len(d.Metrics) + len(d.News)
}

// Transformer handles record clean-up and the metric/news split.
type Transformer struct {
	strings *utils.StringHelper
}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{
		strings: utils.NewStringHelper(),
	}
}

// Transform collapses whitespace in news text and splits the batch.
// Input order is preserved within each variant.
func (t *Transformer) Transform(records []models.Record) *Dataset {
	metrics, news := models.SplitRecords(records)

	for i := range news {
		news[i].Title = t.strings.NormalizeWhitespace(news[i].Title)
		news[i].Description = t.strings.NormalizeWhitespace(news[i].Description)
	}

	return &Dataset{Metrics: metrics, News: news}
}
