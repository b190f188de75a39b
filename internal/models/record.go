// Package models defines the normalized record and summary types shared by the
// sources, the statistics engine and the report renderers.
package models

import (
	"errors"
	"fmt"
)

// SourceKind identifies the upstream system a record was fetched from.
type SourceKind string

// Supported source kinds.
const (
	SourceKaggle  SourceKind = "kaggle"
	SourceRSS     SourceKind = "rss"
	SourceNewsAPI SourceKind = "newsapi"
)

// RecordType is the discriminator of the Record union.
type RecordType string

// Record variants.
const (
	RecordTypeMetric RecordType = "metric"
	RecordTypeNews   RecordType = "news"
)

// Record validation errors.
var (
	ErrMissingRecordID    = errors.New("record_id is required")
	ErrUnknownSource      = errors.New("unknown source kind")
	ErrUnknownRecordType  = errors.New("unknown record type")
	ErrRecordTypeMismatch = errors.New("record_type does not match record variant")
)

// Record is a normalized metric or news item. It is implemented only by
// *MetricRecord and *NewsRecord.
type Record interface {
	Header() RecordHeader
	Type() RecordType
	sealed()
}

// RecordHeader holds the fields common to every record variant.
// RecordID is only unique inside a single fetch batch.
type RecordHeader struct {
	RecordID   string     `json:"record_id"`
	Source     SourceKind `json:"source"`
	SourceName string     `json:"source_name"`
	RecordType RecordType `json:"record_type"`
	// Timestamp is ISO-8601 when the source value could be parsed, the raw
	// source string otherwise.
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
}

// Validate checks the common fields.
func (h *RecordHeader) Validate() error {
	if h.RecordID == "" {
		return ErrMissingRecordID
	}

	switch h.Source {
	case SourceKaggle, SourceRSS, SourceNewsAPI:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, h.Source)
	}

	switch h.RecordType {
	case RecordTypeMetric, RecordTypeNews:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecordType, h.RecordType)
	}

	return nil
}

// MetricRecord is a single numeric sample.
type MetricRecord struct {
	RecordHeader
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
	Description string  `json:"description,omitempty"`
}

// NewMetricRecord builds a metric record with the discriminator set.
func NewMetricRecord(header RecordHeader, name string, value float64) *MetricRecord {
	header.RecordType = RecordTypeMetric

	return &MetricRecord{
		RecordHeader: header,
		MetricName:   name,
		MetricValue:  value,
	}
}

// Header returns the common fields.
func (m *MetricRecord) Header() RecordHeader { return m.RecordHeader }

// Type returns RecordTypeMetric.
func (m *MetricRecord) Type() RecordType { return RecordTypeMetric }

func (m *MetricRecord) sealed() {}

// NewsRecord is a single article from a feed or search API.
type NewsRecord struct {
	RecordHeader
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// NewNewsRecord builds a news record with the discriminator set.
func NewNewsRecord(header RecordHeader, title, description, url string) *NewsRecord {
	header.RecordType = RecordTypeNews

	return &NewsRecord{
		RecordHeader: header,
		Title:        title,
		Description:  description,
		URL:          url,
	}
}

// Header returns the common fields.
func (n *NewsRecord) Header() RecordHeader { return n.RecordHeader }

// Type returns RecordTypeNews.
func (n *NewsRecord) Type() RecordType { return RecordTypeNews }

func (n *NewsRecord) sealed() {}

// ValidateRecord validates the header and checks that the discriminator
// agrees with the concrete variant.
func ValidateRecord(r Record) error {
	h := r.Header()
	if err := h.Validate(); err != nil {
		return err
	}

	if h.RecordType != r.Type() {
		return fmt.Errorf("%w: %s is %s", ErrRecordTypeMismatch, h.RecordID, r.Type())
	}

	return nil
}

// SplitRecords separates a mixed batch into metrics and news, preserving the
// input order of each.
func SplitRecords(records []Record) ([]MetricRecord, []NewsRecord) {
	var metrics []MetricRecord

	var news []NewsRecord

	for _, r := range records {
		switch v := r.(type) {
		case *MetricRecord:
			metrics = append(metrics, *v)
		case *NewsRecord:
			news = append(news, *v)
		}
	}

	return metrics, news
}
