package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRecordHeader_Validate(t *testing.T) {
	tests := []struct {
		name    string
		header  RecordHeader
		wantErr error
	}{
		{
			name:   "valid metric header",
			header: RecordHeader{RecordID: "nab_cpu_1", Source: SourceKaggle, RecordType: RecordTypeMetric},
		},
		{
			name:    "missing id",
			header:  RecordHeader{Source: SourceRSS, RecordType: RecordTypeNews},
			wantErr: ErrMissingRecordID,
		},
		{
			name:    "unknown source",
			header:  RecordHeader{RecordID: "x_1", Source: "twitter", RecordType: RecordTypeNews},
			wantErr: ErrUnknownSource,
		},
		{
			name:    "unknown record type",
			header:  RecordHeader{RecordID: "x_1", Source: SourceNewsAPI, RecordType: "video"},
			wantErr: ErrUnknownRecordType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecord_TypeMismatch(t *testing.T) {
	rec := &NewsRecord{RecordHeader: RecordHeader{RecordID: "rss_1", Source: SourceRSS, RecordType: RecordTypeMetric}}

	if err := ValidateRecord(rec); !errors.Is(err, ErrRecordTypeMismatch) {
		t.Errorf("ValidateRecord() error = %v, want %v", err, ErrRecordTypeMismatch)
	}
}

func TestSplitRecords_PreservesOrder(t *testing.T) {
	records := []Record{
		NewMetricRecord(RecordHeader{RecordID: "m1", Source: SourceKaggle}, "cpu_utilization", 10),
		NewNewsRecord(RecordHeader{RecordID: "n1", Source: SourceRSS}, "t1", "", "http://a"),
		NewMetricRecord(RecordHeader{RecordID: "m2", Source: SourceKaggle}, "cpu_utilization", 20),
		NewNewsRecord(RecordHeader{RecordID: "n2", Source: SourceNewsAPI}, "t2", "", "http://b"),
	}

	metrics, news := SplitRecords(records)

	if len(metrics) != 2 || metrics[0].RecordID != "m1" || metrics[1].RecordID != "m2" {
		t.Errorf("metrics = %+v, want m1, m2", metrics)
	}

	if len(news) != 2 || news[0].RecordID != "n1" || news[1].RecordID != "n2" {
		t.Errorf("news = %+v, want n1, n2", news)
	}
}

func TestMetricRecord_JSONIsFlat(t *testing.T) {
	rec := NewMetricRecord(RecordHeader{
		RecordID:   "nab_cpu_1",
		Source:     SourceKaggle,
		SourceName: "NAB",
		Timestamp:  "2014-02-14 14:27:00",
		Category:   "infrastructure",
	}, "cpu_utilization", 42.5)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got["record_type"] != "metric" {
		t.Errorf("record_type = %v, want metric", got["record_type"])
	}

	if got["metric_value"] != 42.5 {
		t.Errorf("metric_value = %v, want 42.5", got["metric_value"])
	}

	if _, nested := got["RecordHeader"]; nested {
		t.Error("header fields should be flattened into the record object")
	}
}

func TestToNewsContext_Limit(t *testing.T) {
	news := []NewsRecord{
		*NewNewsRecord(RecordHeader{SourceName: "A", Timestamp: "t1"}, "one", "", ""),
		*NewNewsRecord(RecordHeader{SourceName: "B", Timestamp: "t2"}, "two", "", ""),
		*NewNewsRecord(RecordHeader{SourceName: "C", Timestamp: "t3"}, "three", "", ""),
	}

	ctx := ToNewsContext(news, 2)
	if len(ctx) != 2 {
		t.Fatalf("len = %d, want 2", len(ctx))
	}

	if ctx[1].Source != "B" || ctx[1].Title != "two" || ctx[1].Date != "t2" {
		t.Errorf("ctx[1] = %+v", ctx[1])
	}
}
