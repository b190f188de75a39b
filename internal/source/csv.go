package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"madison/internal/config"
	"madison/internal/models"
	"madison/pkg/utils"
)

// CSV source defaults.
const (
	DefaultSampleStep    = 200
	DefaultCSVPrefix     = "nab_cpu"
	DefaultCSVSourceName = "NAB - Numenta Anomaly Benchmark"
	MetricName           = "cpu_utilization"
	metricDescription    = "AWS CPU utilization metric"
	metricCategory       = "infrastructure"
)

// Row errors.
var (
	ErrMissingColumn = errors.New("missing value column")
	ErrInvalidValue  = errors.New("value is not a finite number")
)

// CSVSource reads a timestamp,value series and samples every Nth row.
type CSVSource struct {
	deps Deps
	cfg  config.SourceConfig
}

// NewCSVSource creates a CSV metric source.
func NewCSVSource(c config.SourceConfig, deps Deps) *CSVSource {
	if c.SampleStep < 1 {
		c.SampleStep = DefaultSampleStep
	}

	c.Prefix = orDefault(c.Prefix, DefaultCSVPrefix)
	c.Name = orDefault(c.Name, DefaultCSVSourceName)

	return &CSVSource{cfg: c, deps: deps}
}

// Name returns the display name.
func (s *CSVSource) Name() string { return s.cfg.Name }

// CountKey returns the data_sources key.
func (s *CSVSource) CountKey() string { return s.cfg.Key }

// Fetch downloads (or reads) the file and parses it.
func (s *CSVSource) Fetch(ctx context.Context) (Batch, error) {
	body, err := s.deps.Fetcher.FetchSource(ctx, &s.cfg)
	if err != nil {
		return Batch{}, fmt.Errorf("fetch %s: %w", s.cfg.Name, err)
	}

	batch := s.Parse(string(body))
	if len(batch.ParseErrors) > 0 {
		s.deps.Log.Warn("dropped malformed rows",
			"source", s.cfg.Name,
			"from", utils.RedactURL(s.cfg.GetSource()),
			"dropped", len(batch.ParseErrors),
			"first", batch.ParseErrors[0].Error(),
		)
	}

	return batch, nil
}

// Parse converts CSV text into metric records. The first line is a header.
// Data rows 1, 1+N, 1+2N... are visited; blank visited rows are skipped and
// malformed ones are reported without stopping the batch.
func (s *CSVSource) Parse(text string) Batch {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var batch Batch

	accepted := 0

	for i := 1; i < len(lines); i += s.cfg.SampleStep {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			batch.ParseErrors = append(batch.ParseErrors, ParseError{Row: i, Err: ErrMissingColumn})

			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			batch.ParseErrors = append(batch.ParseErrors, ParseError{
				Row: i,
				Err: fmt.Errorf("%w: %q", ErrInvalidValue, parts[1]),
			})

			continue
		}

		accepted++

		rec := models.NewMetricRecord(models.RecordHeader{
			RecordID:   fmt.Sprintf("%s_%d", s.cfg.Prefix, accepted),
			Source:     models.SourceKaggle,
			SourceName: s.cfg.Name,
			Timestamp:  strings.TrimSpace(parts[0]),
			Category:   metricCategory,
		}, MetricName, value)
		rec.Description = metricDescription

		batch.Records = append(batch.Records, rec)
	}

	return batch
}
