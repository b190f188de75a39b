// Package normalizer validates fetched record batches and splits them into
// metric and news series.
package normalizer

import (
	"fmt"

	"madison/internal/models"
)

// Processor handles validation and transformation of one batch.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	strict      bool
}

// NewProcessor creates a processor that drops invalid records.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// NewStrictProcessor creates a processor that fails on the first batch
// containing an invalid record.
func NewStrictProcessor() *Processor {
	p := NewProcessor()
	p.strict = true

	return p
}

// Process validates records and returns the accepted ones split by type.
func (p *Processor) Process(records []models.Record) (*Dataset, error) {
	// 1. Validate the input data
	rejected := p.validator.Validate(records)
	if len(rejected) > 0 && p.strict {
		return nil, fmt.Errorf("%w: %d rejected, first: %w", ErrBatchHasRejections, len(rejected), rejected[0])
	}

	// 2. Drop rejected records
	accepted := records
	if len(rejected) > 0 {
		skip := make(map[int]bool, len(rejected))
		for _, r := range rejected {
			skip[r.Index] = true
		}

		accepted = make([]models.Record, 0, len(records)-len(rejected))

		for i, r := range records {
			if !skip[i] {
				accepted = append(accepted, r)
			}
		}
	}

	// 3. Transform the data
	ds := p.transformer.Transform(accepted)
	ds.Rejected = rejected

	return ds, nil
}
