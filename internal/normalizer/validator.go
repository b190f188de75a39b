package normalizer

import (
	"errors"
	"fmt"

	"madison/internal/models"
)

// Validation errors.
var (
	ErrNilRecord          = errors.New("nil record")
	ErrDuplicateRecordID  = errors.New("duplicate record_id in batch")
	ErrMetricMissingName  = errors.New("metric missing metric_name")
	ErrNewsMissingTitle   = errors.New("news missing title")
	ErrNewsMissingURL     = errors.New("news missing url")
	ErrBatchHasRejections = errors.New("batch contains invalid records")
)

// Rejection is a record that failed validation.
type Rejection struct {
	Err      error
	RecordID string
	Index    int
}

func (r Rejection) Error() string {
	return fmt.Sprintf("record %d (%s): %v", r.Index, r.RecordID, r.Err)
}

func (r Rejection) Unwrap() error {
	return r.Err
}

// Validator handles record validation.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every record of one fetch batch and returns the ones that
// fail. IDs only need to be unique within the batch.
func (v *Validator) Validate(records []models.Record) []Rejection {
	var rejected []Rejection

	seen := make(map[string]bool, len(records))

	for i, r := range records {
		if r == nil {
			rejected = append(rejected, Rejection{Index: i, Err: ErrNilRecord})

			continue
		}

		id := r.Header().RecordID

		if err := v.validateOne(r); err != nil {
			rejected = append(rejected, Rejection{Index: i, RecordID: id, Err: err})

			continue
		}

		if seen[id] {
			rejected = append(rejected, Rejection{Index: i, RecordID: id, Err: ErrDuplicateRecordID})

			continue
		}

		seen[id] = true
	}

	return rejected
}

func (v *Validator) validateOne(r models.Record) error {
	if err := models.ValidateRecord(r); err != nil {
		return err
	}

	switch rec := r.(type) {
	case *models.MetricRecord:
		if rec.MetricName == "" {
			return ErrMetricMissingName
		}
	case *models.NewsRecord:
		if rec.Title == "" {
			return ErrNewsMissingTitle
		}

		if rec.URL == "" {
			return ErrNewsMissingURL
		}
	}

	return nil
}
