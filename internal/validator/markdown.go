// Package validator checks generated reports: the executive summary against
// the computed health label, the anomaly table against the severity bands,
// and the signed metadata block.
package validator

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"madison/internal/analysis"
	"madison/pkg/metadata"
)

// Validation errors.
var (
	ErrHealthMissing   = errors.New("overall system health line is missing")
	ErrHealthUnknown   = errors.New("unknown health label")
	ErrHealthMismatch  = errors.New("health label disagrees with anomaly count")
	ErrInvalidValue    = errors.New("invalid metric value")
	ErrSeverityInvalid = errors.New("severity does not match value")
	ErrTooFewColumns   = errors.New("anomaly row has too few columns")
)

// DefaultSections are the headings every executive summary should carry.
var DefaultSections = []string{"Overall System Health", "Key Findings", "Recommended Actions"}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err     error
	Field   string
	Value   string
	Message string
	Line    int
}

// Error implements error.
func (e ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	SectionsFound   int
	SectionsMissing int
	TotalRows       int
	ValidRows       int
	InvalidRows     int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: []ValidationError{}, Warnings: []string{}}
}

func (r *ValidationResult) fail(e ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, e)
}

// Err joins every error, nil when the result is valid.
func (r *ValidationResult) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}

	return errors.Join(errs...)
}

// healthLine matches "## Overall System Health: WARNING", tolerating bold
// and bracket decoration.
var healthLine = regexp.MustCompile(`(?im)^#{0,6}\s*\**overall system health\**\s*:\s*[\*\[\s]*([a-z]+)`)

// MarkdownValidator validates the markdown written by the narrative step.
type MarkdownValidator struct {
	sections []string
}

// NewMarkdownValidator requires the given section headings, DefaultSections
// when none are given.
func NewMarkdownValidator(sections ...string) *MarkdownValidator {
	if len(sections) == 0 {
		sections = DefaultSections
	}

	return &MarkdownValidator{sections: sections}
}

// ValidateSummary checks that the executive summary states the expected
// health label. Missing sections are reported as warnings.
func (v *MarkdownValidator) ValidateSummary(summary string, expected analysis.Health) *ValidationResult {
	result := newResult()

	match := healthLine.FindStringSubmatchIndex(summary)
	if match == nil {
		result.fail(ValidationError{Err: ErrHealthMissing, Field: "health", Message: ErrHealthMissing.Error()})
	} else {
		raw := summary[match[2]:match[3]]
		line := strings.Count(summary[:match[0]], "\n") + 1

		got, ok := analysis.ParseHealth(raw)

		switch {
		case !ok:
			result.fail(ValidationError{
				Err: ErrHealthUnknown, Field: "health", Value: raw, Line: line,
				Message: fmt.Sprintf("%s: %q", ErrHealthUnknown, raw),
			})
		case got != expected:
			result.fail(ValidationError{
				Err: ErrHealthMismatch, Field: "health", Value: raw, Line: line,
				Message: fmt.Sprintf("%s: summary says %s, computed %s", ErrHealthMismatch, got, expected),
			})
		}
	}

	lower := strings.ToLower(summary)
	for _, section := range v.sections {
		if strings.Contains(lower, strings.ToLower(section)) {
			result.Stats.SectionsFound++

			continue
		}

		result.Stats.SectionsMissing++
		result.Warnings = append(result.Warnings, fmt.Sprintf("section %q not found", section))
	}

	return result
}

// ValidateAnomalyTable checks every row of the "Record ID" table: the value
// column must be numeric and the severity must match the value's band.
func (v *MarkdownValidator) ValidateAnomalyTable(markdown string) *ValidationResult {
	result := newResult()
	inTable := false

	for lineNum, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)

		if !strings.HasPrefix(line, "|") {
			inTable = false

			continue
		}

		if strings.Contains(line, "---") {
			continue
		}

		if !inTable {
			inTable = strings.Contains(strings.ToUpper(line), "RECORD ID")

			continue
		}

		result.Stats.TotalRows++

		if rowErrs := validateRow(line, lineNum+1); len(rowErrs) > 0 {
			result.Stats.InvalidRows++
			for _, e := range rowErrs {
				result.fail(e)
			}

			continue
		}

		result.Stats.ValidRows++
	}

	return result
}

func validateRow(row string, lineNum int) []ValidationError {
	parts := strings.Split(strings.Trim(row, "|"), "|")
	cells := make([]string, 0, len(parts))

	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}

	if len(cells) < 4 {
		return []ValidationError{{
			Err: ErrTooFewColumns, Line: lineNum, Value: row,
			Message: fmt.Sprintf("%s: got %d, expected 4", ErrTooFewColumns, len(cells)),
		}}
	}

	value, err := strconv.ParseFloat(cells[2], 64)
	if err != nil {
		return []ValidationError{{
			Err: ErrInvalidValue, Field: "value", Value: cells[2], Line: lineNum,
			Message: fmt.Sprintf("%s for %s", ErrInvalidValue, cells[0]),
		}}
	}

	if want := analysis.ClassifySeverity(value); string(want) != strings.ToUpper(cells[3]) {
		return []ValidationError{{
			Err: ErrSeverityInvalid, Field: "severity", Value: cells[3], Line: lineNum,
			Message: fmt.Sprintf("%s: %s has %s, expected %s", ErrSeverityInvalid, cells[0], cells[3], want),
		}}
	}

	return nil
}

// ValidateIntegrity checks the integrity of the markdown content using the metadata block.
func (v *MarkdownValidator) ValidateIntegrity(content string) *ValidationResult {
	result := newResult()

	if valid, err := metadata.Verify(content); !valid {
		result.fail(ValidationError{Err: err, Message: fmt.Sprintf("integrity check failed: %v", err)})
	}

	return result
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Rows: %d | Invalid rows: %d | Errors: %d | Warnings: %d",
		status,
		r.Stats.TotalRows,
		r.Stats.InvalidRows,
		len(r.Errors),
		len(r.Warnings),
	)
}

// PrintErrors writes validation errors in readable format.
func (r *ValidationResult) PrintErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Fprintf(w, "  Line %d", err.Line)

			if err.Field != "" {
				fmt.Fprintf(w, " [%s]", err.Field)
			}

			fmt.Fprintf(w, ": %s\n", err.Message)

			continue
		}

		fmt.Fprintf(w, "  %s\n", err.Message)
	}
}

// PrintWarnings writes validation warnings.
func (r *ValidationResult) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}
