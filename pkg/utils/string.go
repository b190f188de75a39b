package utils

import (
	"math"
	"strconv"
	"strings"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateRunes returns the first n runes of str, never splitting a
// multi-byte character.
func TruncateRunes(str string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0

	for i := range str {
		if count == n {
			return str[:i]
		}

		count++
	}

	return str
}

// FormatFloat renders f in its shortest form, keeping a ".0" on whole
// numbers so 30 prints as "30.0" and 34.64 as "34.64".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.Contains(s, ".") {
		return s
	}

	return s + ".0"
}
