package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TotalCountKey is the key of the summed count in SourceCounts.
const TotalCountKey = "total"

// SourceCounts records how many records each source contributed, in the
// order the sources were first seen. It encodes as a JSON object with a
// trailing "total" key.
type SourceCounts struct {
	counts map[string]int
	keys   []string
}

// NewSourceCounts returns an empty set of counts.
func NewSourceCounts() *SourceCounts {
	return &SourceCounts{counts: map[string]int{}}
}

// Set stores n for key, keeping the first-seen position of the key.
func (c *SourceCounts) Set(key string, n int) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}

	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}

	c.counts[key] = n
}

// Get returns the count for key, zero when unknown.
func (c *SourceCounts) Get(key string) int {
	if c == nil {
		return 0
	}

	return c.counts[key]
}

// Keys returns the source keys in insertion order, without "total".
func (c *SourceCounts) Keys() []string {
	if c == nil {
		return nil
	}

	return append([]string(nil), c.keys...)
}

// Total sums every source.
func (c *SourceCounts) Total() int {
	if c == nil {
		return 0
	}

	total := 0
	for _, n := range c.counts {
		total += n
	}

	return total
}

// MarshalJSON writes the counts in insertion order followed by "total".
func (c *SourceCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for _, key := range c.Keys() {
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.counts[key]))
		buf.WriteByte(',')
	}

	buf.WriteString(`"` + TotalCountKey + `":`)
	buf.WriteString(strconv.Itoa(c.Total()))
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
