package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madison/internal/config"
	"madison/internal/models"
)

func metrics(t *testing.T, b Batch) []models.MetricRecord {
	t.Helper()

	m, news := models.SplitRecords(b.Records)
	require.Empty(t, news)

	return m
}

func TestCSVSource_Parse_SampleStep(t *testing.T) {
	var sb strings.Builder

	sb.WriteString("timestamp,value\n")

	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "2014-05-14 01:%02d:00,%d.5\n", i, i)
	}

	src := NewCSVSource(config.SourceConfig{SampleStep: 3}, testDeps())
	got := metrics(t, src.Parse(sb.String()))

	// Rows 1, 4, 7, 10 hold values 0.5, 3.5, 6.5, 9.5.
	require.Len(t, got, 4)
	assert.Equal(t, []float64{0.5, 3.5, 6.5, 9.5}, []float64{
		got[0].MetricValue, got[1].MetricValue, got[2].MetricValue, got[3].MetricValue,
	})
	assert.Equal(t, "nab_cpu_1", got[0].RecordID)
	assert.Equal(t, "nab_cpu_4", got[3].RecordID)
	assert.Equal(t, "2014-05-14 01:03:00", got[1].Timestamp)
}

func TestCSVSource_Parse_ConstantFields(t *testing.T) {
	src := NewCSVSource(config.SourceConfig{}, testDeps())
	got := metrics(t, src.Parse("timestamp,value\n2014-02-14 14:30:00,12.4\n"))

	require.Len(t, got, 1)
	m := got[0]
	assert.Equal(t, models.SourceKaggle, m.Source)
	assert.Equal(t, DefaultCSVSourceName, m.SourceName)
	assert.Equal(t, models.RecordTypeMetric, m.RecordType)
	assert.Equal(t, MetricName, m.MetricName)
	assert.Equal(t, "AWS CPU utilization metric", m.Description)
	assert.Equal(t, "infrastructure", m.Category)
	assert.Equal(t, 12.4, m.MetricValue)
}

func TestCSVSource_Parse_MalformedRowsDropped(t *testing.T) {
	text := strings.Join([]string{
		"timestamp,value",
		"t1,10",
		"t2",
		"t3,abc",
		"",
		"t5,NaN",
		"t6, 20 ",
	}, "\r\n")

	src := NewCSVSource(config.SourceConfig{SampleStep: 1, Prefix: "cpu"}, testDeps())
	b := src.Parse(text)
	got := metrics(t, b)

	require.Len(t, got, 2)
	assert.Equal(t, "cpu_1", got[0].RecordID)
	assert.Equal(t, "cpu_2", got[1].RecordID, "ids count accepted rows only")
	assert.Equal(t, 20.0, got[1].MetricValue)

	require.Len(t, b.ParseErrors, 3)
	assert.Equal(t, 2, b.ParseErrors[0].Row)
	assert.ErrorIs(t, b.ParseErrors[0], ErrMissingColumn)
	assert.ErrorIs(t, b.ParseErrors[1], ErrInvalidValue)
	assert.ErrorIs(t, b.ParseErrors[2], ErrInvalidValue)
}

func TestCSVSource_Parse_HeaderOnly(t *testing.T) {
	src := NewCSVSource(config.SourceConfig{}, testDeps())

	assert.Empty(t, src.Parse("timestamp,value\n").Records)
	assert.Empty(t, src.Parse("").Records)
}

func TestCSVSource_Parse_DefaultStepSkipsMost(t *testing.T) {
	var sb strings.Builder

	sb.WriteString("timestamp,value\n")

	for i := 0; i < 401; i++ {
		fmt.Fprintf(&sb, "t%d,%d\n", i, i)
	}

	got := metrics(t, NewCSVSource(config.SourceConfig{}, testDeps()).Parse(sb.String()))

	// Rows 1, 201 and 401.
	require.Len(t, got, 3)
	assert.Equal(t, []float64{0, 200, 400}, []float64{got[0].MetricValue, got[1].MetricValue, got[2].MetricValue})
}

func TestCSVSource_Fetch_HTTP(t *testing.T) {
	srv := serve(t, "text/csv", "timestamp,value\nt1,1\nt2,2\n")

	src := NewCSVSource(config.SourceConfig{URL: srv.URL, SampleStep: 1, Key: "kaggle_nab"}, testDeps())

	b, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Records, 2)
}

func TestCSVSource_Fetch_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,value\nt1,1\nt2,bad\n"), 0644))

	src := NewCSVSource(config.SourceConfig{File: path, SampleStep: 1}, testDeps())

	b, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Records, 1)
	assert.Len(t, b.ParseErrors, 1)
}
