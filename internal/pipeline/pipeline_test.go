package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madison/internal/analysis"
	"madison/internal/metrics"
	"madison/internal/models"
	"madison/internal/narrative"
	"madison/internal/source"
)

type fakeSource struct {
	err   error
	name  string
	key   string
	batch source.Batch
	calls int
}

func (f *fakeSource) Name() string     { return f.name }
func (f *fakeSource) CountKey() string { return f.key }

func (f *fakeSource) Fetch(ctx context.Context) (source.Batch, error) {
	f.calls++

	return f.batch, f.err
}

type fakeNarrator struct {
	analyzeErr   error
	summarizeErr error
	analysis     string
	summary      string
	news         []models.NewsContext
}

func (f *fakeNarrator) Analyze(ctx context.Context, s models.StatisticsSummary) (string, error) {
	return f.analysis, f.analyzeErr
}

func (f *fakeNarrator) Summarize(ctx context.Context, analysis string, news []models.NewsContext) (string, error) {
	f.news = news

	return f.summary, f.summarizeErr
}

func cpuSource(values ...float64) *fakeSource {
	records := make([]models.Record, len(values))
	for i, v := range values {
		records[i] = models.NewMetricRecord(models.RecordHeader{
			RecordID:  fmt.Sprintf("nab_cpu_%d", i+1),
			Source:    models.SourceKaggle,
			Timestamp: fmt.Sprintf("2014-05-14 %02d:00:00", i),
		}, "cpu_utilization", v)
	}

	return &fakeSource{
		name:  "NAB",
		key:   "kaggle_nab",
		batch: source.Batch{Records: records, ParseErrors: []source.ParseError{{Row: 3, Err: errors.New("bad")}}},
	}
}

func newsSource(key string, n int) *fakeSource {
	records := make([]models.Record, n)
	for i := range n {
		records[i] = models.NewNewsRecord(models.RecordHeader{
			RecordID:   fmt.Sprintf("%s_%d", key, i+1),
			Source:     models.SourceRSS,
			SourceName: key,
			Timestamp:  "2025-01-14T10:30:00Z",
		}, fmt.Sprintf("  story   %d ", i), "", fmt.Sprintf("https://example.com/%d", i))
	}

	return &fakeSource{name: key, key: key, batch: source.Batch{Records: records}}
}

func fixed(opts Options) *Pipeline {
	opts.Now = func() time.Time { return time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC) }
	opts.NewID = func() string { return "run-1" }

	if opts.SigmaMultiplier == 0 {
		opts.SigmaMultiplier = analysis.DefaultSigmaMultiplier
	}

	return New(opts)
}

func TestRun_Success(t *testing.T) {
	narrator := &fakeNarrator{
		analysis: `{"risk_level": "MEDIUM"}`,
		summary:  "## Overall System Health: WARNING\n## Key Findings\n## Recommended Actions\n",
	}
	p := fixed(Options{
		Sources:  []source.Source{cpuSource(10, 10, 10, 90), newsSource("techcrunch_rss", 12)},
		Narrator: narrator,
	})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 4, res.Summary.TotalRecords)
	assert.Equal(t, 1, res.Summary.PotentialAnomaliesCount)
	assert.Equal(t, analysis.HealthWarning, res.Health())
	assert.False(t, res.NarrativeFallback)
	assert.True(t, res.Validation.IsValid)
	assert.Equal(t, 1, res.ParseErrors)

	assert.Equal(t, 4, res.SourceCounts.Get("kaggle_nab"))
	assert.Equal(t, 12, res.SourceCounts.Get("techcrunch_rss"))
	assert.Equal(t, 16, res.SourceCounts.Total())

	require.Len(t, narrator.news, narrative.MaxNewsContext)
	assert.Equal(t, "story 0", narrator.news[0].Title, "titles are normalized")

	in := res.ReportInput()
	assert.True(t, in.Validated)
	assert.Equal(t, "run-1", in.RunID)
}

func TestRun_SourceFailureContributesZero(t *testing.T) {
	failing := &fakeSource{name: "NewsAPI", key: "newsapi", err: errors.New("timeout")}
	p := fixed(Options{Sources: []source.Source{cpuSource(50, 55, 45, 50), failing}})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"kaggle_nab", "newsapi"}, res.SourceCounts.Keys())
	assert.Equal(t, 0, res.SourceCounts.Get("newsapi"))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "newsapi", res.Failures[0].Source)
}

func TestRun_NoMetrics(t *testing.T) {
	rec := metrics.New()
	p := fixed(Options{Sources: []source.Source{newsSource("techcrunch_rss", 3)}, Metrics: rec})

	res, err := p.Run(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoMetrics)
	assert.Same(t, rec, p.Metrics())
}

func TestRun_NarrativeFallback(t *testing.T) {
	p := fixed(Options{Sources: []source.Source{cpuSource(10, 10, 10, 90)}})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.NarrativeFallback)
	assert.Contains(t, res.Analysis, "narrative generation disabled")
	assert.True(t, strings.HasPrefix(res.ExecutiveSummary, "# Madison Transparency Agent - Executive Summary"))
	assert.True(t, res.Validation.IsValid, "fallback summary states the computed health")
}

func TestRun_SummaryFailureKeepsAnalysis(t *testing.T) {
	narrator := &fakeNarrator{analysis: "model analysis", summarizeErr: narrative.ErrNarrativeUnavailable}
	p := fixed(Options{Sources: []source.Source{cpuSource(10, 10, 10, 90)}, Narrator: narrator})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.NarrativeFallback)
	assert.Equal(t, "model analysis", res.Analysis)
	assert.Equal(t, narrative.FallbackSummary(res.Summary), res.ExecutiveSummary)
}

func TestRun_HealthMismatchIsFlagged(t *testing.T) {
	narrator := &fakeNarrator{analysis: "{}", summary: "## Overall System Health: HEALTHY"}
	p := fixed(Options{Sources: []source.Source{cpuSource(10, 10, 10, 90)}, Narrator: narrator})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Validation.IsValid)
	assert.False(t, res.ReportInput().Validated)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := fixed(Options{Sources: []source.Source{cpuSource(1, 2)}})

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_ReplaysLastResult(t *testing.T) {
	csv := cpuSource(10, 10, 10, 90)
	p := fixed(Options{Sources: []source.Source{csv}})

	var s Session

	first, replayed, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, replayed)

	csv.batch = source.Batch{}

	again, replayed, err := s.Run(context.Background(), p)
	assert.ErrorIs(t, err, ErrNoMetrics)
	assert.True(t, replayed)
	assert.Same(t, first, again)
	assert.Equal(t, 2, csv.calls)
}

func TestSession_NothingToReplay(t *testing.T) {
	var s Session

	res, replayed, err := s.Run(context.Background(), fixed(Options{}))
	assert.ErrorIs(t, err, ErrNoMetrics)
	assert.False(t, replayed)
	assert.Nil(t, res)
}
