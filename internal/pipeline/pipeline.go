// Package pipeline runs one analysis: fetch every source, compute the
// statistics, ask the narrator for prose and check it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"madison/internal/analysis"
	"madison/internal/config"
	"madison/internal/crawler"
	"madison/internal/logger"
	"madison/internal/metrics"
	"madison/internal/models"
	"madison/internal/narrative"
	"madison/internal/normalizer"
	"madison/internal/report"
	"madison/internal/source"
	"madison/internal/validator"
)

// ErrNoMetrics means no source produced a metric record. The run cannot
// continue without a series.
var ErrNoMetrics = errors.New("no metric records were loaded")

// NoMetricsHint is shown to the operator when a run fails with ErrNoMetrics.
const NoMetricsHint = "No metric records were loaded. Enable the NAB CSV source and try again."

// SourceFailure records a source that could not be fetched.
type SourceFailure struct {
	Err    error
	Source string
}

// Result is the outcome of one successful run.
type Result struct {
	GeneratedAt       time.Time
	SourceCounts      *models.SourceCounts
	Validation        *validator.ValidationResult
	RunID             string
	Analysis          string
	ExecutiveSummary  string
	Metrics           []models.MetricRecord
	News              []models.NewsRecord
	Failures          []SourceFailure
	Summary           models.StatisticsSummary
	Duration          time.Duration
	ParseErrors       int
	NarrativeFallback bool
}

// ReportInput converts the result for the report renderers.
func (r *Result) ReportInput() report.Input {
	return report.Input{
		GeneratedAt:       r.GeneratedAt,
		SourceCounts:      r.SourceCounts,
		RunID:             r.RunID,
		Analysis:          r.Analysis,
		ExecutiveSummary:  r.ExecutiveSummary,
		News:              r.News,
		Summary:           r.Summary,
		Validated:         r.Validation != nil && r.Validation.IsValid,
		NarrativeFallback: r.NarrativeFallback,
	}
}

// Health is the label derived from the anomaly count.
func (r *Result) Health() analysis.Health {
	return analysis.HealthFor(r.Summary.PotentialAnomaliesCount)
}

// Options wires a Pipeline.
type Options struct {
	Narrator narrative.Narrator
	Metrics  *metrics.Recorder
	Log      *logger.Logger
	// Now and NewID default to time.Now and uuid.NewString.
	Now             func() time.Time
	NewID           func() string
	Sources         []source.Source
	SigmaMultiplier float64
}

// Pipeline runs analyses. It is reusable across runs but not safe for
// concurrent Run calls.
type Pipeline struct {
	narrator  narrative.Narrator
	metrics   *metrics.Recorder
	log       *logger.Logger
	processor *normalizer.Processor
	checker   *validator.MarkdownValidator
	now       func() time.Time
	newID     func() string
	sources   []source.Source
	sigma     float64
}

// New builds a pipeline from opts, filling unset collaborators.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		sources:   opts.Sources,
		narrator:  opts.Narrator,
		metrics:   opts.Metrics,
		log:       opts.Log,
		sigma:     opts.SigmaMultiplier,
		now:       opts.Now,
		newID:     opts.NewID,
		processor: normalizer.NewProcessor(),
		checker:   validator.NewMarkdownValidator(),
	}

	if p.narrator == nil {
		p.narrator = narrative.Unavailable{Cause: narrative.ErrDisabled}
	}

	if p.metrics == nil {
		p.metrics = metrics.New()
	}

	if p.log == nil {
		p.log = logger.Nop()
	}

	if p.now == nil {
		p.now = time.Now
	}

	if p.newID == nil {
		p.newID = uuid.NewString
	}

	return p
}

// FromConfig builds the sources, narrator and fetcher described by cfg.
func FromConfig(cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	if log == nil {
		log = logger.Nop()
	}

	scraper := crawler.NewScraperWithConfig(&cfg.Agent.Retry, &cfg.Agent.Fetch, log)
	deps := source.Deps{Fetcher: crawler.NewURLManager(scraper), Log: log}

	enabled := cfg.GetEnabledSources()
	sources := make([]source.Source, 0, len(enabled))

	for _, sc := range enabled {
		src, err := source.NewFromConfig(sc, deps)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.Key, err)
		}

		sources = append(sources, src)
	}

	return New(Options{
		Sources:         sources,
		Narrator:        narrative.New(cfg.Agent.Narrative, log),
		Log:             log,
		SigmaMultiplier: cfg.Agent.Analysis.SigmaMultiplier,
	}), nil
}

// Metrics returns the recorder the pipeline reports to.
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.metrics
}

// Run performs one analysis. A failing source contributes zero records; a
// failing narrator is replaced by the deterministic fallback. The run fails
// with ErrNoMetrics when no metric record was loaded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()
	res := &Result{
		RunID:        p.newID(),
		GeneratedAt:  start,
		SourceCounts: models.NewSourceCounts(),
	}
	log := p.log.With("run_id", res.RunID)

	log.Info("run started", "sources", len(p.sources), "sigma", p.sigma)

	for _, src := range p.sources {
		p.fetch(ctx, log, src, res)
	}

	if err := ctx.Err(); err != nil {
		p.metrics.ObserveRun(metrics.StatusError, models.StatisticsSummary{}, p.now().Sub(start), false)

		return nil, fmt.Errorf("run canceled: %w", err)
	}

	log.Info("data fetching complete", "total", res.SourceCounts.Total(), "metrics", len(res.Metrics), "news", len(res.News))

	if len(res.Metrics) == 0 {
		p.metrics.ObserveRun(metrics.StatusNoMetrics, models.StatisticsSummary{}, p.now().Sub(start), false)

		return nil, ErrNoMetrics
	}

	res.Summary = analysis.ComputeStatistics(res.Metrics, p.sigma)
	log.Info("statistics computed",
		"records", res.Summary.TotalRecords,
		"average", res.Summary.Average,
		"threshold", res.Summary.AnomalyThreshold,
		"anomalies", res.Summary.PotentialAnomaliesCount)

	p.narrate(ctx, log, res)

	res.Validation = p.checker.ValidateSummary(res.ExecutiveSummary, res.Health())
	if !res.Validation.IsValid {
		log.Warn("executive summary disagrees with computed health", "error", res.Validation.Err(), "health", res.Health())
	}

	for _, w := range res.Validation.Warnings {
		log.Debug("executive summary check", "warning", w)
	}

	res.Duration = p.now().Sub(start)
	p.metrics.ObserveRun(metrics.StatusOK, res.Summary, res.Duration, res.NarrativeFallback)

	log.Info("run complete", "health", res.Health(), "fallback", res.NarrativeFallback, "duration", res.Duration)

	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, log *logger.Logger, src source.Source, res *Result) {
	key := src.CountKey()
	log = log.With("source", src.Name())

	batch, err := src.Fetch(ctx)
	if err != nil {
		log.Warn("source fetch failed", "error", err)
		res.Failures = append(res.Failures, SourceFailure{Source: key, Err: err})
		res.SourceCounts.Set(key, res.SourceCounts.Get(key))
		p.metrics.ObserveSource(key, 0, 0, err)

		return
	}

	for _, pe := range batch.ParseErrors {
		log.Debug("row dropped", "row", pe.Row, "error", pe.Err)
	}

	ds, err := p.processor.Process(batch.Records)
	if err != nil {
		// Lenient processors never fail; keep the source at zero if one does.
		log.Warn("batch rejected", "error", err)
		res.SourceCounts.Set(key, res.SourceCounts.Get(key))
		p.metrics.ObserveSource(key, 0, len(batch.ParseErrors), err)

		return
	}

	for _, r := range ds.Rejected {
		log.Warn("record rejected", "record_id", r.RecordID, "error", r.Err)
	}

	res.Metrics = append(res.Metrics, ds.Metrics...)
	res.News = append(res.News, ds.News...)
	res.ParseErrors += len(batch.ParseErrors)
	res.SourceCounts.Set(key, res.SourceCounts.Get(key)+ds.Len())
	p.metrics.ObserveSource(key, ds.Len(), len(batch.ParseErrors), nil)

	log.Info("source loaded", "records", ds.Len(), "parse_errors", len(batch.ParseErrors), "rejected", len(ds.Rejected))
}

func (p *Pipeline) narrate(ctx context.Context, log *logger.Logger, res *Result) {
	text, err := p.narrator.Analyze(ctx, res.Summary)
	if err != nil {
		log.Warn("using statistical fallback narrative", "error", err)

		res.NarrativeFallback = true
		res.Analysis = narrative.FallbackAnalysis(res.Summary, err)
		res.ExecutiveSummary = narrative.FallbackSummary(res.Summary)

		return
	}

	res.Analysis = text

	news := models.ToNewsContext(res.News, narrative.MaxNewsContext)

	summary, err := p.narrator.Summarize(ctx, res.Analysis, news)
	if err != nil {
		log.Warn("using fallback executive summary", "error", err)

		res.NarrativeFallback = true
		res.ExecutiveSummary = narrative.FallbackSummary(res.Summary)

		return
	}

	res.ExecutiveSummary = summary
}
