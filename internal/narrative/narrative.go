// Package narrative turns statistics into prose with a chat model, and
// provides the deterministic text used when no model is available.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"madison/internal/config"
	"madison/internal/llm/openai"
	"madison/internal/logger"
	"madison/internal/models"
	"madison/pkg/llm"
)

// ErrNarrativeUnavailable is the only error a Narrator returns. The cause
// is wrapped alongside it.
var ErrNarrativeUnavailable = errors.New("narrative unavailable")

// Causes wrapped with ErrNarrativeUnavailable.
var (
	ErrNoAPIKey   = errors.New("no api key configured")
	ErrDisabled   = errors.New("narrative disabled")
	ErrEmptyReply = errors.New("model returned empty text")
)

// Narrator produces the anomaly analysis and the executive summary.
// Callers must accept any text, JSON or not.
type Narrator interface {
	Analyze(ctx context.Context, summary models.StatisticsSummary) (string, error)
	Summarize(ctx context.Context, analysis string, news []models.NewsContext) (string, error)
}

// Options tunes the model calls.
type Options struct {
	Model               string
	AnalysisTemperature float64
	SummaryTemperature  float64
}

// LLMNarrator implements Narrator on an llm.Provider.
type LLMNarrator struct {
	provider llm.Provider
	log      *logger.Logger
	opts     Options
}

// NewLLMNarrator wraps provider.
func NewLLMNarrator(provider llm.Provider, opts Options, log *logger.Logger) *LLMNarrator {
	if log == nil {
		log = logger.Nop()
	}

	return &LLMNarrator{provider: provider, opts: opts, log: log}
}

// Analyze asks the model to confirm and classify the flagged points.
func (n *LLMNarrator) Analyze(ctx context.Context, summary models.StatisticsSummary) (string, error) {
	return n.generate(ctx, "analysis", AnalysisPrompt(summary), n.opts.AnalysisTemperature)
}

// Summarize asks the model for the executive summary.
func (n *LLMNarrator) Summarize(ctx context.Context, analysis string, news []models.NewsContext) (string, error) {
	return n.generate(ctx, "summary", SummaryPrompt(analysis, news), n.opts.SummaryTemperature)
}

func (n *LLMNarrator) generate(ctx context.Context, step, prompt string, temperature float64) (string, error) {
	opts := []llm.CallOption{llm.WithTemperature(temperature)}
	if n.opts.Model != "" {
		opts = append(opts, llm.WithModel(n.opts.Model))
	}

	resp, err := n.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		if llm.IsAuthenticationError(err) {
			n.log.Error("narrative provider rejected the api key", "step", step)
		} else {
			n.log.Warn("narrative call failed", "step", step, "code", llm.Code(err), "retryable", llm.IsRetryable(err))
		}

		return "", fmt.Errorf("%w: %s: %w", ErrNarrativeUnavailable, step, err)
	}

	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: %s: %w", ErrNarrativeUnavailable, step, ErrEmptyReply)
	}

	n.log.Debug("narrative generated", "step", step, "model", resp.Model, "tokens", resp.Usage.TotalTokens)

	return resp.Content, nil
}

// Unavailable is a Narrator that always fails with the given cause.
type Unavailable struct {
	Cause error
}

// Analyze always fails.
func (u Unavailable) Analyze(context.Context, models.StatisticsSummary) (string, error) {
	return "", fmt.Errorf("%w: %w", ErrNarrativeUnavailable, u.Cause)
}

// Summarize always fails.
func (u Unavailable) Summarize(context.Context, string, []models.NewsContext) (string, error) {
	return "", fmt.Errorf("%w: %w", ErrNarrativeUnavailable, u.Cause)
}

// New builds the Narrator described by cfg. Without a key, or when disabled,
// it returns an Unavailable narrator so the pipeline takes the fallback path.
func New(cfg config.NarrativeConfig, log *logger.Logger) Narrator {
	if !cfg.Enabled {
		return Unavailable{Cause: ErrDisabled}
	}

	provider, err := openai.New(openai.FromNarrative(cfg), cfg.APIKey(), log)
	if err != nil {
		if errors.Is(err, openai.ErrMissingAPIKey) {
			return Unavailable{Cause: ErrNoAPIKey}
		}

		return Unavailable{Cause: err}
	}

	return NewLLMNarrator(provider, Options{
		Model:               cfg.Model,
		AnalysisTemperature: cfg.AnalysisTemperature,
		SummaryTemperature:  cfg.SummaryTemperature,
	}, log)
}
