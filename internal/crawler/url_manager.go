package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"madison/internal/config"
	"madison/pkg/utils"
)

// maxAttemptLog bounds the attempt log across interval runs.
const maxAttemptLog = 100

// URL manager errors.
var (
	ErrNoSourcesAvailable  = errors.New("no sources available")
	ErrAllSourcesExhausted = errors.New("all sources exhausted")
)

// AttemptResult records the result of a URL fetch attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempts   int
	Duration   time.Duration
	StatusCode int
	Cached     bool
	Success    bool
}

// URLManager resolves a source to its bytes, falling back from the primary
// URL to its backups. Local files are read directly without retries.
type URLManager struct {
	scraper    *Scraper
	attemptLog []AttemptResult
	mu         sync.Mutex
}

// NewURLManager creates a new URL manager.
func NewURLManager(scraper *Scraper) *URLManager {
	return &URLManager{scraper: scraper}
}

// FetchSource returns the document behind src.
func (um *URLManager) FetchSource(ctx context.Context, src *config.SourceConfig) ([]byte, error) {
	if src.IsLocalFile() {
		return um.scraper.ReadLocalFile(src.File)
	}

	return um.FetchAny(ctx, src.GetAllURLs(), nil)
}

// FetchAny tries urls in order and returns the first successful body.
func (um *URLManager) FetchAny(ctx context.Context, urls []string, headers map[string]string) ([]byte, error) {
	var lastErr error

	tried := 0

	for _, url := range urls {
		if url == "" {
			continue
		}

		tried++

		resp, err := um.scraper.Fetch(ctx, url, headers)
		um.RecordAttempt(url, resp, err)

		if err == nil {
			return resp.Body, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
	}

	if tried == 0 {
		return nil, ErrNoSourcesAvailable
	}

	return nil, fmt.Errorf("%w (%d urls): %w", ErrAllSourcesExhausted, tried, lastErr)
}

// RecordAttempt records the result of a fetch attempt.
func (um *URLManager) RecordAttempt(url string, resp *Response, err error) {
	result := AttemptResult{
		Timestamp: time.Now(),
		URL:       utils.RedactURL(url),
		Success:   err == nil,
	}

	if resp != nil {
		result.StatusCode = resp.StatusCode
		result.Duration = resp.Duration
		result.Attempts = resp.Attempts
		result.Cached = resp.Cached
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		result.StatusCode = statusErr.StatusCode
	}

	if err != nil {
		result.Error = err.Error()
	}

	um.mu.Lock()
	um.attemptLog = append(um.attemptLog, result)
	if over := len(um.attemptLog) - maxAttemptLog; over > 0 {
		um.attemptLog = append(um.attemptLog[:0], um.attemptLog[over:]...)
	}
	um.mu.Unlock()
}

// Attempts returns a copy of the attempt log.
func (um *URLManager) Attempts() []AttemptResult {
	um.mu.Lock()
	defer um.mu.Unlock()

	return append([]AttemptResult(nil), um.attemptLog...)
}
