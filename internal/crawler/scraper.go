// Package crawler fetches remote source documents over HTTP with retries,
// request pacing and a short-lived response cache.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"madison/internal/config"
	"madison/internal/logger"
	"madison/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// StatusError carries a non-200 response. The body is kept because some
// APIs explain the failure there.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatusCode, e.StatusCode)
}

// Is matches ErrUnexpectedStatusCode.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatusCode
}

// Response is the outcome of a successful fetch.
type Response struct {
	Body       []byte
	StatusCode int
	Duration   time.Duration
	Attempts   int
	Cached     bool
}

// Scraper handles HTTP fetches with config-driven retry logic.
type Scraper struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	limiter      *rate.Limiter
	cache        *responseCache
	headers      *utils.HTTPHelper
	log          *logger.Logger
	bufferSizeKb int
}

// NewScraper creates a new scraper instance with default config.
func NewScraper() *Scraper {
	def := config.DefaultConfig().Agent

	return NewScraperWithConfig(&def.Retry, &def.Fetch, logger.Nop())
}

// NewScraperWithConfig creates a scraper from the retry and fetch sections.
func NewScraperWithConfig(retryPolicy *config.RetryPolicy, fetch *config.FetchConfig, log *logger.Logger) *Scraper {
	limit := rate.Inf
	burst := fetch.Burst

	if fetch.RatePerSecond > 0 {
		limit = rate.Limit(fetch.RatePerSecond)
	}

	if burst < 1 {
		burst = 1
	}

	bufferSizeKb := fetch.BufferSizeKb
	if bufferSizeKb <= 0 {
		bufferSizeKb = 1024
	}

	return &Scraper{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy:  retryPolicy,
		limiter:      rate.NewLimiter(limit, burst),
		cache:        newResponseCache(fetch.CacheTTL()),
		headers:      utils.NewHTTPHelper(fetch.UserAgent),
		log:          log,
		bufferSizeKb: bufferSizeKb,
	}
}

// SetHTTPClient replaces the underlying client. Tests use it to talk to
// httptest servers.
func (s *Scraper) SetHTTPClient(c *http.Client) {
	s.client = c
}

// Fetch GETs url, retrying transport errors and retryable statuses.
// Successful bodies are cached for the configured TTL.
func (s *Scraper) Fetch(ctx context.Context, url string, extra map[string]string) (*Response, error) {
	if body, ok := s.cache.get(url); ok {
		s.log.Debug("cache hit", "url", utils.RedactURL(url))

		return &Response{Body: body, StatusCode: http.StatusOK, Cached: true}, nil
	}

	var lastErr error

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, s.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", redactError(err))
		}

		req.Header = s.headers.BuildHeaders(extra)

		startTime := time.Now()
		resp, err := s.client.Do(req)
		totalDuration += time.Since(startTime)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			err = redactError(err)
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retryPolicy.MaxAttempts, err)
			s.log.Warn("fetch failed", "url", utils.RedactURL(url), "attempt", attempt, "error", err)

			continue
		}

		body, readErr := s.readBody(resp)

		if resp.StatusCode != http.StatusOK {
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}

			// Only retry on specific status codes
			if !isRetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}

			s.log.Warn("retryable status", "url", utils.RedactURL(url), "attempt", attempt, "status", resp.StatusCode)

			continue
		}

		if readErr != nil {
			lastErr = readErr

			continue
		}

		s.cache.put(url, body)

		return &Response{
			Body:       body,
			StatusCode: resp.StatusCode,
			Duration:   totalDuration,
			Attempts:   attempt,
		}, nil
	}

	return nil, lastErr
}

// ReadLocalFile reads content from a local file path.
func (s *Scraper) ReadLocalFile(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file %s: %w", filePath, err)
	}

	return content, nil
}

// readBody reads with the buffer limit and closes the body.
func (s *Scraper) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redactError masks secret query parameters in the URL that net/http puts
// into transport and parse errors.
func redactError(err error) error {
	var ue *neturl.Error
	if errors.As(err, &ue) {
		ue.URL = utils.RedactURL(ue.URL)
	}

	return err
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusBadGateway: // 502
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
