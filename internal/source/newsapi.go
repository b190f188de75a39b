package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"madison/internal/config"
	"madison/internal/crawler"
	"madison/internal/models"
	"madison/pkg/utils"
)

// NewsAPI request constants.
const (
	DefaultNewsAPIBase = "https://newsapi.org"
	newsAPIPageSize    = 30
	newsAPICategory    = "business_tech"
	removedTitle       = "[Removed]"
	unknownSourceName  = "Unknown"
)

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// NewsAPISource searches the NewsAPI "everything" endpoint.
type NewsAPISource struct {
	deps Deps
	cfg  config.SourceConfig
}

// NewNewsAPISource creates a NewsAPI source.
func NewNewsAPISource(c config.SourceConfig, deps Deps) *NewsAPISource {
	c.URL = strings.TrimRight(orDefault(c.URL, DefaultNewsAPIBase), "/")
	c.Name = orDefault(c.Name, "NewsAPI")

	return &NewsAPISource{cfg: c, deps: deps}
}

// Name returns the display name.
func (s *NewsAPISource) Name() string { return s.cfg.Name }

// CountKey returns the data_sources key.
func (s *NewsAPISource) CountKey() string { return s.cfg.Key }

// RequestURL builds the search URL for apiKey.
func (s *NewsAPISource) RequestURL(apiKey string) string {
	q := url.Values{}
	q.Set("q", s.cfg.Query)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(newsAPIPageSize))
	q.Set("apiKey", apiKey)

	return s.cfg.URL + "/v2/everything?" + q.Encode()
}

// Fetch runs the search. A missing key or a non-ok API status yields an
// empty batch rather than an error.
func (s *NewsAPISource) Fetch(ctx context.Context) (Batch, error) {
	apiKey := s.cfg.APIKey()
	if apiKey == "" {
		s.deps.Log.Info("newsapi key not configured, skipping", "env", s.cfg.APIKeyEnv)

		return Batch{}, nil
	}

	body, err := s.deps.Fetcher.FetchAny(ctx, []string{s.RequestURL(apiKey)}, nil)
	if err != nil {
		// Error statuses carry a JSON explanation.
		var statusErr *crawler.StatusError
		if errors.As(err, &statusErr) {
			var resp newsAPIResponse
			if json.Unmarshal([]byte(statusErr.Body), &resp) == nil && resp.Status != "" {
				s.warnStatus(resp)

				return Batch{}, nil
			}
		}

		return Batch{}, fmt.Errorf("fetch %s: %w", s.cfg.Name, err)
	}

	return s.Decode(body)
}

// Decode converts a response body into news records.
func (s *NewsAPISource) Decode(body []byte) (Batch, error) {
	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Batch{}, fmt.Errorf("decode newsapi response: %w", err)
	}

	if resp.Status != "ok" {
		s.warnStatus(resp)

		return Batch{}, nil
	}

	articles := resp.Articles
	if len(articles) > newsAPIPageSize {
		articles = articles[:newsAPIPageSize]
	}

	var batch Batch

	for idx, art := range articles {
		if art.Title == "" || art.URL == "" || art.Title == removedTitle {
			continue
		}

		rec := models.NewNewsRecord(models.RecordHeader{
			RecordID:   fmt.Sprintf("newsapi_%d", idx+1),
			Source:     models.SourceNewsAPI,
			SourceName: orDefault(art.Source.Name, unknownSourceName),
			Timestamp:  art.PublishedAt,
			Category:   newsAPICategory,
		}, art.Title, utils.TruncateRunes(art.Description, maxDescriptionRunes), art.URL)

		batch.Records = append(batch.Records, rec)
	}

	return batch, nil
}

func (s *NewsAPISource) warnStatus(resp newsAPIResponse) {
	s.deps.Log.Warn("newsapi returned non-ok status",
		"status", resp.Status,
		"code", resp.Code,
		"message", resp.Message,
	)
}
