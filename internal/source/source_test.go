package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madison/internal/config"
	"madison/internal/crawler"
	"madison/internal/logger"
)

func testDeps() Deps {
	retry := &config.RetryPolicy{MaxAttempts: 1, BackoffMultiplier: 1, TimeoutSec: 5}
	fetch := &config.FetchConfig{BufferSizeKb: 256}

	return Deps{
		Fetcher: crawler.NewURLManager(crawler.NewScraperWithConfig(retry, fetch, logger.Nop())),
		Log:     logger.Nop(),
	}
}

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		cfg  config.SourceConfig
		want any
	}{
		{config.SourceConfig{Type: config.SourceTypeCSV, Key: "kaggle_nab"}, &CSVSource{}},
		{config.SourceConfig{Type: config.SourceTypeRSS, Key: "techcrunch_rss", Name: "TechCrunch"}, &RSSSource{}},
		{config.SourceConfig{Type: config.SourceTypeNewsAPI, Key: "newsapi"}, &NewsAPISource{}},
	}

	for _, tt := range tests {
		src, err := NewFromConfig(tt.cfg, testDeps())
		require.NoError(t, err)
		assert.IsType(t, tt.want, src)
		assert.Equal(t, tt.cfg.Key, src.CountKey())
	}

	_, err := NewFromConfig(config.SourceConfig{Type: "kafka"}, Deps{})
	assert.Error(t, err)
}

func TestNewFromConfig_NilDeps(t *testing.T) {
	src, err := NewFromConfig(config.SourceConfig{Type: config.SourceTypeCSV}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCSVSourceName, src.Name())
}

func TestSources_FetchFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	csv := NewCSVSource(config.SourceConfig{URL: srv.URL}, testDeps())
	_, err := csv.Fetch(context.Background())
	assert.ErrorIs(t, err, crawler.ErrUnexpectedStatusCode)

	rss := NewRSSSource(config.SourceConfig{URL: srv.URL, Name: "Feed"}, testDeps())
	_, err = rss.Fetch(context.Background())
	assert.Error(t, err)
}
