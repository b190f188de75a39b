// Package source adapts the external feeds (NAB CPU CSV, RSS/Atom feeds and
// NewsAPI) into unified records.
package source

import (
	"context"
	"fmt"

	"madison/internal/config"
	"madison/internal/crawler"
	"madison/internal/logger"
	"madison/internal/models"
)

// ParseError describes one input row that could not be converted.
type ParseError struct {
	Err error
	Row int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// Batch is the result of one source fetch. ParseErrors lists dropped rows;
// they never fail the batch.
type Batch struct {
	Records     []models.Record
	ParseErrors []ParseError
}

// Source produces one batch of records per Fetch.
type Source interface {
	Name() string
	// CountKey is the data_sources key the batch size is reported under.
	CountKey() string
	Fetch(ctx context.Context) (Batch, error)
}

// Deps are the collaborators shared by all sources.
type Deps struct {
	Fetcher *crawler.URLManager
	Log     *logger.Logger
}

// NewFromConfig builds the source described by c.
func NewFromConfig(c config.SourceConfig, deps Deps) (Source, error) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}

	if deps.Fetcher == nil {
		deps.Fetcher = crawler.NewURLManager(crawler.NewScraper())
	}

	switch c.Type {
	case config.SourceTypeCSV:
		return NewCSVSource(c, deps), nil
	case config.SourceTypeRSS:
		return NewRSSSource(c, deps), nil
	case config.SourceTypeNewsAPI:
		return NewNewsAPISource(c, deps), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", c.Type)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
