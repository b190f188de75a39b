package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"madison/internal/config"
	"madison/internal/models"
	"madison/pkg/utils"
)

// News description limit, in characters.
const maxDescriptionRunes = 200

const rssCategory = "tech_news"

// RSSSource reads an RSS or Atom feed.
type RSSSource struct {
	parser *gofeed.Parser
	deps   Deps
	cfg    config.SourceConfig
}

// NewRSSSource creates a feed source.
func NewRSSSource(c config.SourceConfig, deps Deps) *RSSSource {
	c.Prefix = orDefault(c.Prefix, "rss_"+strings.ToLower(strings.ReplaceAll(c.Name, " ", "_")))

	return &RSSSource{cfg: c, deps: deps, parser: gofeed.NewParser()}
}

// Name returns the display name.
func (s *RSSSource) Name() string { return s.cfg.Name }

// CountKey returns the data_sources key.
func (s *RSSSource) CountKey() string { return s.cfg.Key }

// Fetch downloads and parses the feed.
func (s *RSSSource) Fetch(ctx context.Context) (Batch, error) {
	body, err := s.deps.Fetcher.FetchSource(ctx, &s.cfg)
	if err != nil {
		return Batch{}, fmt.Errorf("fetch %s: %w", s.cfg.Name, err)
	}

	feed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return Batch{}, fmt.Errorf("parse feed %s: %w", s.cfg.Name, err)
	}

	return s.Convert(feed), nil
}

// Convert maps feed items to news records. Items without a title or link are
// skipped but still consume their index, so IDs follow feed position.
func (s *RSSSource) Convert(feed *gofeed.Feed) Batch {
	var batch Batch

	for idx, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		pub := item.Published
		if pub == "" {
			pub = item.Updated
		}

		rec := models.NewNewsRecord(models.RecordHeader{
			RecordID:   fmt.Sprintf("%s_%d", s.cfg.Prefix, idx+1),
			Source:     models.SourceRSS,
			SourceName: s.cfg.Name,
			Timestamp:  NormalizeFeedTime(pub),
			Category:   rssCategory,
		}, item.Title, utils.TruncateRunes(item.Description, maxDescriptionRunes), item.Link)

		batch.Records = append(batch.Records, rec)
	}

	return batch
}
