package topics

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dwai-labs/newsletter-generator/internal/logger"
	"github.com/dwai-labs/newsletter-generator/internal/models"
	"github.com/dwai-labs/newsletter-generator/internal/processing"
)

const (
	entriesPerFeed = 5
	defaultSource  = "Tech News"
)

// Feed selects relevant entries from a list of RSS/Atom feeds.
type Feed struct {
	urls     []string
	keywords []string
	parser   *gofeed.Parser
	log      *slog.Logger
}

// NewFeed creates a feed selector. The HTTP timeout bounds every feed fetch.
func NewFeed(urls, keywords []string, timeout time.Duration, log *slog.Logger) *Feed {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: timeout}

	return &Feed{urls: urls, keywords: keywords, parser: fp, log: log}
}

// Fetch returns up to limit keyword-matching entries in feed order. The first
// few entries of each feed are examined; a feed that fails is skipped.
func (f *Feed) Fetch(ctx context.Context, limit int) ([]models.RawArticle, error) {
	var out []models.RawArticle

	for _, url := range f.urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		feed, err := f.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			f.log.Warn("fetch feed", slog.String("url", url), slog.Any("err", err))
			continue
		}

		source := strings.TrimSpace(feed.Title)
		if source == "" {
			source = defaultSource
		}

		items := feed.Items
		if len(items) > entriesPerFeed {
			items = items[:entriesPerFeed]
		}
		for _, item := range items {
			if item == nil {
				continue
			}
			if !processing.MatchesKeywords(item.Title+" "+item.Description, f.keywords) {
				continue
			}
			out = append(out, models.RawArticle{
				Title:   strings.TrimSpace(item.Title),
				Summary: processing.StripMarkup(item.Description),
				Link:    item.Link,
				Source:  source,
			})
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
