package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsPrep/internal/config"
	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
)

const fetchTimeout = 15 * time.Second

// Reader pulls items from every configured RSS feed, tolerating
// individual feed failures. A failed feed contributes zero items.
type Reader struct {
	parser  *gofeed.Parser
	sources []config.SourceConfig
	limit   int
	logger  *slog.Logger
}

var _ ports.FeedSource = (*Reader)(nil)

// NewReader builds a reader over the configured sources; perFeedLimit
// caps how many items each feed contributes per run.
func NewReader(sources []config.SourceConfig, perFeedLimit int, logger *slog.Logger) *Reader {
	if perFeedLimit <= 0 {
		perFeedLimit = 8
	}
	return &Reader{
		parser:  gofeed.NewParser(),
		sources: sources,
		limit:   perFeedLimit,
		logger:  logger,
	}
}

// FetchItems drains each source's feeds in configured order and returns
// the union of everything that parsed. Items missing a title or
// description are dropped; they cannot be deduplicated or analyzed.
func (r *Reader) FetchItems(ctx context.Context) ([]domain.FeedItem, error) {
	if len(r.sources) == 0 {
		return nil, fmt.Errorf("no feed sources configured")
	}

	var items []domain.FeedItem
	for _, src := range r.sources {
		for _, f := range src.Feeds {
			fetched, err := r.fetchFeed(ctx, f.URL)
			if err != nil {
				r.warn("fetch feed failed", "source", src.Name, "feed", f.Label, "error", err)
				continue
			}

			kept := 0
			for i, item := range fetched.Items {
				if i >= r.limit {
					break
				}
				candidate := toFeedItem(item, src.Name, f.Label)
				if candidate.Title == "" || candidate.Description == "" {
					continue
				}
				items = append(items, candidate)
				kept++
			}
			r.debug("feed drained", "source", src.Name, "feed", f.Label, "items", kept)
		}
	}

	return items, nil
}

func (r *Reader) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	parsed, err := r.parser.ParseURLWithContext(url, fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return parsed, nil
}

func toFeedItem(item *gofeed.Item, source, label string) domain.FeedItem {
	description := item.Description
	if description == "" {
		description = item.Content
	}
	description = stripHTML(description)

	published := time.Now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return domain.FeedItem{
		Title:       strings.TrimSpace(item.Title),
		Description: description,
		Link:        strings.TrimSpace(item.Link),
		PublishedAt: published,
		Source:      source,
		FeedLabel:   label,
	}
}

// stripHTML removes tags and squeezes whitespace from feed descriptions,
// which frequently carry markup.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Reader) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
