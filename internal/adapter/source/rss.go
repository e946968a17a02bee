package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"newsbrief/internal/domain/entity"
)

// RSSConfig configures one RSS adapter instance.
type RSSConfig struct {
	// Name identifies the source in outcomes, logs, and item tags.
	Name string

	// FeedURLs are the RSS/Atom feeds this adapter aggregates.
	FeedURLs []string

	// Priority is the declared priority tagged onto every item (0-10).
	Priority int

	// MaxItems caps the number of items returned per feed. 0 means no cap.
	MaxItems int
}

// RSSAdapter fetches pull-based RSS/Atom feeds using the gofeed library.
type RSSAdapter struct {
	client *http.Client
	cfg    RSSConfig
}

// NewRSSAdapter creates an RSS adapter with the given HTTP client.
func NewRSSAdapter(client *http.Client, cfg RSSConfig) *RSSAdapter {
	return &RSSAdapter{client: client, cfg: cfg}
}

// Name returns the configured source name.
func (a *RSSAdapter) Name() string { return a.cfg.Name }

// Kind returns the feed source kind.
func (a *RSSAdapter) Kind() entity.SourceKind { return entity.SourceKindFeed }

// Priority returns the declared priority for items from this source.
func (a *RSSAdapter) Priority() int { return clampPriority(a.cfg.Priority) }

// Fetch retrieves and parses all configured feeds. A parse failure on one
// feed fails the whole call; partial feed handling is the wrapper's job.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]entity.Item, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = a.client

	now := time.Now()
	var items []entity.Item

	for _, feedURL := range a.cfg.FeedURLs {
		feed, err := fp.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
		}

		count := 0
		for _, it := range feed.Items {
			if a.cfg.MaxItems > 0 && count >= a.cfg.MaxItems {
				break
			}

			// Items without a parseable timestamp are kept here and
			// dropped later by the quality filter.
			var pubAt time.Time
			if it.PublishedParsed != nil {
				pubAt = *it.PublishedParsed
			} else if it.UpdatedParsed != nil {
				pubAt = *it.UpdatedParsed
			}

			body := it.Content
			if body == "" {
				body = it.Description
			}

			items = append(items, entity.Item{
				ID:               uuid.New().String(),
				SourceName:       a.cfg.Name,
				SourceKind:       entity.SourceKindFeed,
				Title:            it.Title,
				Body:             body,
				URL:              it.Link,
				PublishedAt:      pubAt,
				FetchedAt:        now,
				DeclaredPriority: a.Priority(),
			})
			count++
		}
	}

	return items, nil
}
