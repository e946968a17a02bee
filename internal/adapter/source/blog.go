package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"newsbrief/internal/domain/entity"
)

// BlogConfig configures a scraped blog frontend adapter. The CSS selectors
// describe how to locate entries on the listing page.
type BlogConfig struct {
	Name string

	// ListURL is the blog index page to scrape.
	ListURL string

	// ItemSelector matches one entry on the listing page.
	ItemSelector string

	// TitleSelector matches the title within an entry.
	TitleSelector string

	// LinkSelector matches the anchor within an entry. Empty means the
	// entry element itself is the anchor.
	LinkSelector string

	// TimeSelector matches an element whose datetime attribute or text
	// carries the publish time. Optional; items without one are dropped
	// by the quality filter later.
	TimeSelector string

	// SummarySelector matches the teaser text within an entry. Optional.
	SummarySelector string

	Priority int
	MaxItems int
}

// BlogAdapter scrapes a blog frontend that exposes no feed.
type BlogAdapter struct {
	client *http.Client
	cfg    BlogConfig
}

// NewBlogAdapter creates a blog scraping adapter with the given HTTP client.
func NewBlogAdapter(client *http.Client, cfg BlogConfig) *BlogAdapter {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 20
	}
	return &BlogAdapter{client: client, cfg: cfg}
}

// Name returns the configured source name.
func (a *BlogAdapter) Name() string { return a.cfg.Name }

// Kind returns the scraped frontend source kind.
func (a *BlogAdapter) Kind() entity.SourceKind { return entity.SourceKindScrape }

// Priority returns the declared priority for items from this source.
func (a *BlogAdapter) Priority() int { return clampPriority(a.cfg.Priority) }

// Fetch scrapes the listing page and extracts entries via the configured
// selectors. A page that matches zero entries is treated as a malformed
// response, since silent selector drift would otherwise look like an
// empty blog forever.
func (a *BlogAdapter) Fetch(ctx context.Context) ([]entity.Item, error) {
	body, err := fetchBody(ctx, a.client, a.cfg.ListURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(a.cfg.ListURL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}

	now := time.Now()
	var items []entity.Item

	doc.Find(a.cfg.ItemSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(items) >= a.cfg.MaxItems {
			return false
		}

		title := strings.TrimSpace(sel.Find(a.cfg.TitleSelector).First().Text())
		if title == "" {
			return true
		}

		anchor := sel
		if a.cfg.LinkSelector != "" {
			anchor = sel.Find(a.cfg.LinkSelector).First()
		}
		href, _ := anchor.Attr("href")
		if href == "" {
			return true
		}
		link := resolveURL(base, href)

		var pubAt time.Time
		if a.cfg.TimeSelector != "" {
			pubAt = parseEntryTime(sel.Find(a.cfg.TimeSelector).First())
		}

		summary := title
		if a.cfg.SummarySelector != "" {
			if s := strings.TrimSpace(sel.Find(a.cfg.SummarySelector).First().Text()); s != "" {
				summary = s
			}
		}

		items = append(items, entity.Item{
			ID:               uuid.New().String(),
			SourceName:       a.cfg.Name,
			SourceKind:       entity.SourceKindScrape,
			Title:            title,
			Body:             summary,
			URL:              link,
			PublishedAt:      pubAt,
			FetchedAt:        now,
			DeclaredPriority: a.Priority(),
		})
		return true
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("no entries matched selector %q on %s", a.cfg.ItemSelector, a.cfg.ListURL)
	}

	return items, nil
}

// resolveURL resolves href against the listing page URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// parseEntryTime extracts a timestamp from a datetime attribute or the
// element text. Returns the zero time when nothing parses.
func parseEntryTime(sel *goquery.Selection) time.Time {
	candidates := []string{}
	if dt, ok := sel.Attr("datetime"); ok {
		candidates = append(candidates, dt)
	}
	candidates = append(candidates, strings.TrimSpace(sel.Text()))

	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
