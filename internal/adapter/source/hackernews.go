package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"newsbrief/internal/domain/entity"
)

// hnSearchURL is the Algolia HackerNews search endpoint.
const hnSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// HackerNewsConfig configures the HackerNews API adapter.
type HackerNewsConfig struct {
	Name string

	// Query filters stories by keyword (Algolia full-text query).
	Query string

	// MinPoints drops low-engagement stories at the API level.
	MinPoints int

	// Window bounds how far back stories are requested.
	Window time.Duration

	Priority int
	MaxItems int
}

// HackerNewsAdapter fetches recent stories from the HackerNews REST API.
type HackerNewsAdapter struct {
	client  *http.Client
	cfg     HackerNewsConfig
	baseURL string
}

// NewHackerNewsAdapter creates a HackerNews adapter with the given HTTP client.
func NewHackerNewsAdapter(client *http.Client, cfg HackerNewsConfig) *HackerNewsAdapter {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 30
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &HackerNewsAdapter{client: client, cfg: cfg, baseURL: hnSearchURL}
}

// Name returns the configured source name.
func (a *HackerNewsAdapter) Name() string { return a.cfg.Name }

// Kind returns the REST API source kind.
func (a *HackerNewsAdapter) Kind() entity.SourceKind { return entity.SourceKindAPI }

// Priority returns the declared priority for items from this source.
func (a *HackerNewsAdapter) Priority() int { return clampPriority(a.cfg.Priority) }

// hnResponse mirrors the subset of the Algolia search response we consume.
type hnResponse struct {
	Hits []struct {
		ObjectID  string `json:"objectID"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		StoryText string `json:"story_text"`
		Points    int    `json:"points"`
		CreatedAt int64  `json:"created_at_i"`
	} `json:"hits"`
}

// Fetch requests stories created inside the configured window.
func (a *HackerNewsAdapter) Fetch(ctx context.Context) ([]entity.Item, error) {
	now := time.Now()
	cutoff := now.Add(-a.cfg.Window).Unix()

	q := url.Values{}
	q.Set("tags", "story")
	q.Set("numericFilters", fmt.Sprintf("created_at_i>%d,points>=%d", cutoff, a.cfg.MinPoints))
	q.Set("hitsPerPage", fmt.Sprintf("%d", a.cfg.MaxItems))
	if a.cfg.Query != "" {
		q.Set("query", a.cfg.Query)
	}

	body, err := fetchBody(ctx, a.client, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp hnResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode hackernews response: %w", err)
	}

	items := make([]entity.Item, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.Title == "" {
			continue
		}

		// Self posts carry their text; link posts only a title. The
		// quality filter decides whether that is enough content.
		itemBody := hit.StoryText
		if itemBody == "" {
			itemBody = hit.Title
		}

		itemURL := hit.URL
		if itemURL == "" {
			itemURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID)
		}

		items = append(items, entity.Item{
			ID:               uuid.New().String(),
			SourceName:       a.cfg.Name,
			SourceKind:       entity.SourceKindAPI,
			Title:            hit.Title,
			Body:             itemBody,
			URL:              itemURL,
			PublishedAt:      time.Unix(hit.CreatedAt, 0).UTC(),
			FetchedAt:        now,
			DeclaredPriority: a.Priority(),
		})
	}

	return items, nil
}
