package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsbrief/internal/domain/entity"
)

func TestHackerNewsAdapter_Fetch_Success(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		body := `{
  "hits": [
    {
      "objectID": "41001",
      "title": "Show HN: A fast thing",
      "url": "https://example.com/fast-thing",
      "points": 120,
      "created_at_i": 1756500000
    },
    {
      "objectID": "41002",
      "title": "Ask HN: How do you test?",
      "url": "",
      "story_text": "Long form question body",
      "points": 95,
      "created_at_i": 1756510000
    },
    {
      "objectID": "41003",
      "title": "",
      "url": "https://example.com/untitled",
      "points": 50,
      "created_at_i": 1756520000
    }
  ]
}`
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter(&http.Client{Timeout: 10 * time.Second}, HackerNewsConfig{
		Name:      "hackernews",
		Query:     "golang",
		MinPoints: 50,
		Window:    24 * time.Hour,
		Priority:  1,
	})
	adapter.baseURL = server.URL

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// The untitled hit is skipped.
	if len(items) != 2 {
		t.Fatalf("items length = %d, want 2", len(items))
	}

	if items[0].Title != "Show HN: A fast thing" {
		t.Errorf("Title = %q", items[0].Title)
	}
	if items[0].URL != "https://example.com/fast-thing" {
		t.Errorf("URL = %q", items[0].URL)
	}
	if items[0].SourceKind != entity.SourceKindAPI {
		t.Errorf("SourceKind = %q, want %q", items[0].SourceKind, entity.SourceKindAPI)
	}

	// Self posts fall back to the HN item page and carry their text.
	if items[1].URL != "https://news.ycombinator.com/item?id=41002" {
		t.Errorf("URL = %q, want item page fallback", items[1].URL)
	}
	if items[1].Body != "Long form question body" {
		t.Errorf("Body = %q, want story text", items[1].Body)
	}

	if !strings.Contains(gotQuery, "points%3E%3D50") {
		t.Errorf("query %q missing min points filter", gotQuery)
	}
	if !strings.Contains(gotQuery, "query=golang") {
		t.Errorf("query %q missing keyword", gotQuery)
	}
}

func TestHackerNewsAdapter_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter(&http.Client{Timeout: 10 * time.Second}, HackerNewsConfig{Name: "hackernews"})
	adapter.baseURL = server.URL

	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() error = nil, want HTTP error")
	}
}

func TestHackerNewsAdapter_Defaults(t *testing.T) {
	adapter := NewHackerNewsAdapter(http.DefaultClient, HackerNewsConfig{Name: "hackernews"})
	if adapter.cfg.MaxItems != 30 {
		t.Errorf("MaxItems = %d, want 30", adapter.cfg.MaxItems)
	}
	if adapter.cfg.Window != 24*time.Hour {
		t.Errorf("Window = %v, want 24h", adapter.cfg.Window)
	}
}
