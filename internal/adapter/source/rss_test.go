package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsbrief/internal/adapter/source"
	"newsbrief/internal/domain/entity"
)

func TestRSSAdapter_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>First Article</title>
      <link>https://example.com/first</link>
      <description>Description of the first article</description>
      <pubDate>Thu, 20 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Article</title>
      <link>https://example.com/second</link>
      <description>Description of the second article</description>
      <pubDate>not a date</pubDate>
    </item>
  </channel>
</rss>`
		w.Header().Set("Content-Type", "application/rss+xml")
		if _, err := w.Write([]byte(feed)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	adapter := source.NewRSSAdapter(client, source.RSSConfig{
		Name:     "example-feed",
		FeedURLs: []string{server.URL},
		Priority: 3,
	})

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items length = %d, want 2", len(items))
	}

	first := items[0]
	if first.Title != "First Article" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.URL != "https://example.com/first" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.SourceKind != entity.SourceKindFeed {
		t.Errorf("SourceKind = %q, want %q", first.SourceKind, entity.SourceKindFeed)
	}
	want := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", first.PublishedAt, want)
	}
	if first.DeclaredPriority != 3 {
		t.Errorf("DeclaredPriority = %d, want 3", first.DeclaredPriority)
	}

	// Unparseable dates leave the zero time for downstream filtering.
	if !items[1].PublishedAt.IsZero() {
		t.Errorf("PublishedAt = %v, want zero time", items[1].PublishedAt)
	}
}

func TestRSSAdapter_Fetch_FeedUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	adapter := source.NewRSSAdapter(client, source.RSSConfig{
		Name:     "example-feed",
		FeedURLs: []string{server.URL},
	})

	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() error = nil, want fetch error")
	}
}

func TestFactory_Build(t *testing.T) {
	factory := source.NewFactory(http.DefaultClient)

	tests := []struct {
		name     string
		spec     source.Spec
		wantKind entity.SourceKind
		wantErr  bool
	}{
		{
			name:     "feed",
			spec:     source.Spec{Name: "blog", Kind: "feed", FeedURLs: []string{"https://example.com/rss"}},
			wantKind: entity.SourceKindFeed,
		},
		{
			name:     "api",
			spec:     source.Spec{Name: "hn", Kind: "api", Query: "go"},
			wantKind: entity.SourceKindAPI,
		},
		{
			name:     "scrape",
			spec:     source.Spec{Name: "corp", Kind: "scrape", ListURL: "https://example.com/blog", ItemSelector: "article"},
			wantKind: entity.SourceKindScrape,
		},
		{
			name:     "quota api",
			spec:     source.Spec{Name: "gh", Kind: "quota_api", Repos: []string{"golang/go"}},
			wantKind: entity.SourceKindQuotaAPI,
		},
		{
			name:    "unknown kind",
			spec:    source.Spec{Name: "bad", Kind: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := factory.Build(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Build() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if adapter.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", adapter.Kind(), tt.wantKind)
			}
			if adapter.Name() != tt.spec.Name {
				t.Errorf("Name() = %q, want %q", adapter.Name(), tt.spec.Name)
			}
		})
	}
}
