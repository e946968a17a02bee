package source

import (
	"fmt"
	"net/http"
	"time"

	"newsbrief/internal/domain/entity"
)

// Spec is the declarative description of one source, typically loaded
// from the sources YAML file. Kind selects the adapter type and the
// remaining fields feed its config.
type Spec struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Priority int    `yaml:"priority"`
	MaxItems int    `yaml:"max_items"`

	// Enabled toggles the source without removing its stanza.
	// Absent means enabled.
	Enabled *bool `yaml:"enabled"`

	// Feed sources.
	FeedURLs []string `yaml:"feed_urls"`

	// API sources (Hacker News search).
	Query     string `yaml:"query"`
	MinPoints int    `yaml:"min_points"`
	WindowHrs int    `yaml:"window_hours"`

	// Scraped sources.
	ListURL         string `yaml:"list_url"`
	ItemSelector    string `yaml:"item_selector"`
	TitleSelector   string `yaml:"title_selector"`
	LinkSelector    string `yaml:"link_selector"`
	TimeSelector    string `yaml:"time_selector"`
	SummarySelector string `yaml:"summary_selector"`

	// Quota-limited API sources (GitHub releases).
	Repos             []string `yaml:"repos"`
	Token             string   `yaml:"token"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

// IsEnabled reports whether the source should be built and fetched.
func (s Spec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Factory creates source adapters with a shared HTTP client.
type Factory struct {
	client *http.Client
}

// NewFactory creates a Factory with the given HTTP client. The client
// should already carry the outbound timeout.
func NewFactory(client *http.Client) *Factory {
	return &Factory{client: client}
}

// Build instantiates the adapter described by spec. Unknown kinds are
// rejected so typos in the source file fail at startup instead of
// silently dropping a source.
func (f *Factory) Build(spec Spec) (Adapter, error) {
	switch entity.SourceKind(spec.Kind) {
	case entity.SourceKindFeed:
		return NewRSSAdapter(f.client, RSSConfig{
			Name:     spec.Name,
			FeedURLs: spec.FeedURLs,
			Priority: spec.Priority,
			MaxItems: spec.MaxItems,
		}), nil
	case entity.SourceKindAPI:
		return NewHackerNewsAdapter(f.client, HackerNewsConfig{
			Name:      spec.Name,
			Query:     spec.Query,
			MinPoints: spec.MinPoints,
			Window:    hoursOrZero(spec.WindowHrs),
			Priority:  spec.Priority,
			MaxItems:  spec.MaxItems,
		}), nil
	case entity.SourceKindScrape:
		return NewBlogAdapter(f.client, BlogConfig{
			Name:            spec.Name,
			ListURL:         spec.ListURL,
			ItemSelector:    spec.ItemSelector,
			TitleSelector:   spec.TitleSelector,
			LinkSelector:    spec.LinkSelector,
			TimeSelector:    spec.TimeSelector,
			SummarySelector: spec.SummarySelector,
			Priority:        spec.Priority,
			MaxItems:        spec.MaxItems,
		}), nil
	case entity.SourceKindQuotaAPI:
		return NewGitHubAdapter(f.client, GitHubConfig{
			Name:              spec.Name,
			Repos:             spec.Repos,
			Token:             spec.Token,
			RequestsPerMinute: spec.RequestsPerMinute,
			Priority:          spec.Priority,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q for source %q", spec.Kind, spec.Name)
	}
}

// BuildAll instantiates adapters for every spec, failing on the first
// invalid one.
func (f *Factory) BuildAll(specs []Spec) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(specs))
	for _, spec := range specs {
		a, err := f.Build(spec)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func hoursOrZero(h int) time.Duration {
	if h <= 0 {
		return 0
	}
	return time.Duration(h) * time.Hour
}
