package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/resilience/retry"
)

const githubAPIURL = "https://api.github.com"

// GitHubConfig configures a release-watching adapter over the GitHub REST
// API. The API enforces a request quota, so the adapter paces its calls
// and reports quota exhaustion distinctly from transient failures.
type GitHubConfig struct {
	Name string

	// Repos lists repositories to watch, as "owner/name".
	Repos []string

	// Token is an optional personal access token. Unauthenticated
	// requests share a much smaller quota.
	Token string

	// RequestsPerMinute paces calls to the API. Defaults to 20.
	RequestsPerMinute int

	Priority int
}

// GitHubAdapter fetches the latest releases of configured repositories.
type GitHubAdapter struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     GitHubConfig
	baseURL string
}

// NewGitHubAdapter creates a release-watching adapter with the given
// HTTP client.
func NewGitHubAdapter(client *http.Client, cfg GitHubConfig) *GitHubAdapter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}
	return &GitHubAdapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		cfg:     cfg,
		baseURL: githubAPIURL,
	}
}

// Name returns the configured source name.
func (a *GitHubAdapter) Name() string { return a.cfg.Name }

// Kind returns the quota-limited API source kind.
func (a *GitHubAdapter) Kind() entity.SourceKind { return entity.SourceKindQuotaAPI }

// Priority returns the declared priority for items from this source.
func (a *GitHubAdapter) Priority() int { return clampPriority(a.cfg.Priority) }

type githubRelease struct {
	Name        string    `json:"name"`
	TagName     string    `json:"tag_name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

// Fetch retrieves the latest release of each configured repository.
// Quota exhaustion (403 with a depleted rate limit) aborts the whole
// fetch with a quota error so the caller skips this source until the
// quota window resets rather than burning retries against it.
func (a *GitHubAdapter) Fetch(ctx context.Context) ([]entity.Item, error) {
	now := time.Now()
	var items []entity.Item

	for _, repo := range a.cfg.Repos {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		rel, err := a.fetchLatestRelease(ctx, repo)
		if err != nil {
			var httpErr *retry.HTTPError
			if errors.As(err, &httpErr) {
				switch httpErr.StatusCode {
				case http.StatusForbidden, http.StatusTooManyRequests:
					return nil, entity.NewSourceError(a.cfg.Name, entity.ErrorKindQuota, err)
				case http.StatusNotFound:
					// Repo without releases, or renamed. Skip it.
					continue
				}
			}
			return nil, fmt.Errorf("fetch releases for %s: %w", repo, err)
		}
		if rel == nil || rel.Draft {
			continue
		}

		title := rel.Name
		if title == "" {
			title = rel.TagName
		}
		items = append(items, entity.Item{
			ID:               uuid.New().String(),
			SourceName:       a.cfg.Name,
			SourceKind:       entity.SourceKindQuotaAPI,
			Title:            fmt.Sprintf("%s %s", repo, title),
			Body:             rel.Body,
			URL:              rel.HTMLURL,
			PublishedAt:      rel.PublishedAt,
			FetchedAt:        now,
			DeclaredPriority: a.Priority(),
		})
	}

	return items, nil
}

func (a *GitHubAdapter) fetchLatestRelease(ctx context.Context, repo string) (*githubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", a.baseURL, repo)

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if a.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+a.cfg.Token)
	}

	body, err := fetchBody(ctx, a.client, url, header)
	if err != nil {
		return nil, err
	}

	var rel githubRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &rel, nil
}
