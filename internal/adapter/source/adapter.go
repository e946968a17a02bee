// Package source provides the adapters that translate external origins
// into canonical Items. One implementation exists per origin kind: RSS
// feeds, the HackerNews REST API, scraped blog frontends, and the
// quota-limited GitHub releases API.
//
// Adapters perform network I/O only. Retry, circuit breaking, and error
// containment live in the resilience wrapper around each adapter; an
// adapter reports failures as plain errors and never retries on its own.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/resilience/retry"
)

const userAgent = "newsbrief/1.0"

// maxResponseBytes caps response bodies to prevent memory exhaustion from
// hostile endpoints.
const maxResponseBytes = 10 << 20 // 10 MiB

// Adapter converts one external origin into canonical Items.
// Fetch is idempotent and side-effect free beyond network I/O; every
// returned Item is tagged with the adapter's name, kind, and priority.
type Adapter interface {
	Fetch(ctx context.Context) ([]entity.Item, error)
	Name() string
	Kind() entity.SourceKind
	Priority() int
}

// fetchBody performs a GET request and returns the response body.
// Non-2xx statuses become retry.HTTPError so the resilience wrapper can
// classify them; 403 responses carrying rate-limit markers are the
// caller's concern.
func fetchBody(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// clampPriority keeps declared priorities inside the 0-10 scale.
func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return p
}
