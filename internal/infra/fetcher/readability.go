// Package fetcher extracts full article text for items whose source only
// carried a teaser. Extraction uses the Mozilla Readability algorithm via
// go-shiori/go-readability, behind SSRF validation, size limits, and a
// circuit breaker.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"newsbrief/internal/resilience/circuitbreaker"
)

// Config bounds content fetching.
type Config struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration

	// MaxBodySize caps the response body in bytes.
	MaxBodySize int64

	// MaxRedirects caps the redirect chain length.
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private and loopback
	// addresses. Disable only in tests.
	DenyPrivateIPs bool
}

// DefaultConfig returns the production content fetch limits.
func DefaultConfig() Config {
	return Config{
		Timeout:        20 * time.Second,
		MaxBodySize:    10 << 20,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// ReadabilityFetcher fetches a page and extracts its article text.
// Safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewReadabilityFetcher creates a fetcher with redirect validation and a
// shared circuit breaker over all content fetch targets.
func NewReadabilityFetcher(config Config) *ReadabilityFetcher {
	f := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		config:         config,
	}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("too many redirects: %d", len(via))
			}
			return validateURL(req.URL, f.config.DenyPrivateIPs)
		},
	}
	return f
}

// FetchContent fetches urlStr and returns its extracted article text.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", urlStr, err)
	}
	if err := validateURL(parsed, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, parsed)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, target *url.URL) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "newsbrief/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("content fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("response exceeds %d byte limit", f.config.MaxBodySize)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	article, err := readability.FromReader(strings.NewReader(string(htmlBytes)), finalURL)
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable content at %s", finalURL)
	}
	return text, nil
}
