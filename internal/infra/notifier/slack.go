package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsbrief/internal/format"
)

// slackMaxText is the Slack section text limit per message.
const slackMaxText = 3000

// SlackConfig contains configuration for Slack webhook delivery.
type SlackConfig struct {
	// Enabled indicates whether Slack delivery is enabled.
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes the token).
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls.
	Timeout time.Duration
}

// SlackNotifier delivers the brief to Slack via an Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a SlackNotifier with the given configuration.
// The rate limiter follows the webhook limit of one message per second.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// Name returns the channel identifier.
func (s *SlackNotifier) Name() string { return "slack" }

// IsEnabled reports whether the channel is configured for delivery.
func (s *SlackNotifier) IsEnabled() bool {
	return s.config.Enabled && s.config.WebhookURL != ""
}

type slackPayload struct {
	Text string `json:"text"`
}

// Send splits the brief at the Slack text limit and posts each chunk to
// the webhook in order, rate limited.
func (s *SlackNotifier) Send(ctx context.Context, text string) error {
	for _, chunk := range format.Chunk(text, slackMaxText) {
		if err := s.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		if err := s.post(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// The webhook URL embeds the token; never echo it in errors.
		return fmt.Errorf("slack request failed: %w", sanitizeURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack api error: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return nil
}
