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

const (
	telegramAPIURL = "https://api.telegram.org"

	// telegramMaxMessage is the Telegram Bot API message length limit.
	telegramMaxMessage = 4096
)

// TelegramConfig contains configuration for Telegram bot delivery.
type TelegramConfig struct {
	// Enabled indicates whether Telegram delivery is enabled.
	Enabled bool

	// BotToken is the Telegram bot API token.
	BotToken string

	// ChatID is the destination chat.
	ChatID string

	// Timeout is the HTTP request timeout for Telegram API calls.
	Timeout time.Duration
}

// TelegramNotifier delivers the brief via the Telegram Bot API.
// Long briefs are split into multiple messages at the API length limit.
type TelegramNotifier struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseURL     string
}

// NewTelegramNotifier creates a TelegramNotifier with the given configuration.
// The rate limiter follows the Bot API limit of roughly one message per
// second to a single chat.
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &TelegramNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
		baseURL:     telegramAPIURL,
	}
}

// Name returns the channel identifier.
func (t *TelegramNotifier) Name() string { return "telegram" }

// IsEnabled reports whether the channel is configured for delivery.
func (t *TelegramNotifier) IsEnabled() bool {
	return t.config.Enabled && t.config.BotToken != "" && t.config.ChatID != ""
}

type telegramSendRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send splits the text at the message length limit and sends each chunk
// in order, rate limited.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	for _, chunk := range format.Chunk(text, telegramMaxMessage) {
		if err := t.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		if err := t.sendMessage(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(telegramSendRequest{
		ChatID:                t.config.ChatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The token is part of the URL; never echo it in errors.
		return fmt.Errorf("telegram request failed: %w", sanitizeURLError(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiResp telegramResponse
	if err := json.Unmarshal(body, &apiResp); err != nil || !apiResp.OK {
		return fmt.Errorf("telegram api error: status %d: %s", resp.StatusCode, apiResp.Description)
	}
	return nil
}
