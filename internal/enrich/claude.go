package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/resilience/circuitbreaker"
	"newsbrief/internal/resilience/retry"
)

// ClaudeConfig holds configuration parameters for the Claude enricher.
// Configuration is loaded from environment variables with fallback to defaults.
type ClaudeConfig struct {
	// SummaryLimit is the maximum number of characters in a summary.
	// Loaded from ENRICH_SUMMARY_LIMIT. Valid range: 100-2000. Default: 400.
	SummaryLimit int

	// Model is the Claude API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single enrichment API call.
	Timeout time.Duration
}

// LoadClaudeConfig loads configuration from environment variables.
// An invalid ENRICH_SUMMARY_LIMIT falls back to the default with a warning.
func LoadClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		SummaryLimit: loadSummaryLimit(),
		Model:        string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:    1024,
		Timeout:      60 * time.Second,
	}
}

func loadSummaryLimit() int {
	const (
		defaultLimit = 400
		minLimit     = 100
		maxLimit     = 2000
	)

	envLimit := os.Getenv("ENRICH_SUMMARY_LIMIT")
	if envLimit == "" {
		return defaultLimit
	}

	parsed, err := strconv.Atoi(envLimit)
	if err != nil {
		slog.Warn("invalid ENRICH_SUMMARY_LIMIT format, using default",
			slog.String("value", envLimit),
			slog.Int("default", defaultLimit))
		return defaultLimit
	}
	if parsed < minLimit || parsed > maxLimit {
		slog.Warn("ENRICH_SUMMARY_LIMIT out of valid range, using default",
			slog.Int("value", parsed),
			slog.Int("min", minLimit),
			slog.Int("max", maxLimit),
			slog.Int("default", defaultLimit))
		return defaultLimit
	}
	return parsed
}

// Claude implements the Enricher interface using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ClaudeConfig
}

// NewClaude creates a new Claude enricher with the given API key.
func NewClaude(apiKey string) *Claude {
	config := LoadClaudeConfig()

	slog.Info("initialized claude enricher",
		slog.Int("summary_limit", config.SummaryLimit),
		slog.String("model", config.Model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.EnrichmentAPIConfig(),
		config:         config,
	}
}

// Enrich scores and summarizes one item using Claude.
// It uses circuit breaker and retry logic for improved reliability.
func (c *Claude) Enrich(ctx context.Context, item entity.Item) (entity.Enrichment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result entity.Enrichment

	retryErr := retry.WithBackoff(ctx, c.retryConfig, nil, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doEnrich(ctx, item)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", c.circuitBreaker.Name()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(entity.Enrichment)
		return nil
	})

	if retryErr != nil {
		return entity.Enrichment{}, fmt.Errorf("claude enrich failed after retries: %w", retryErr)
	}
	return result, nil
}

// doEnrich performs the actual API call without retry or circuit breaker.
func (c *Claude) doEnrich(ctx context.Context, item entity.Item) (entity.Enrichment, error) {
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(item, c.config.SummaryLimit)),
			),
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "claude enrichment call failed",
			slog.String("item_id", item.ID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return entity.Enrichment{}, fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return entity.Enrichment{}, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return entity.Enrichment{}, fmt.Errorf("claude api returned unexpected response type")
	}

	enrichment, err := parseEnrichment(textBlock.Text)
	if err != nil {
		return entity.Enrichment{}, err
	}

	slog.InfoContext(ctx, "item enriched",
		slog.String("item_id", item.ID),
		slog.Int("importance", enrichment.Importance),
		slog.Int("relevance", enrichment.Relevance),
		slog.Duration("duration", duration))

	return enrichment, nil
}
