package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"newsbrief/internal/domain/entity"
	"newsbrief/internal/resilience/circuitbreaker"
	"newsbrief/internal/resilience/retry"
)

// OpenAIConfig holds configuration parameters for the OpenAI enricher.
type OpenAIConfig struct {
	// SummaryLimit is the maximum number of characters in a summary.
	// Loaded from ENRICH_SUMMARY_LIMIT. Valid range: 100-2000. Default: 400.
	SummaryLimit int

	// Model is the OpenAI API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single enrichment API call.
	Timeout time.Duration
}

// LoadOpenAIConfig loads configuration from environment variables.
func LoadOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		SummaryLimit: loadSummaryLimit(),
		Model:        openai.GPT4oMini,
		MaxTokens:    1024,
		Timeout:      60 * time.Second,
	}
}

// OpenAI implements the Enricher interface using OpenAI's chat API.
// It includes circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenAIConfig
}

// NewOpenAI creates a new OpenAI enricher with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	config := LoadOpenAIConfig()

	slog.Info("initialized openai enricher",
		slog.Int("summary_limit", config.SummaryLimit),
		slog.String("model", config.Model))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.EnrichmentAPIConfig(),
		config:         config,
	}
}

// Enrich scores and summarizes one item using the OpenAI chat API.
// It uses circuit breaker and retry logic for improved reliability.
func (o *OpenAI) Enrich(ctx context.Context, item entity.Item) (entity.Enrichment, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result entity.Enrichment

	retryErr := retry.WithBackoff(ctx, o.retryConfig, nil, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doEnrich(ctx, item)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", o.circuitBreaker.Name()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(entity.Enrichment)
		return nil
	})

	if retryErr != nil {
		return entity.Enrichment{}, fmt.Errorf("openai enrich failed after retries: %w", retryErr)
	}
	return result, nil
}

// doEnrich performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doEnrich(ctx context.Context, item entity.Item) (entity.Enrichment, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(item, o.config.SummaryLimit),
			},
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "openai enrichment call failed",
			slog.String("item_id", item.ID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return entity.Enrichment{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return entity.Enrichment{}, fmt.Errorf("openai api returned empty response")
	}

	enrichment, err := parseEnrichment(resp.Choices[0].Message.Content)
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
