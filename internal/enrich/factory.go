package enrich

import (
	"fmt"
	"log/slog"
	"os"
)

// NewFromEnv selects the enrichment backend at configuration load time.
//
// ENRICH_BACKEND picks the implementation: "claude", "openai", or "noop".
// When unset, the backend is inferred from which API key is present,
// preferring Claude, and falls back to the no-op enricher with a warning.
func NewFromEnv() (Enricher, error) {
	backend := os.Getenv("ENRICH_BACKEND")
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")

	switch backend {
	case "claude":
		if anthropicKey == "" {
			return nil, fmt.Errorf("ENRICH_BACKEND=claude requires ANTHROPIC_API_KEY")
		}
		return NewClaude(anthropicKey), nil
	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("ENRICH_BACKEND=openai requires OPENAI_API_KEY")
		}
		return NewOpenAI(openaiKey), nil
	case "noop":
		return NewNoOp(), nil
	case "":
		if anthropicKey != "" {
			return NewClaude(anthropicKey), nil
		}
		if openaiKey != "" {
			return NewOpenAI(openaiKey), nil
		}
		slog.Warn("no enrichment API key configured, using noop enricher")
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("unknown enrichment backend %q", backend)
	}
}
