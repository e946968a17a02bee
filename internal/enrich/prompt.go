package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"newsbrief/internal/domain/entity"
)

// maxPromptChars truncates item bodies to stay well inside model context
// limits and keep per-call cost predictable.
const maxPromptChars = 8000

// buildPrompt constructs the enrichment prompt for one item. The model
// is asked for strict JSON so the response parses without heuristics.
func buildPrompt(item entity.Item, summaryLimit int) string {
	body := item.Body
	if len(body) > maxPromptChars {
		body = body[:maxPromptChars] + "..."
	}

	return fmt.Sprintf(`You are scoring a tech news item for a daily engineering brief.

Title: %s
Source: %s
Content:
%s

Respond with only a JSON object, no markdown, with exactly these keys:
{"summary": "<summary in at most %d characters>", "importance": <integer 0-10>, "relevance": <integer 0-10, topical relevance to software engineering>}`,
		item.Title, item.SourceName, body, summaryLimit)
}

// enrichmentResponse mirrors the JSON the model is instructed to return.
type enrichmentResponse struct {
	Summary    string `json:"summary"`
	Importance int    `json:"importance"`
	Relevance  int    `json:"relevance"`
}

// parseEnrichment decodes a model response into an Enrichment. It
// tolerates a fenced code block around the JSON but nothing else.
func parseEnrichment(raw string) (entity.Enrichment, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp enrichmentResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return entity.Enrichment{}, fmt.Errorf("parse enrichment response: %w", err)
	}
	if resp.Summary == "" {
		return entity.Enrichment{}, fmt.Errorf("enrichment response missing summary")
	}

	return entity.Enrichment{
		Summary:    resp.Summary,
		Importance: clampScore(resp.Importance),
		Relevance:  clampScore(resp.Relevance),
	}, nil
}
