package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"newsbrief/internal/domain/entity"
)

// fakeEnricher fails for item IDs in failIDs and succeeds otherwise.
type fakeEnricher struct {
	failIDs map[string]bool
}

func (f *fakeEnricher) Enrich(_ context.Context, item entity.Item) (entity.Enrichment, error) {
	if f.failIDs[item.ID] {
		return entity.Enrichment{}, errors.New("backend error")
	}
	return entity.Enrichment{Summary: "summary of " + item.ID, Importance: 7, Relevance: 6}, nil
}

func TestService_EnrichAll_PreservesOrder(t *testing.T) {
	items := []entity.Item{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}
	svc := NewService(&fakeEnricher{}, nil)

	results := svc.EnrichAll(context.Background(), items)

	if len(results) != 3 {
		t.Fatalf("results length = %d, want 3", len(results))
	}
	for i, id := range []string{"a", "b", "c"} {
		if results[i].Item.ID != id {
			t.Errorf("results[%d].Item.ID = %q, want %q", i, results[i].Item.ID, id)
		}
		if results[i].EnrichErr != nil {
			t.Errorf("results[%d].EnrichErr = %v, want nil", i, results[i].EnrichErr)
		}
	}
}

func TestService_EnrichAll_FailureIsPerItem(t *testing.T) {
	items := []entity.Item{
		{ID: "good"}, {ID: "bad"}, {ID: "also-good"},
	}
	svc := NewService(&fakeEnricher{failIDs: map[string]bool{"bad": true}}, nil)

	results := svc.EnrichAll(context.Background(), items)

	if results[0].EnrichErr != nil || results[2].EnrichErr != nil {
		t.Error("healthy items should not carry errors")
	}

	failed := results[1]
	if failed.EnrichErr == nil {
		t.Fatal("failed item should carry its error")
	}
	var enrichErr *entity.EnrichmentError
	if !errors.As(failed.EnrichErr, &enrichErr) {
		t.Errorf("error %v is not an EnrichmentError", failed.EnrichErr)
	}
	if failed.Enrichment != entity.FallbackEnrichment() {
		t.Errorf("failed item enrichment = %+v, want fallback", failed.Enrichment)
	}
}

func TestParseEnrichment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    entity.Enrichment
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"summary": "Go 1.25 shipped", "importance": 8, "relevance": 9}`,
			want: entity.Enrichment{Summary: "Go 1.25 shipped", Importance: 8, Relevance: 9},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"summary\": \"s\", \"importance\": 5, \"relevance\": 5}\n```",
			want: entity.Enrichment{Summary: "s", Importance: 5, Relevance: 5},
		},
		{
			name: "scores clamped to range",
			raw:  `{"summary": "s", "importance": 15, "relevance": -3}`,
			want: entity.Enrichment{Summary: "s", Importance: 10, Relevance: 0},
		},
		{
			name:    "missing summary",
			raw:     `{"importance": 5, "relevance": 5}`,
			wantErr: true,
		},
		{
			name:    "prose instead of json",
			raw:     "This article is quite important.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEnrichment(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseEnrichment() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEnrichment() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseEnrichment() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt_TruncatesLongBody(t *testing.T) {
	item := entity.Item{
		Title:      "Long article",
		SourceName: "test",
		Body:       strings.Repeat("x", maxPromptChars+500),
	}
	prompt := buildPrompt(item, 400)

	if len(prompt) > maxPromptChars+1000 {
		t.Errorf("prompt length = %d, body was not truncated", len(prompt))
	}
}

func TestNoOp_Enrich(t *testing.T) {
	item := entity.Item{
		ID:               "a",
		Body:             strings.Repeat("x", 600),
		DeclaredPriority: 8,
	}

	got, err := NewNoOp().Enrich(context.Background(), item)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if got.Importance != 8 {
		t.Errorf("Importance = %d, want declared priority 8", got.Importance)
	}
	if len(got.Summary) != 403 {
		t.Errorf("summary length = %d, want 400 chars plus ellipsis", len(got.Summary))
	}
}

func TestNewFromEnv_Noop(t *testing.T) {
	t.Setenv("ENRICH_BACKEND", "noop")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	enricher, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if _, ok := enricher.(*NoOp); !ok {
		t.Errorf("enricher type = %T, want *NoOp", enricher)
	}
}

func TestNewFromEnv_MissingKey(t *testing.T) {
	t.Setenv("ENRICH_BACKEND", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewFromEnv(); err == nil {
		t.Fatal("NewFromEnv() error = nil, want missing key error")
	}
}

func TestNewFromEnv_UnknownBackend(t *testing.T) {
	t.Setenv("ENRICH_BACKEND", "carrier-pigeon")

	if _, err := NewFromEnv(); err == nil {
		t.Fatal("NewFromEnv() error = nil, want unknown backend error")
	}
}
