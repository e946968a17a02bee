package score

import (
	"errors"
	"testing"
	"time"

	"newsbrief/internal/domain/entity"
)

func scored(id string, importance, relevance, priority int) ScoredItem {
	return ScoredItem{
		Item:       entity.Item{ID: id, SourceName: "src", DeclaredPriority: priority},
		Enrichment: entity.Enrichment{Importance: importance, Relevance: relevance},
	}
}

func admittedIDs(items []ScoredItem) []string {
	out := make([]string, len(items))
	for i, si := range items {
		out[i] = si.Item.ID
	}
	return out
}

func TestAdmit_DualThresholdAND(t *testing.T) {
	cfg := Config{MinImportance: 6, MinRelevance: 5}

	tests := []struct {
		name string
		item ScoredItem
		want bool
	}{
		{"both meet", scored("a", 6, 5, 5), true},
		{"both exceed", scored("b", 10, 10, 5), true},
		{"importance below", scored("c", 5, 10, 5), false},
		{"relevance below", scored("d", 10, 4, 5), false},
		{"both below", scored("e", 1, 1, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Admit([]ScoredItem{tt.item}, cfg)
			if admitted := len(got) == 1; admitted != tt.want {
				t.Errorf("admitted = %v, want %v", admitted, tt.want)
			}
		})
	}
}

func TestAdmit_RaisingOneThresholdExcludes(t *testing.T) {
	item := scored("a", 7, 7, 7)

	if got := Admit([]ScoredItem{item}, Config{MinImportance: 7, MinRelevance: 7}); len(got) != 1 {
		t.Fatal("item should be admitted at its exact scores")
	}
	if got := Admit([]ScoredItem{item}, Config{MinImportance: 8, MinRelevance: 7}); len(got) != 0 {
		t.Error("raising importance threshold alone should exclude the item")
	}
	if got := Admit([]ScoredItem{item}, Config{MinImportance: 7, MinRelevance: 8}); len(got) != 0 {
		t.Error("raising relevance threshold alone should exclude the item")
	}
	if got := Admit([]ScoredItem{item}, Config{MinImportance: 7, MinRelevance: 7, MinDeclaredPriority: 8}); len(got) != 0 {
		t.Error("raising priority threshold alone should exclude the item")
	}
}

func TestAdmit_EnrichmentFailureExcluded(t *testing.T) {
	failed := scored("f", 10, 10, 10)
	failed.EnrichErr = errors.New("backend unavailable")

	got := Admit([]ScoredItem{failed}, Config{MinImportance: 1, MinRelevance: 1})

	if len(got) != 0 {
		t.Error("item with failed enrichment should receive fallback scores and be excluded")
	}
}

func TestAdmit_ZeroThresholdsAdmitFallback(t *testing.T) {
	failed := scored("f", 0, 0, 0)
	failed.EnrichErr = errors.New("backend unavailable")

	got := Admit([]ScoredItem{failed}, Config{})

	if len(got) != 1 {
		t.Error("zero thresholds admit everything, including fallback-scored items")
	}
}

func TestOrder(t *testing.T) {
	now := time.Now()
	items := []ScoredItem{
		scored("low", 5, 5, 5),
		scored("high", 9, 5, 5),
		scored("mid-newer", 7, 5, 5),
		scored("mid-older", 7, 5, 5),
	}
	items[2].Item.PublishedAt = now
	items[3].Item.PublishedAt = now.Add(-time.Hour)

	got := Order(items)

	want := []string{"high", "mid-newer", "mid-older", "low"}
	for i, id := range want {
		if got[i].Item.ID != id {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Item.ID, id)
		}
	}

	// Input order untouched.
	if items[0].Item.ID != "low" {
		t.Error("Order mutated its input")
	}
}

func TestApplyCaps(t *testing.T) {
	items := []ScoredItem{
		{Item: entity.Item{ID: "a1", SourceName: "a"}},
		{Item: entity.Item{ID: "a2", SourceName: "a"}},
		{Item: entity.Item{ID: "a3", SourceName: "a"}},
		{Item: entity.Item{ID: "b1", SourceName: "b"}},
		{Item: entity.Item{ID: "b2", SourceName: "b"}},
	}

	got := ApplyCaps(items, 2, 3)

	want := []string{"a1", "a2", "b1"}
	if len(got) != len(want) {
		t.Fatalf("kept %d items, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Item.ID != id {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Item.ID, id)
		}
	}
}

func TestApplyCaps_Disabled(t *testing.T) {
	items := []ScoredItem{
		{Item: entity.Item{ID: "a1", SourceName: "a"}},
		{Item: entity.Item{ID: "a2", SourceName: "a"}},
	}
	if got := ApplyCaps(items, 0, 0); len(got) != 2 {
		t.Errorf("kept %d items, want all with caps disabled", len(got))
	}
}
