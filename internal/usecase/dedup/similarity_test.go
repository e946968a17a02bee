package dedup

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "go release notes", "go release notes", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "go", "", 0.0},
		{"disjoint", "zzz", "qqq", 0.0},
		{"abc vs abd", "abc", "abd", 2.0 * 2.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "openai releases new model", "new model released by openai"
	if got, rev := Similarity(a, b), Similarity(b, a); got != rev {
		t.Errorf("Similarity not symmetric: %f vs %f", got, rev)
	}
}

func TestSimilarity_NearDuplicateAboveThreshold(t *testing.T) {
	a := NormalizeTitle("Go 1.25 Released With Faster GC")
	b := NormalizeTitle("Go 1.25 released with faster GC!")
	if got := Similarity(a, b); got <= 0.8 {
		t.Errorf("Similarity = %f, want above 0.8 for near-duplicates", got)
	}
}

func TestSimilarity_DistinctBelowThreshold(t *testing.T) {
	a := NormalizeTitle("Kubernetes 1.31 changelog")
	b := NormalizeTitle("Why I stopped using microservices")
	if got := Similarity(a, b); got > 0.8 {
		t.Errorf("Similarity = %f, want below threshold for distinct titles", got)
	}
}
