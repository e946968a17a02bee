package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: go-blog
    kind: feed
    priority: 8
    feed_urls:
      - https://go.dev/blog/feed.atom
  - name: hn-golang
    kind: api
    priority: 6
    query: golang
    min_points: 50
  - name: releases
    kind: quota_api
    priority: 7
    repos:
      - golang/go
    requests_per_minute: 20
`)

	specs, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("LoadSources() = %d specs, want 3", len(specs))
	}
	if specs[0].Name != "go-blog" || specs[0].Kind != "feed" || specs[0].Priority != 8 {
		t.Errorf("first spec = %+v", specs[0])
	}
	if len(specs[0].FeedURLs) != 1 {
		t.Errorf("feed_urls = %v, want 1 entry", specs[0].FeedURLs)
	}
	if specs[1].Query != "golang" || specs[1].MinPoints != 50 {
		t.Errorf("api spec = %+v", specs[1])
	}
	if len(specs[2].Repos) != 1 || specs[2].RequestsPerMinute != 20 {
		t.Errorf("quota_api spec = %+v", specs[2])
	}
}

func TestLoadSources_DisabledSourceSkipped(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: go-blog
    kind: feed
    priority: 8
  - name: paused
    kind: api
    priority: 6
    enabled: false
  - name: explicit
    kind: feed
    priority: 5
    enabled: true
`)

	specs, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("LoadSources() = %d specs, want 2", len(specs))
	}
	for _, spec := range specs {
		if spec.Name == "paused" {
			t.Error("disabled source was returned")
		}
	}
}

func TestLoadSources_DisabledSourceStillValidated(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: live
    kind: feed
  - name: broken
    kind: feed
    priority: 99
    enabled: false
`)

	if _, err := LoadSources(path); err == nil {
		t.Fatal("LoadSources() error = nil, want validation error for disabled stanza")
	}
}

func TestLoadSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty file",
			content: "sources: []\n",
			wantErr: "defines no sources",
		},
		{
			name: "missing name",
			content: `
sources:
  - kind: feed
`,
			wantErr: "name is required",
		},
		{
			name: "duplicate name",
			content: `
sources:
  - name: dup
    kind: feed
  - name: dup
    kind: api
`,
			wantErr: "duplicate source name",
		},
		{
			name: "missing kind",
			content: `
sources:
  - name: nokind
`,
			wantErr: "kind is required",
		},
		{
			name: "priority out of range",
			content: `
sources:
  - name: loud
    kind: feed
    priority: 99
`,
			wantErr: "priority",
		},
		{
			name: "all disabled",
			content: `
sources:
  - name: only
    kind: feed
    enabled: false
`,
			wantErr: "enables no sources",
		},
		{
			name:    "not yaml",
			content: "{{{",
			wantErr: "parse sources file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSourcesFile(t, tt.content)
			_, err := LoadSources(path)
			if err == nil {
				t.Fatal("LoadSources() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadSources() error = nil for missing file")
	}
}
