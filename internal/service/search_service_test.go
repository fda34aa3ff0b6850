package service

import (
	"encoding/json"
	"testing"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

func TestHitID(t *testing.T) {
	tests := []struct {
		name string
		hit  meilisearch.Hit
		want string
	}{
		{
			"string id",
			meilisearch.Hit{"id": json.RawMessage(`"3f1c9a2e-0000-0000-0000-000000000001"`), "title": json.RawMessage(`"Backend Engineer"`)},
			"3f1c9a2e-0000-0000-0000-000000000001",
		},
		{"missing id", meilisearch.Hit{"title": json.RawMessage(`"Backend Engineer"`)}, ""},
		{"non-string id", meilisearch.Hit{"id": json.RawMessage(`42`)}, ""},
		{"malformed payload", meilisearch.Hit{"id": json.RawMessage(`{`)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hitID(tt.hit); got != tt.want {
				t.Errorf("hitID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanContentForIndex(t *testing.T) {
	s := &searchService{sanitizer: bluemonday.StrictPolicy()}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain text", "Go developer wanted", "Go developer wanted"},
		{"block tags become spaces", "<p>First</p><p>Second</p>", "First Second"},
		{"markup stripped", `<script>alert(1)</script><b>Senior</b> role`, "Senior role"},
		{"entities unescaped", "C&amp;I engineer", "C&I engineer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.cleanContentForIndex(tt.content); got != tt.want {
				t.Errorf("cleanContentForIndex(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
