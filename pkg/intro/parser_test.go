package intro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenerationResult(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantSlug string
		wantText string
		wantErr  bool
	}{
		{
			name:     "bare json",
			raw:      `{"slug": "go-expert", "text": "An intro."}`,
			wantSlug: "go-expert",
			wantText: "An intro.",
		},
		{
			name:     "fenced json",
			raw:      "```json\n{\"slug\": \"go-expert\", \"text\": \"An intro.\"}\n```",
			wantSlug: "go-expert",
			wantText: "An intro.",
		},
		{
			name:     "json with surrounding prose",
			raw:      "Sure! Here you go: {\"slug\": \"go-expert\", \"text\": \"An intro.\"} Hope that helps.",
			wantSlug: "go-expert",
			wantText: "An intro.",
		},
		{
			name:     "slug needs normalizing",
			raw:      `{"slug": "Go  Expert!", "text": "An intro."}`,
			wantSlug: "go-expert",
			wantText: "An intro.",
		},
		{
			name:     "missing slug falls back to text",
			raw:      `{"text": "Seasoned Go engineer with strong backend focus here."}`,
			wantSlug: "seasoned-go-engineer-with-strong-backend",
			wantText: "Seasoned Go engineer with strong backend focus here.",
		},
		{
			name:    "no json object",
			raw:     "I cannot answer in JSON.",
			wantErr: true,
		},
		{
			name:    "empty text",
			raw:     `{"slug": "x", "text": "   "}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"slug": "x", "text": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGenerationResult(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSlug, got.Slug)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go Expert", "go-expert"},
		{"  spaced  out  ", "spaced-out"},
		{"already-fine", "already-fine"},
		{"Ünïcode & symbols!", "n-code-symbols"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSlug(tt.in), "input %q", tt.in)
	}
}
