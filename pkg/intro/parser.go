package intro

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerationResult is the structured object the model must answer with.
type GenerationResult struct {
	Slug string `json:"slug"`
	Text string `json:"text"`
}

// ParseGenerationResult extracts the {slug, text} object from raw model
// output. Models wrap JSON in code fences or prose often enough that we
// locate the outermost object instead of unmarshaling the whole reply.
func ParseGenerationResult(raw string) (*GenerationResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var result GenerationResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("unmarshal generation result: %w", err)
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, fmt.Errorf("generation result has no text")
	}

	result.Slug = NormalizeSlug(result.Slug)
	if result.Slug == "" {
		// Fall back to deriving a slug from the text so a sloppy model
		// response still yields an addressable record.
		result.Slug = NormalizeSlug(firstWords(result.Text, 6))
	}
	if result.Slug == "" {
		return nil, fmt.Errorf("generation result has no usable slug")
	}

	return &result, nil
}

// NormalizeSlug lowercases and reduces a candidate slug to url-safe
// dash-separated tokens.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	lastDash := true // avoid a leading dash
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
