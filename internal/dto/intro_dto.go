package dto

import (
	"encoding/json"
	"fmt"
)

// IntroPayload is the structured intro body persisted in the jsonb column.
// "text" is required; any other fields round-trip untouched.
type IntroPayload struct {
	Text  string
	Extra map[string]json.RawMessage
}

func (p *IntroPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	raw, ok := fields["text"]
	if !ok {
		return fmt.Errorf("intro payload is missing text")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return fmt.Errorf("intro payload text: %w", err)
	}
	if text == "" {
		return fmt.Errorf("intro payload text is empty")
	}

	delete(fields, "text")
	p.Text = text
	p.Extra = fields
	return nil
}

func (p IntroPayload) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(p.Extra)+1)
	for k, v := range p.Extra {
		fields[k] = v
	}

	text, err := json.Marshal(p.Text)
	if err != nil {
		return nil, err
	}
	fields["text"] = text

	return json.Marshal(fields)
}

// ParseIntroPayload validates raw jsonb (or a cached copy of it) against the
// intro schema.
func ParseIntroPayload(raw []byte) (*IntroPayload, error) {
	var payload IntroPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type QueryIntroRequest struct {
	Query string `json:"query" validate:"required"`
}

type QueryIntroResponse struct {
	Slug string `json:"slug"`
}

type CreateIntroRequest struct {
	Query string `json:"query" validate:"required"`
}

type CreateIntroResponse struct {
	Slug  string       `json:"slug"`
	Intro IntroPayload `json:"intro"`
}

// CommitIntroMessage is the payload handed to the background commit consumer
// after a creation response has been sent.
type CommitIntroMessage struct {
	Slug  string          `json:"slug"`
	Query string          `json:"query"`
	Intro json.RawMessage `json:"intro"`
}
