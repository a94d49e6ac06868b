package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntroPayloadRequiresText(t *testing.T) {
	_, err := ParseIntroPayload([]byte(`{"tone": "warm"}`))
	assert.Error(t, err)

	_, err = ParseIntroPayload([]byte(`{"text": ""}`))
	assert.Error(t, err)

	_, err = ParseIntroPayload([]byte(`{"text": 42}`))
	assert.Error(t, err)

	_, err = ParseIntroPayload([]byte(`not json`))
	assert.Error(t, err)
}

func TestIntroPayloadPassthroughFieldsSurvive(t *testing.T) {
	raw := []byte(`{"text": "hello", "tone": "warm", "tags": ["go", "backend"]}`)

	payload, err := ParseIntroPayload(raw)
	assert.NoError(t, err)
	assert.Equal(t, "hello", payload.Text)

	out, err := json.Marshal(payload)
	assert.NoError(t, err)

	reparsed, err := ParseIntroPayload(out)
	assert.NoError(t, err)
	assert.Equal(t, "hello", reparsed.Text)
	assert.JSONEq(t, `"warm"`, string(reparsed.Extra["tone"]))
	assert.JSONEq(t, `["go", "backend"]`, string(reparsed.Extra["tags"]))
}
