package intro

import (
	"fmt"
	"os"
	"strings"

	"portfolio-intro-be/pkg/llm"
)

// PromptBuilder assembles the generation messages for a tailored
// introduction: a system prompt carrying the owner's context and the output
// contract, plus the visitor's query.
type PromptBuilder struct {
	ownerName string
	context   string
}

// NewPromptBuilder reads the owner context file once at startup. A missing
// file is an error; the caller decides whether to run without context.
func NewPromptBuilder(ownerName, contextFilePath string) (*PromptBuilder, error) {
	contextBytes, err := os.ReadFile(contextFilePath)
	if err != nil {
		return &PromptBuilder{ownerName: ownerName}, fmt.Errorf("read context file: %w", err)
	}
	return &PromptBuilder{
		ownerName: ownerName,
		context:   strings.TrimSpace(string(contextBytes)),
	}, nil
}

func (b *PromptBuilder) Build(query string) []llm.Message {
	var system strings.Builder

	system.WriteString("You are tasked to create a tailored introduction for ")
	system.WriteString(b.ownerName)
	system.WriteString(". The introduction should be tailored to a specific query. ")
	system.WriteString("The introduction should be concise and to the point. ")
	system.WriteString("The introduction should be no more than 100 words.\n\n")

	if b.context != "" {
		system.WriteString("This is the context of ")
		system.WriteString(b.ownerName)
		system.WriteString(":\n\n\"\"\"\n")
		system.WriteString(b.context)
		system.WriteString("\n\"\"\"\n\n")
	}

	system.WriteString("Respond with a single JSON object and nothing else:\n")
	system.WriteString(`{"slug": "<short url-safe identifier for this introduction>", "text": "<the introduction>"}`)

	return []llm.Message{
		{Role: "system", Content: system.String()},
		{Role: "user", Content: query},
	}
}
