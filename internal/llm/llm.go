// Package llm defines the text-generation provider used by the pipeline and its
// adapters for Anthropic, Gemini and OpenAI-compatible APIs.
package llm

import (
	"context"
	"strings"
)

// Request is a single prompt to a text-generation provider.
type Request struct {
	System          string
	Prompt          string
	MaxOutputTokens int
	// Phase labels the call site for cost and log attribution.
	Phase string
}

// Generator produces text for a prompt. Implementations return provider errors
// as-is; callers treat any error or unparseable output as "no result".
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop the language tag on the opening fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 && !strings.ContainsAny(text[:idx], "{[") {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// CleanJSONObject extracts the outermost JSON object from model output that
// may be fenced or surrounded by prose. Returns "" when no object is present.
func CleanJSONObject(text string) string {
	return between(StripFences(text), "{", "}")
}

// CleanJSONArray extracts the outermost JSON array from model output.
// Returns "" when no array is present.
func CleanJSONArray(text string) string {
	return between(StripFences(text), "[", "]")
}

func between(text, open, closing string) string {
	start := strings.Index(text, open)
	end := strings.LastIndex(text, closing)
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
