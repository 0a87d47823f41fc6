// Package llm defines the language-model capability contract and its adapters.
package llm

import "context"

// Client is the single capability the pipeline needs from a language model:
// given a prompt, produce text, asynchronously, fallibly. Calls may be slow;
// the pipeline issues them strictly sequentially, one in flight per run.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Settings carries provider configuration for concrete adapters.
type Settings struct {
	Provider string // "openai" or "mock"
	Model    string
	APIKey   string
	BaseURL  string
}
