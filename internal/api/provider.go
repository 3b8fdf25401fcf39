package api

import (
	"context"
	"fmt"
)

// Backend is an LLM that answers a system and user prompt with text.
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Model() string
	Tracker() *TokenTracker
}

var (
	_ Backend = (*Client)(nil)
	_ Backend = (*GeminiClient)(nil)
)

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Options selects and configures a backend.
type Options struct {
	Provider  string
	Anthropic ClientConfig
	Gemini    GeminiConfig
}

// New creates the backend named by opts.Provider.
func New(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Provider {
	case ProviderAnthropic, "":
		return NewClient(opts.Anthropic)
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.Gemini)
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}
