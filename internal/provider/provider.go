package provider

import (
	"context"
	"errors"
)

var (
	// ErrAllProvidersFailed is returned when every enabled provider in the
	// chain failed to produce a response
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrNotConfigured is returned by a provider whose API key is missing
	ErrNotConfigured = errors.New("provider not configured")
)

// Request describes one generation attempt. ModelHint is a generic model
// name; each provider maps it to its own vendor-specific identifier.
type Request struct {
	Tool      string
	Prompt    string
	ModelHint string
	MaxTokens int
}

// Response is a successful generation together with the provider that
// produced it
type Response struct {
	Text     string
	Provider string
}

// Message is one turn of a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is one upstream text-generation backend. Providers are
// constructed once at startup and never mutated; order within the chain is
// priority.
type Provider interface {
	Name() string
	Enabled() bool
	Generate(ctx context.Context, req Request) (string, error)
}

// Streamer is implemented by providers that can relay a chat response chunk
// by chunk. onChunk is invoked for every chunk as it arrives; an error from
// the callback aborts the stream. The accumulated text is returned once the
// stream ends.
type Streamer interface {
	Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error)
}
