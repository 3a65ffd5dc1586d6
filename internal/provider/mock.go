package provider

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// mockProvider is the deterministic offline fallback. It is always enabled,
// never fails, and returns a templated tool-aware placeholder so the chain
// can guarantee a response without any network call.
type mockProvider struct{}

func newMockProvider() *mockProvider { return &mockProvider{} }

func (p *mockProvider) Name() string { return "Mock" }

func (p *mockProvider) Enabled() bool { return true }

// Generate returns a canned response templated by tool name
func (p *mockProvider) Generate(ctx context.Context, req Request) (string, error) {
	switch req.Tool {
	case "summarizer":
		return fmt.Sprintf("Mock summary: %s... [summary]", truncate(req.Prompt, 100)), nil
	case "email-writer":
		return fmt.Sprintf("Subject: Mock Email\n\nDear Recipient,\n\n%s\n\nSincerely,\n[Your Name]", req.Prompt), nil
	case "code-generator":
		return fmt.Sprintf("// Mock code for: %s\nfunc example() string {\n\treturn \"solution\"\n}", truncate(req.Prompt, 100)), nil
	default:
		return fmt.Sprintf("Mock response: %s", truncate(req.Prompt, 150)), nil
	}
}

// Stream relays a canned chat reply word by word so the streaming surface
// keeps working when no upstream provider is configured
func (p *mockProvider) Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error) {
	var lastUserMessage string
	for _, m := range messages {
		if m.Role == "user" {
			lastUserMessage = m.Content
		}
	}

	reply := fmt.Sprintf("Mock response: %s", truncate(lastUserMessage, 150))

	var full strings.Builder
	for i, word := range strings.Fields(reply) {
		if err := ctx.Err(); err != nil {
			return full.String(), err
		}
		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		if err := onChunk(chunk); err != nil {
			return full.String(), err
		}
		full.WriteString(chunk)
	}

	return full.String(), nil
}

// truncate cuts s to at most max bytes without splitting a rune
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
