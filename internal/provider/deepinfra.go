package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const deepInfraCompletionURL = "https://api.deepinfra.com/v1/openai/chat/completions"

// deepInfraModels maps generic model hints to DeepInfra's hosted models
var deepInfraModels = map[string]string{
	"gpt-3.5-turbo": "mistralai/Mistral-7B-Instruct-v0.1",
	"gpt-4":         "mistralai/Mixtral-8x7B-Instruct-v0.1",
}

const deepInfraDefaultModel = "mistralai/Mistral-7B-Instruct-v0.1"

// deepInfraProvider calls DeepInfra's OpenAI-compatible completions API
type deepInfraProvider struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func newDeepInfraProvider(apiKey string, timeout time.Duration) *deepInfraProvider {
	return &deepInfraProvider{
		apiKey:  apiKey,
		baseURL: deepInfraCompletionURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (p *deepInfraProvider) Name() string { return "DeepInfra" }

func (p *deepInfraProvider) Enabled() bool { return p.apiKey != "" }

func (p *deepInfraProvider) resolveModel(hint string) string {
	if mapped, ok := deepInfraModels[hint]; ok {
		return mapped
	}
	return deepInfraDefaultModel
}

// Generate performs a single blocking completion call under the provider's
// deadline
func (p *deepInfraProvider) Generate(ctx context.Context, req Request) (string, error) {
	if !p.Enabled() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload := chatCompletionRequest{
		Model:       p.resolveModel(req.ModelHint),
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.7,
	}

	body, err := postChatCompletion(ctx, p.client, p.baseURL, p.apiKey, payload)
	if err != nil {
		return "", err
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("malformed response: no choices returned")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
