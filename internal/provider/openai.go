package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openAICompletionURL = "https://api.openai.com/v1/chat/completions"

// chatCompletionRequest is the OpenAI-style chat completions payload, also
// accepted by DeepInfra's OpenAI-compatible endpoint
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// openAIProvider calls the OpenAI chat completions API
type openAIProvider struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func newOpenAIProvider(apiKey string, timeout time.Duration) *openAIProvider {
	return &openAIProvider{
		apiKey:  apiKey,
		baseURL: openAICompletionURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (p *openAIProvider) Name() string { return "OpenAI" }

func (p *openAIProvider) Enabled() bool { return p.apiKey != "" }

// resolveModel passes known hints through and falls back to the default
// model for anything unrecognized
func (p *openAIProvider) resolveModel(hint string) string {
	switch hint {
	case "gpt-3.5-turbo", "gpt-4":
		return hint
	default:
		return "gpt-3.5-turbo"
	}
}

// Generate performs a single blocking completion call under the provider's
// deadline
func (p *openAIProvider) Generate(ctx context.Context, req Request) (string, error) {
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

// Stream opens a chat completions stream and relays delta chunks through
// onChunk as they arrive. The stream budget is double the single-shot budget.
func (p *openAIProvider) Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error) {
	if !p.Enabled() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, 2*p.timeout)
	defer cancel()

	payload := chatCompletionRequest{
		Model:       "gpt-3.5-turbo",
		Messages:    messages,
		Temperature: 0.7,
		Stream:      true,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keep-alive lines rather than killing the stream
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		if err := onChunk(content); err != nil {
			return full.String(), err
		}
		full.WriteString(content)
	}

	if err := scanner.Err(); err != nil {
		return full.String(), err
	}
	if err := ctx.Err(); err != nil {
		return full.String(), err
	}

	return full.String(), nil
}

// postChatCompletion performs a chat completions POST and returns the raw
// response body once the status is 2xx
func postChatCompletion(ctx context.Context, client *http.Client, url, apiKey string, payload chatCompletionRequest) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return body, nil
}
