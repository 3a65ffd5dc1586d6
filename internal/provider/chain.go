package provider

import (
	"context"
	"fmt"
	"time"

	"aitool-service/pkg/config"
	"aitool-service/prometheus"

	"go.uber.org/zap"
)

// Chain tries providers strictly sequentially in fixed priority order and
// stops at the first success. Sequential dispatch bounds upstream cost: only
// one vendor call is billed at a time. The provider list is built once from
// configuration and never mutated afterwards.
type Chain struct {
	providers []Provider
	log       *zap.Logger
}

// NewChain builds the failover chain from configuration: OpenAI, then
// DeepInfra, then the offline mock. A provider is enabled when its API key is
// present; the mock is always enabled and acts as the last resort.
func NewChain(cfg config.AIConfig, log *zap.Logger) *Chain {
	return &Chain{
		providers: []Provider{
			newOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAITimeout),
			newDeepInfraProvider(cfg.DeepInfraAPIKey, cfg.DeepInfraTimeout),
			newMockProvider(),
		},
		log: log,
	}
}

// newChainWith assembles a chain from explicit providers, used by tests
func newChainWith(log *zap.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

// Generate dispatches through the chain. Each attempt runs under its
// provider's own deadline; failures are logged and the next provider tried.
// Exhaustion surfaces an aggregate error carrying the last failure.
func (c *Chain) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for _, p := range c.providers {
		if !p.Enabled() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		text, err := p.Generate(ctx, req)
		duration := time.Since(start)

		if err != nil {
			lastErr = err
			prometheus.RecordProviderRequest(p.Name(), "failure", duration)
			c.log.Warn("Provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("tool", req.Tool),
				zap.Duration("duration", duration),
				zap.Error(err))
			continue
		}

		prometheus.RecordProviderRequest(p.Name(), "success", duration)
		c.log.Info("Provider served request",
			zap.String("provider", p.Name()),
			zap.String("tool", req.Tool),
			zap.Duration("duration", duration))

		return &Response{Text: text, Provider: p.Name()}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
	}
	return nil, ErrAllProvidersFailed
}

// Stream relays a chat response through the highest-priority enabled provider
// that supports streaming
func (c *Chain) Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, string, error) {
	for _, p := range c.providers {
		if !p.Enabled() {
			continue
		}
		s, ok := p.(Streamer)
		if !ok {
			continue
		}

		full, err := s.Stream(ctx, messages, onChunk)
		return full, p.Name(), err
	}

	return "", "", ErrAllProvidersFailed
}
