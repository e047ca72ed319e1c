package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/hubpilot/hubpilot/internal/config"
	"github.com/hubpilot/hubpilot/internal/logger"
	"github.com/hubpilot/hubpilot/internal/tools"
)

// TokenEstimator estimates token counts for rate limiting
type TokenEstimator struct{}

// NewTokenEstimator creates a new token estimator
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{}
}

// EstimateTokens estimates the number of tokens in a string
// Uses a rough approximation: chars/4 + 20% buffer
func (e *TokenEstimator) EstimateTokens(text string) int {
	baseEstimate := len(text) / 4
	return int(float64(baseEstimate) * 1.2)
}

// EstimateTurns estimates tokens for a conversation history
func (e *TokenEstimator) EstimateTurns(history []Turn) int {
	total := 0
	for _, turn := range history {
		// Overhead for message structure (~4 tokens per turn)
		total += 4
		total += e.EstimateTokens(turn.Text)
		total += e.EstimateTokens(turn.Result)
		for _, call := range turn.Calls {
			total += e.EstimateTokens(call.Name) + 8
		}
	}
	return total
}

// RateLimitedClient wraps an EngineClient with a proactive token bucket so
// bursts of follow-up calls stay under the provider's per-minute budget.
type RateLimitedClient struct {
	inner     EngineClient
	limiter   *rate.Limiter
	estimator *TokenEstimator
	burst     int
}

// NewRateLimitedClient creates a rate-limited wrapper around inner.
func NewRateLimitedClient(inner EngineClient, cfg *config.RateLimitConfig) *RateLimitedClient {
	tokensPerSecond := float64(cfg.TokensPerMinute) / 60.0
	// Burst allows ~10 seconds of budget at once
	burst := cfg.TokensPerMinute / 6
	if burst < 1000 {
		burst = 1000
	}

	return &RateLimitedClient{
		inner:     inner,
		limiter:   rate.NewLimiter(rate.Limit(tokensPerSecond), burst),
		estimator: NewTokenEstimator(),
		burst:     burst,
	}
}

// Converse waits for token budget, then delegates.
func (c *RateLimitedClient) Converse(ctx context.Context, history []Turn, systemPrompt string, defs []tools.Definition, model string) (*EngineResponse, error) {
	n := c.estimator.EstimateTurns(history) + c.estimator.EstimateTokens(systemPrompt)
	if n > c.burst {
		n = c.burst
	}
	if n > 0 {
		if err := c.limiter.WaitN(ctx, n); err != nil {
			return nil, err
		}
		logger.Debug("rate limiter released %d estimated tokens", n)
	}

	return c.inner.Converse(ctx, history, systemPrompt, defs, model)
}
