package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with rate limit, retry, usage and logging
// middleware. eventRepo and usage may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, usage *UsageLedger, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return WithUsage(NewMockProvider(), usage), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → rate limit → retry → usage → logging → base
	logged := WithLogging(base, eventRepo, log)
	retried := WithRetry(WithUsage(logged, usage), cfg.Retry)

	return WithRateLimit(retried, cfg.RateLimit), nil
}
