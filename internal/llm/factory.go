package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration, wrapped with retry and
// event-logging middleware.
func NewProvider(ctx context.Context, cfg Config, rec EventRecorder) (Provider, error) {
	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return base, nil
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, rec)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

// NewProviderChain builds a fallback chain over the given model names for
// the configured backend. The first model is primary; each model gets its
// own retry/logging middleware so a model is retried before being given up
// on.
func NewProviderChain(ctx context.Context, cfg Config, rec EventRecorder, models ...string) (Provider, error) {
	if len(models) == 0 {
		return NewProvider(ctx, cfg, rec)
	}

	chain := make([]Provider, 0, len(models))
	for _, m := range models {
		p, err := NewProvider(ctx, cfg.WithModel(m), rec)
		if err != nil {
			return nil, fmt.Errorf("build provider for model %q: %w", m, err)
		}
		chain = append(chain, p)
	}
	return NewFallbackChain(chain...)
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return base, nil
}
