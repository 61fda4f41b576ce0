package llm

import (
	"context"
	"errors"
	"fmt"
)

// FallbackProvider tries an ordered chain of providers, moving to the next
// one when a call fails in a way a different model could survive. Grading
// callers see a single Provider; the primary/secondary chain is opaque.
type FallbackProvider struct {
	chain []Provider
}

// NewFallbackChain builds a fallback provider from primary to last resort.
func NewFallbackChain(providers ...Provider) (*FallbackProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("fallback chain requires at least one provider")
	}
	return &FallbackProvider{chain: providers}, nil
}

func (f *FallbackProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for _, p := range f.chain {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Context errors end the chain; a different model won't help.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all %d providers in fallback chain failed: %w", len(f.chain), lastErr)
}

// ModelID returns the primary model's identifier.
func (f *FallbackProvider) ModelID() string {
	return f.chain[0].ModelID()
}
