package oracle

import (
	"context"
	"fmt"
	"io"
)

// NewCompleter builds the backend named by config.Provider. The returned
// closer releases transport resources and is never nil.
func NewCompleter(ctx context.Context, config EndpointConfig) (Completer, io.Closer, error) {
	switch config.Provider {
	case ProviderOpenAI, "":
		return NewOpenAICompleter(config), nopCloser{}, nil
	case ProviderGemini:
		c, err := NewGeminiCompleter(ctx, config)
		if err != nil {
			return nil, nil, err
		}
		return c, nopCloser{}, nil
	case ProviderGRPC:
		c, err := NewGRPCCompleter(config.BaseURL, config.Model)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown oracle provider %q", config.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
