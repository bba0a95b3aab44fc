package oracle

import (
	"context"
	"errors"
	"time"
)

// #region completer

// Completer is a synchronous text-completion backend. Generator and Judge are
// built on top of it; transport, auth and model identity live in the backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one prompt sent to a Completer.
type CompletionRequest struct {
	System      string // optional system message
	Prompt      string
	Temperature float64
}

// ErrEmptyCompletion is returned when the backend answered with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// #endregion completer

// #region fallbacks

// NeutralScore is the judge's answer when the backend fails or returns no
// number. It sits in the middle of the 0-10 scale.
const NeutralScore = 5.0

const (
	// DefaultGenerationTemperature keeps generated actions varied.
	DefaultGenerationTemperature = 0.9
	// DefaultJudgeTemperature keeps judgments repeatable.
	DefaultJudgeTemperature = 0.0
)

// #endregion fallbacks

// #region endpoint-config

// Provider names a completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai" // any OpenAI-compatible /chat/completions server
	ProviderGemini Provider = "gemini"
	ProviderGRPC   Provider = "grpc"
)

// EndpointConfig describes how to reach one oracle.
type EndpointConfig struct {
	Provider    Provider      `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"` // HTTP base URL, or host:port for grpc
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float64       `yaml:"temperature"`
}

// DefaultEndpointConfig points at a local LM Studio server.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		Provider:    ProviderOpenAI,
		BaseURL:     "http://localhost:1234/v1",
		APIKey:      "lm-studio",
		Model:       "local-model",
		Timeout:     2 * time.Minute,
		Temperature: DefaultGenerationTemperature,
	}
}

// #endregion endpoint-config
