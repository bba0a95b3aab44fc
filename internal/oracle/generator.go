package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// #region generator

// Generator asks the generation oracle for one candidate action description.
type Generator struct {
	completer   Completer
	rubric      Rubric
	banned      []string
	temperature float64
	logger      *zap.Logger
}

// GeneratorConfig holds prompt content and sampling for the generator.
type GeneratorConfig struct {
	Rubric       Rubric
	BannedTopics []string
	Temperature  float64
}

// DefaultGeneratorConfig returns the stock rubric, banned topics and temperature.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rubric:       DefaultRubric,
		BannedTopics: DefaultBannedTopics,
		Temperature:  DefaultGenerationTemperature,
	}
}

// NewGenerator creates a Generator. logger may be nil.
func NewGenerator(completer Completer, config GeneratorConfig, logger *zap.Logger) *Generator {
	if len(config.Rubric) == 0 {
		config.Rubric = DefaultRubric
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer:   completer,
		rubric:      config.Rubric,
		banned:      config.BannedTopics,
		temperature: config.Temperature,
		logger:      logger,
	}
}

// #endregion generator

// #region generate

// Generate returns the raw oracle answer for category at target complexity.
// The text is not normalized here.
func (g *Generator) Generate(ctx context.Context, category string, target int) (string, error) {
	start := time.Now()
	text, err := g.completer.Complete(ctx, CompletionRequest{
		Prompt:      BuildGenerationPrompt(category, target, g.rubric, g.banned),
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate action: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("generate action: %w", ErrEmptyCompletion)
	}
	g.logger.Debug("generated",
		zap.String("category", category),
		zap.Int("target", target),
		zap.Duration("took", time.Since(start)),
		zap.String("raw", text))
	return text, nil
}

// #endregion generate
