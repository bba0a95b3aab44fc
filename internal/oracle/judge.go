package oracle

import (
	"context"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

// #region judge

// firstNumber matches the first decimal or integer in a judge answer.
var firstNumber = regexp.MustCompile(`\d+\.\d+|\d+`)

// Judge asks the judge oracle for an independent complexity estimate.
type Judge struct {
	completer   Completer
	rubric      Rubric
	temperature float64
	logger      *zap.Logger
}

// NewJudge creates a Judge. An empty rubric selects DefaultRubric; logger may be nil.
func NewJudge(completer Completer, rubric Rubric, temperature float64, logger *zap.Logger) *Judge {
	if len(rubric) == 0 {
		rubric = DefaultRubric
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Judge{completer: completer, rubric: rubric, temperature: temperature, logger: logger}
}

// #endregion judge

// #region score

// Score returns the judged complexity of text. ok is false when the call
// failed or the answer had no number; the score is then NeutralScore.
func (j *Judge) Score(ctx context.Context, text string) (score float64, ok bool) {
	answer, err := j.completer.Complete(ctx, CompletionRequest{
		Prompt:      BuildJudgePrompt(text, j.rubric),
		Temperature: j.temperature,
	})
	if err != nil {
		j.logger.Warn("judge call failed, using neutral score", zap.Error(err))
		return NeutralScore, false
	}
	score, ok = ParseScore(answer)
	if !ok {
		j.logger.Warn("judge answer has no number, using neutral score", zap.String("answer", answer))
		return NeutralScore, false
	}
	return score, true
}

// Evaluate is Score without the fallback flag.
func (j *Judge) Evaluate(ctx context.Context, text string) float64 {
	score, _ := j.Score(ctx, text)
	return score
}

// ParseScore extracts the first number from a judge answer.
func ParseScore(answer string) (float64, bool) {
	m := firstNumber.FindString(answer)
	if m == "" {
		return NeutralScore, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return NeutralScore, false
	}
	return v, true
}

// #endregion score
