package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/dataset"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/normalize"
)

// #region eval-harness

// EvalHarness validates a dataset file's records.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks label range, uniqueness and text length, and reports the label
// distribution. Coverage and mean are informational.
func (h *EvalHarness) Run(records []dataset.Record) EvalResult {
	var metrics []EvalMetric
	var hist [Bands]int
	passed := true
	var failReasons []string

	check := func(name string, value int, what string) {
		ok := value == 0
		metrics = append(metrics, EvalMetric{Name: name, Value: float32(value), Pass: ok})
		if !ok {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%d %s", value, what))
		}
	}

	// 1. Row count
	metrics = append(metrics, EvalMetric{
		Name:  "records",
		Value: float32(len(records)),
		Pass:  len(records) > 0,
	})
	if len(records) == 0 {
		passed = false
		failReasons = append(failReasons, "dataset is empty")
	}

	var outOfRange, short, dups int
	var sum float64
	seen := dataset.NewDedupSet()
	for _, r := range records {
		sum += r.Complexity
		if r.Complexity < 0 || r.Complexity > Bands-1 {
			outOfRange++
		} else {
			hist[band(r.Complexity)]++
		}
		if normalize.TokenCount(r.Text) < h.config.MinTokens {
			short++
		}
		if seen.Contains(r.Text) {
			dups++
		}
		seen.Add(r.Text)
	}

	// 2. Hard checks
	check("labels_out_of_range", outOfRange, "labels outside [0, 10]")
	check("duplicate_texts", dups, "duplicate texts")
	check("short_texts", short, fmt.Sprintf("texts under %d tokens", h.config.MinTokens))

	// 3. Informational
	mean := float32(0)
	if len(records) > 0 {
		mean = float32(sum / float64(len(records)))
	}
	metrics = append(metrics, EvalMetric{Name: "mean_label", Value: mean, Pass: true})

	covered := 0
	for _, n := range hist {
		if n >= h.config.MinPerBand {
			covered++
		}
	}
	coverage := float32(covered) / Bands
	metrics = append(metrics, EvalMetric{
		Name:  "band_coverage",
		Value: coverage,
		Pass:  coverage >= h.config.MinCoverage,
	})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:    passed,
		Metrics:   metrics,
		Histogram: hist,
		Reason:    reason,
	}
}

// #endregion eval-harness

// #region helpers

// band maps a label in [0, 10] to its nearest integer band.
func band(c float64) int {
	b := int(math.Round(c))
	return max(0, min(Bands-1, b))
}

// #endregion helpers
