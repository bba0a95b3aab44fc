package eval

// #region eval-config

// EvalConfig holds thresholds for dataset validation.
type EvalConfig struct {
	MinTokens   int     // rows with fewer tokens are counted as short
	MinPerBand  int     // a band counts as covered at this many rows
	MinCoverage float32 // warn below this share of covered bands
}

// DefaultEvalConfig returns the thresholds used by inspect.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinTokens:   3,
		MinPerBand:  1,
		MinCoverage: 1.0,
	}
}

// #endregion eval-config

// #region eval-metric

// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float32
	Pass  bool
}

// #endregion eval-metric

// #region eval-result

// Bands is the number of integer complexity bands, 0 through 10.
const Bands = 11

// EvalResult is the output of dataset validation.
type EvalResult struct {
	Passed    bool
	Metrics   []EvalMetric
	Histogram [Bands]int // rows per rounded label
	Reason    string
}

// #endregion eval-result
