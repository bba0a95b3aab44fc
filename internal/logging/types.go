package logging

import "time"

// #region cycle-entry

// CycleEntry is a single row in the cycle_log table.
type CycleEntry struct {
	RunID         string
	Cycle         int
	Outcome       string // "accepted" | "generation_failed" | "rejected_short" | "rejected_duplicate" | "cancelled"
	Category      string
	Target        int
	Text          string // normalized candidate, empty when generation failed
	Judged        float64
	JudgeFallback bool
	Final         float64
	Temperature   int
	Error         string
	CreatedAt     time.Time
}

// #endregion cycle-entry
