package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-cycle

// LogCycle writes one cycle outcome to the cycle_log table.
func LogCycle(db *sql.DB, entry CycleEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	// Scores only exist once the candidate reached the judge.
	var judged, final interface{}
	if entry.Outcome == "accepted" {
		judged, final = entry.Judged, entry.Final
	}

	_, err := db.Exec(
		`INSERT INTO cycle_log (run_id, cycle, outcome, category, target, text, judged, judge_fallback, final, temperature, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Cycle,
		entry.Outcome,
		entry.Category,
		entry.Target,
		nullIfEmpty(entry.Text),
		judged,
		boolToInt(entry.JudgeFallback),
		final,
		entry.Temperature,
		nullIfEmpty(entry.Error),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log cycle: %w", err)
	}
	return nil
}

// #endregion log-cycle

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
