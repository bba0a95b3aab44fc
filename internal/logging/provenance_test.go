package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE cycle_log (
		run_id         TEXT NOT NULL,
		cycle          INTEGER NOT NULL,
		outcome        TEXT NOT NULL,
		category       TEXT NOT NULL,
		target         INTEGER NOT NULL,
		text           TEXT,
		judged         REAL,
		judge_fallback INTEGER NOT NULL DEFAULT 0,
		final          REAL,
		temperature    INTEGER NOT NULL DEFAULT 0,
		error          TEXT,
		created_at     TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-cycle-tests

func TestLogCycle_Accepted(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := CycleEntry{
		RunID:       "run-1",
		Cycle:       3,
		Outcome:     "accepted",
		Category:    "ремонт и реставрация",
		Target:      6,
		Text:        "перебрал карбюратор мотоцикла по мануалу",
		Judged:      7,
		Final:       6.5,
		Temperature: 71,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogCycle(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM cycle_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var outcome string
	var final sql.NullFloat64
	var temp int
	db.QueryRow("SELECT outcome, final, temperature FROM cycle_log").Scan(&outcome, &final, &temp)
	if outcome != "accepted" {
		t.Errorf("expected outcome 'accepted', got %q", outcome)
	}
	if !final.Valid || final.Float64 != 6.5 {
		t.Errorf("expected final 6.5, got %+v", final)
	}
	if temp != 71 {
		t.Errorf("expected temperature 71, got %d", temp)
	}
}

func TestLogCycle_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	err := LogCycle(db, CycleEntry{RunID: "run-2", Cycle: 1, Outcome: "rejected_short", Category: "c", Target: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM cycle_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogCycle_GenerationFailedLeavesNulls(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := CycleEntry{
		RunID:    "run-3",
		Cycle:    1,
		Outcome:  "generation_failed",
		Category: "финансы и планирование",
		Target:   4,
		Judged:   5, // ignored: never reached the judge
		Error:    "connection refused",
	}
	if err := LogCycle(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var text, errText sql.NullString
	var judged, final sql.NullFloat64
	db.QueryRow("SELECT text, judged, final, error FROM cycle_log").Scan(&text, &judged, &final, &errText)
	if text.Valid {
		t.Error("expected NULL text for failed generation")
	}
	if judged.Valid || final.Valid {
		t.Error("expected NULL scores for failed generation")
	}
	if !errText.Valid || errText.String != "connection refused" {
		t.Errorf("expected error text, got %+v", errText)
	}
}

func TestLogCycle_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogCycle(db, CycleEntry{RunID: "run-4", Outcome: "accepted"})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-cycle-tests

// #region helper-tests

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	if nullIfEmpty("hello") != "hello" {
		t.Error("expected 'hello'")
	}
}

func TestBoolToInt(t *testing.T) {
	if boolToInt(true) != 1 || boolToInt(false) != 0 {
		t.Error("unexpected bool conversion")
	}
}

// #endregion helper-tests
