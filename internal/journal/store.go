package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/logging"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	dataset_path  TEXT NOT NULL,
	mode          TEXT NOT NULL,
	min_target    INTEGER NOT NULL,
	max_target    INTEGER NOT NULL,
	target        INTEGER NOT NULL,
	accepted      INTEGER NOT NULL DEFAULT 0,
	cycles        INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
);

CREATE TABLE IF NOT EXISTS cycle_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
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
	created_at     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_cycle_log_run ON cycle_log(run_id, outcome);
`

// #endregion schema

// #region store-struct

// Store keeps the run journal in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pragmas are per connection; one writer is all a run needs.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region start-run

// StartRun inserts a running row. A missing RunID is generated.
func (s *Store) StartRun(run Run) (Run, error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning
	run.Accepted, run.Cycles = 0, 0
	run.FinishedAt = time.Time{}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, dataset_path, mode, min_target, max_target, target, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.DatasetPath, run.Mode, run.Min, run.Max, run.Target,
		run.Status, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// #endregion start-run

// #region log-cycle

// LogCycle appends one cycle outcome for a started run.
func (s *Store) LogCycle(entry logging.CycleEntry) error {
	return logging.LogCycle(s.db, entry)
}

// #endregion log-cycle

// #region finish-run

// FinishRun stores the final counters and status of a run.
func (s *Store) FinishRun(runID string, accepted, cycles int, status string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET accepted = ?, cycles = ?, status = ?, finished_at = ? WHERE run_id = ?`,
		accepted, cycles, status, time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// #endregion finish-run

// #region get-run

// GetRun retrieves one run by ID.
func (s *Store) GetRun(runID string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, dataset_path, mode, min_target, max_target, target, accepted, cycles, status, started_at, finished_at
		 FROM runs WHERE run_id = ?`, runID,
	)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// #endregion get-run

// #region list-runs

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, dataset_path, mode, min_target, max_target, target, accepted, cycles, status, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// #endregion list-runs

// #region outcome-counts

// OutcomeCounts tallies cycle outcomes for one run.
func (s *Store) OutcomeCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT outcome, COUNT(*) FROM cycle_log WHERE run_id = ? GROUP BY outcome`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// FallbackRate is the share of judged cycles in a run that used the neutral score.
func (s *Store) FallbackRate(runID string) (float64, error) {
	var judged, fallback int
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(judge_fallback), 0) FROM cycle_log
		 WHERE run_id = ? AND outcome = 'accepted'`, runID,
	).Scan(&judged, &fallback)
	if err != nil {
		return 0, fmt.Errorf("fallback rate: %w", err)
	}
	if judged == 0 {
		return 0, nil
	}
	return float64(fallback) / float64(judged), nil
}

// #endregion outcome-counts

// #region scan

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var startedStr string
	var finishedStr sql.NullString
	err := sc.Scan(&run.RunID, &run.DatasetPath, &run.Mode, &run.Min, &run.Max, &run.Target,
		&run.Accepted, &run.Cycles, &run.Status, &startedStr, &finishedStr)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	if finishedStr.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr.String)
	}
	return run, nil
}

// #endregion scan
