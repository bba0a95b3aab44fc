package journal

import "time"

// #region run-status

// Run statuses recorded in the runs table.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusExhausted = "exhausted"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// #endregion run-status

// #region run

// Run is one invocation of the generator against a dataset file.
type Run struct {
	RunID       string
	DatasetPath string
	Mode        string
	Min         int
	Max         int
	Target      int
	Accepted    int
	Cycles      int
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running
}

// #endregion run
