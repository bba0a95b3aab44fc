package orchestrator

// #region imports

import (
	"context"
	"time"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/dataset"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/logging"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/oracle"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/thermal"
)

// #endregion

// #region stage

// Stage is the step of a cycle the loop is in.
type Stage string

const (
	StageScheduling Stage = "scheduling"
	StageGenerating Stage = "generating"
	StageThrottling Stage = "throttling"
	StageFiltering  Stage = "filtering"
	StageJudging    Stage = "judging"
	StageFusing     Stage = "fusing"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
)

// #endregion

// #region outcome

// Outcome is how a cycle ended.
type Outcome string

const (
	OutcomeAccepted          Outcome = "accepted"
	OutcomeGenerationFailed  Outcome = "generation_failed"
	OutcomeRejectedShort     Outcome = "rejected_short"
	OutcomeRejectedDuplicate Outcome = "rejected_duplicate"
	OutcomeCancelled         Outcome = "cancelled"
)

// #endregion

// #region request

// GenerationRequest is what one cycle asks the generation oracle for.
type GenerationRequest struct {
	Category         string
	TargetComplexity int
}

// #endregion

// #region cycle-result

// CycleResult describes one pass through the stages.
type CycleResult struct {
	Cycle         int
	Request       GenerationRequest
	Stage         Stage // last stage entered
	Outcome       Outcome
	Raw           string // oracle answer before normalization
	Text          string // normalized candidate
	Judged        float64
	JudgeFallback bool
	Final         float64
	Temperature   int
	Throttle      thermal.ThrottleReport
	Err           error // generation error or ctx error, when Outcome is generation_failed or cancelled
}

// #endregion

// #region counters

// Counters track run progress. The loop stops exactly when Accepted == Target.
type Counters struct {
	Accepted int
	Target   int
	Cycles   int
}

// Summary is returned by Run.
type Summary struct {
	RunID string
	Counters
	Outcomes map[Outcome]int
	Known    int // dedup keys at the end of the run, seeded ones included
	Elapsed  time.Duration
}

// #endregion

// #region config

// Config holds loop parameters fixed at construction.
type Config struct {
	RunID      string        // journal key; generated when empty
	Categories []string      // drawn uniformly per cycle
	MinTokens  int           // candidates with fewer tokens are rejected
	PauseEvery int           // cool-down after every N accepted records, 0 = off
	PauseFor   time.Duration // cool-down length
	MaxCycles  int           // 0 = unbounded
}

// DefaultConfig returns every category and a three-token minimum.
func DefaultConfig() Config {
	return Config{
		Categories: oracle.DefaultCategories,
		MinTokens:  3,
	}
}

// #endregion

// #region interfaces

// Scheduler yields the target complexity for the next cycle.
type Scheduler interface {
	Next() int
}

// Generator produces one raw candidate action.
type Generator interface {
	Generate(ctx context.Context, category string, target int) (string, error)
}

// Judge estimates the complexity of a candidate. ok is false when the neutral
// fallback was used.
type Judge interface {
	Score(ctx context.Context, text string) (score float64, ok bool)
}

// Throttler blocks while the accelerator is too hot.
type Throttler interface {
	Throttle(ctx context.Context) (thermal.ThrottleReport, error)
	Sample(ctx context.Context) int
}

// RecordStore is the append-only dataset file.
type RecordStore interface {
	Load() *dataset.DedupSet
	Append(rec dataset.Record) error
}

// Journal receives one entry per cycle.
type Journal interface {
	LogCycle(entry logging.CycleEntry) error
}

// Components are the collaborators wired into an Orchestrator. Journal is optional.
type Components struct {
	Schedule  Scheduler
	Generator Generator
	Judge     Judge
	Throttler Throttler
	Store     RecordStore
	Journal   Journal
}

// #endregion
