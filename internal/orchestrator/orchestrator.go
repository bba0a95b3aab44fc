package orchestrator

// #region imports

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/dataset"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/logging"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/normalize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// #endregion

// #region orchestrator-struct

// Orchestrator drives the generate, throttle, filter, judge, fuse and persist
// cycle until the quota of accepted records is reached. It is not safe for
// concurrent use; one Orchestrator owns one dataset file.
type Orchestrator struct {
	config   Config
	budget   cycleBudget
	schedule Scheduler
	gen      Generator
	judge    Judge
	thermal  Throttler
	store    RecordStore
	journal  Journal
	logger   *zap.Logger
	rng      *rand.Rand
	sleep    func(ctx context.Context, d time.Duration) error

	seen     *dataset.DedupSet
	runID    string
	stage    Stage
	counters Counters
	outcomes map[Outcome]int
}

// #endregion

// #region constructor

// New wires the components and seeds the dedup set from the store.
// rng may be nil for a randomly seeded category draw.
func New(c Components, config Config, logger *zap.Logger, rng *rand.Rand) (*Orchestrator, error) {
	switch {
	case c.Schedule == nil:
		return nil, errors.New("orchestrator: schedule is required")
	case c.Generator == nil:
		return nil, errors.New("orchestrator: generator is required")
	case c.Judge == nil:
		return nil, errors.New("orchestrator: judge is required")
	case c.Throttler == nil:
		return nil, errors.New("orchestrator: throttler is required")
	case c.Store == nil:
		return nil, errors.New("orchestrator: store is required")
	}
	if len(config.Categories) == 0 {
		return nil, errors.New("orchestrator: at least one category is required")
	}
	if config.MinTokens <= 0 {
		config.MinTokens = DefaultConfig().MinTokens
	}
	if config.RunID == "" {
		config.RunID = uuid.New().String()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Orchestrator{
		config:   config,
		budget:   cycleBudget{max: config.MaxCycles},
		schedule: c.Schedule,
		gen:      c.Generator,
		judge:    c.Judge,
		thermal:  c.Throttler,
		store:    c.Store,
		journal:  c.Journal,
		logger:   logger.With(zap.String("run_id", config.RunID)),
		rng:      rng,
		sleep:    sleepContext,
		seen:     c.Store.Load(),
		runID:    config.RunID,
		stage:    StageScheduling,
		outcomes: make(map[Outcome]int),
	}, nil
}

// #endregion

// #region accessors

// RunID identifies this run in the journal.
func (o *Orchestrator) RunID() string { return o.runID }

// Known returns the number of distinct texts accepted so far, seeded ones included.
func (o *Orchestrator) Known() int { return o.seen.Len() }

// Stage returns the stage of the current or last cycle.
func (o *Orchestrator) Stage() Stage { return o.stage }

// Counters returns a copy of the progress counters.
func (o *Orchestrator) Counters() Counters { return o.counters }

// #endregion

// #region run

// Run executes cycles until target records have been accepted. It returns early
// on a persistence failure, on context cancellation, and with ErrCyclesExhausted
// when the cycle budget runs out.
func (o *Orchestrator) Run(ctx context.Context, target int) (Summary, error) {
	if target < 0 {
		return Summary{}, fmt.Errorf("negative quota %d", target)
	}
	o.counters.Target = target
	start := time.Now()

	var runErr error
	for o.counters.Accepted < o.counters.Target {
		if o.budget.exhausted(o.counters.Cycles) {
			runErr = ErrCyclesExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("run interrupted: %w", err)
			break
		}
		res, err := o.RunCycle(ctx)
		if err != nil {
			runErr = err
			break
		}
		if res.Outcome == OutcomeAccepted {
			if err := o.pause(ctx); err != nil {
				runErr = fmt.Errorf("run interrupted: %w", err)
				break
			}
		}
	}
	if runErr == nil {
		o.stage = StageDone
	}

	summary := o.summary(time.Since(start))
	o.logger.Info("run finished",
		zap.Int("accepted", summary.Accepted),
		zap.Int("target", summary.Target),
		zap.Int("cycles", summary.Cycles),
		zap.Int("known", summary.Known),
		zap.Int("budget_left", o.budget.remaining(summary.Cycles)),
		zap.Duration("elapsed", summary.Elapsed),
		zap.Error(runErr),
	)
	return summary, runErr
}

func (o *Orchestrator) summary(elapsed time.Duration) Summary {
	outcomes := make(map[Outcome]int, len(o.outcomes))
	for k, v := range o.outcomes {
		outcomes[k] = v
	}
	return Summary{
		RunID:    o.runID,
		Counters: o.counters,
		Outcomes: outcomes,
		Known:    o.seen.Len(),
		Elapsed:  elapsed,
	}
}

// #endregion

// #region run-cycle

// RunCycle performs one pass through the stages. Rejections and generation
// failures are reported in the result with a nil error. The error is non-nil
// only when the record could not be persisted or ctx was cancelled while
// throttling or judging; a cancelled cycle is still tallied and journaled.
func (o *Orchestrator) RunCycle(ctx context.Context) (CycleResult, error) {
	o.counters.Cycles++
	res := CycleResult{Cycle: o.counters.Cycles}

	o.stage = StageScheduling
	res.Request = GenerationRequest{
		Category:         o.config.Categories[o.rng.IntN(len(o.config.Categories))],
		TargetComplexity: o.schedule.Next(),
	}

	o.stage = StageGenerating
	raw, err := o.gen.Generate(ctx, res.Request.Category, res.Request.TargetComplexity)
	if err != nil {
		res.Err = err
		o.finish(&res, OutcomeGenerationFailed)
		o.logger.Debug("generation failed", zap.Int("cycle", res.Cycle), zap.Error(err))
		return res, nil
	}
	res.Raw = raw

	o.stage = StageThrottling
	report, err := o.thermal.Throttle(ctx)
	res.Throttle = report
	res.Temperature = report.Final
	if err != nil {
		res.Err = err
		o.finish(&res, OutcomeCancelled)
		return res, fmt.Errorf("throttle: %w", err)
	}

	o.stage = StageFiltering
	res.Text = normalize.Clean(raw)
	if normalize.TokenCount(res.Text) < o.config.MinTokens {
		o.finish(&res, OutcomeRejectedShort)
		o.logger.Debug("candidate too short", zap.String("raw", raw), zap.String("text", res.Text))
		return res, nil
	}
	if o.seen.Contains(res.Text) {
		o.finish(&res, OutcomeRejectedDuplicate)
		o.logger.Debug("duplicate candidate", zap.String("text", res.Text))
		return res, nil
	}

	o.stage = StageJudging
	judged, ok := o.judge.Score(ctx, res.Text)
	res.Judged = judged
	res.JudgeFallback = !ok
	if err := ctx.Err(); err != nil {
		// A cancelled judge call yields the neutral score; do not persist it.
		res.Err = err
		o.finish(&res, OutcomeCancelled)
		return res, fmt.Errorf("judge: %w", err)
	}

	o.stage = StageFusing
	res.Final = Fuse(judged, res.Request.TargetComplexity)

	o.stage = StagePersisting
	if err := o.store.Append(dataset.Record{Text: res.Text, Complexity: res.Final}); err != nil {
		res.Stage = o.stage
		return res, fmt.Errorf("persist record: %w", err)
	}
	o.seen.Add(res.Text)
	o.counters.Accepted++
	o.finish(&res, OutcomeAccepted)

	o.logger.Info("record accepted",
		zap.Int("accepted", o.counters.Accepted),
		zap.Int("target", o.counters.Target),
		zap.Int("temp_c", o.thermal.Sample(ctx)),
		zap.String("text", res.Text),
		zap.String("c", fmt.Sprintf("%.1f", res.Final)),
		zap.Int("scheduled", res.Request.TargetComplexity),
		zap.Bool("judge_fallback", res.JudgeFallback),
	)
	return res, nil
}

// finish tallies the outcome and journals the cycle. Journal failures are logged only.
func (o *Orchestrator) finish(res *CycleResult, outcome Outcome) {
	res.Outcome = outcome
	res.Stage = o.stage
	o.outcomes[outcome]++

	if o.journal == nil {
		return
	}
	entry := logging.CycleEntry{
		RunID:         o.runID,
		Cycle:         res.Cycle,
		Outcome:       string(outcome),
		Category:      res.Request.Category,
		Target:        res.Request.TargetComplexity,
		Text:          res.Text,
		Judged:        res.Judged,
		JudgeFallback: res.JudgeFallback,
		Final:         res.Final,
		Temperature:   res.Temperature,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := o.journal.LogCycle(entry); err != nil {
		o.logger.Warn("journal write failed", zap.Int("cycle", res.Cycle), zap.Error(err))
	}
}

// #endregion

// #region pause

// pause sleeps PauseFor after every PauseEvery accepted records.
func (o *Orchestrator) pause(ctx context.Context) error {
	if o.config.PauseEvery <= 0 || o.config.PauseFor <= 0 {
		return nil
	}
	if o.counters.Accepted%o.config.PauseEvery != 0 || o.counters.Accepted == o.counters.Target {
		return nil
	}
	o.logger.Info("cool-down pause", zap.Duration("for", o.config.PauseFor))
	return o.sleep(ctx, o.config.PauseFor)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// #endregion
