package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/config"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/dataset"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/journal"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/oracle"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/orchestrator"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/schedule"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/thermal"
	"go.uber.org/zap"
)

// #region pipeline

// pipeline owns everything a run opens.
type pipeline struct {
	orch    *orchestrator.Orchestrator
	store   *dataset.Store
	journal *journal.Store // nil when disabled
	closers []io.Closer
}

func (p *pipeline) Close() {
	for _, c := range p.closers {
		_ = c.Close()
	}
	if p.journal != nil {
		_ = p.journal.Close()
	}
}

// buildPipeline wires the oracles, governor, store and journal from cfg.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pipeline, error) {
	p := &pipeline{}
	ok := false
	defer func() {
		if !ok {
			p.Close()
		}
	}()

	mode, err := schedule.ParseMode(cfg.Schedule.Mode)
	if err != nil {
		return nil, err
	}
	sched, err := schedule.New(mode, cfg.Schedule.Min, cfg.Schedule.Max, nil)
	if err != nil {
		return nil, err
	}

	genBackend, genCloser, err := oracle.NewCompleter(ctx, cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("generator oracle: %w", err)
	}
	p.closers = append(p.closers, genCloser)
	judgeBackend, judgeCloser, err := oracle.NewCompleter(ctx, cfg.Judge)
	if err != nil {
		return nil, fmt.Errorf("judge oracle: %w", err)
	}
	p.closers = append(p.closers, judgeCloser)

	oracleLog := logger.Named("oracle")
	gen := oracle.NewGenerator(genBackend, cfg.GeneratorSettings(), oracleLog)
	judge := oracle.NewJudge(judgeBackend, cfg.Rubric(), cfg.Judge.Temperature, oracleLog)

	sensor, err := thermal.NewSensor(cfg.Thermal.Sensor, cfg.Thermal.Device, cfg.Thermal.HwmonPath)
	if err != nil {
		return nil, err
	}
	governor, err := thermal.NewGovernor(sensor, cfg.ThermalSettings(), logger.Named("thermal"))
	if err != nil {
		return nil, err
	}

	p.store, err = dataset.NewStore(cfg.DatasetPath(), logger.Named("dataset"))
	if err != nil {
		return nil, err
	}

	oc := orchestrator.Config{
		Categories: cfg.Categories(),
		MinTokens:  cfg.Run.MinTokens,
		PauseEvery: cfg.Run.PauseEvery,
		PauseFor:   cfg.Run.PauseFor,
		MaxCycles:  cfg.Run.MaxCycles,
	}
	components := orchestrator.Components{
		Schedule:  sched,
		Generator: gen,
		Judge:     judge,
		Throttler: governor,
		Store:     p.store,
	}

	if cfg.Journal.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		p.journal, err = journal.NewStore(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		run, err := p.journal.StartRun(journal.Run{
			DatasetPath: cfg.DatasetPath(),
			Mode:        string(mode),
			Min:         cfg.Schedule.Min,
			Max:         cfg.Schedule.Max,
			Target:      cfg.Run.Quota,
		})
		if err != nil {
			return nil, err
		}
		oc.RunID = run.RunID
		components.Journal = p.journal
	}

	p.orch, err = orchestrator.New(components, oc, logger.Named("orch"), nil)
	if err != nil {
		return nil, err
	}
	ok = true
	return p, nil
}

// finish records the run outcome in the journal.
func (p *pipeline) finish(sum orchestrator.Summary, runErr error, logger *zap.Logger) {
	if p.journal == nil {
		return
	}
	if err := p.journal.FinishRun(sum.RunID, sum.Accepted, sum.Cycles, runStatus(runErr)); err != nil {
		logger.Warn("journal finish failed", zap.Error(err))
	}
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return journal.StatusCompleted
	case errors.Is(err, orchestrator.ErrCyclesExhausted):
		return journal.StatusExhausted
	case errors.Is(err, context.Canceled):
		return journal.StatusCancelled
	default:
		return journal.StatusFailed
	}
}

// #endregion pipeline
