package bench

import (
	"context"
	"fmt"
	"log/slog"
)

// PageWriter fills a directory with n placeholder pages.
type PageWriter interface {
	Write(ctx context.Context, dir string, n int) error
}

// RunConfig holds the parameters of one benchmark run.
type RunConfig struct {
	// Levels are the page counts to measure, in order.
	Levels []int
	// Repetitions is the number of trials per level.
	Repetitions int
	// PagesDir receives the placeholder pages. It is torn down before
	// every trial.
	PagesDir string
	// StrictCleanup makes a failed teardown of PagesDir fatal. When false
	// the failure is logged and the trial proceeds.
	StrictCleanup bool
	// KeepPages leaves the last trial's pages in place after the run.
	KeepPages bool
}

// Orchestrator runs every trial of every level strictly one after another.
type Orchestrator struct {
	cfg    RunConfig
	pages  PageWriter
	build  *TimedBuild
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	cfg RunConfig,
	pages PageWriter,
	build *TimedBuild,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Orchestrator{
		cfg:    cfg,
		pages:  pages,
		build:  build,
		logger: logger,
	}
}

// Run measures all levels and returns the collected durations. On any
// failure it stops at once and returns the error without a Result; no
// trial data survives an aborted run.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if o.cfg.Repetitions < 1 {
		return nil, fmt.Errorf("repetitions must be positive, got %d",
			o.cfg.Repetitions)
	}

	result := make(Result, len(o.cfg.Levels))

	for _, level := range o.cfg.Levels {
		if _, dup := result[level]; dup {
			return nil, fmt.Errorf("level %d listed twice", level)
		}

		logger := o.logger.With(slog.Int("pages", level))
		logger.InfoContext(ctx, "measuring level",
			slog.Int("repetitions", o.cfg.Repetitions),
		)

		durations := make([]float64, 0, o.cfg.Repetitions)

		for trial := 0; trial < o.cfg.Repetitions; trial++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("level %d trial %d: %w",
					level, trial+1, err)
			}

			ms, err := o.runTrial(ctx, logger, level)
			if err != nil {
				return nil, fmt.Errorf("level %d trial %d: %w",
					level, trial+1, err)
			}

			logger.InfoContext(ctx, "trial finished",
				slog.Int("trial", trial+1),
				slog.Float64("build_ms", ms),
			)

			durations = append(durations, ms)
		}

		result[level] = durations
	}

	if !o.cfg.KeepPages {
		if err := o.cleanPages(ctx, o.logger); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// runTrial rebuilds the pages directory with level pages and times one
// build. The duration is returned in milliseconds.
func (o *Orchestrator) runTrial(
	ctx context.Context,
	logger *slog.Logger,
	level int,
) (float64, error) {
	if err := o.cleanPages(ctx, logger); err != nil {
		return 0, err
	}

	if err := EnsureDir(o.cfg.PagesDir); err != nil {
		return 0, err
	}

	if err := o.pages.Write(ctx, o.cfg.PagesDir, level); err != nil {
		return 0, fmt.Errorf("generate pages: %w", err)
	}

	elapsed, err := o.build.Run(ctx)
	if err != nil {
		return 0, err
	}

	return float64(elapsed.Nanoseconds()) / 1e6, nil
}

func (o *Orchestrator) cleanPages(ctx context.Context, logger *slog.Logger) error {
	status, err := RemoveTree(o.cfg.PagesDir)
	if err == nil {
		logger.DebugContext(ctx, "pages dir cleared",
			slog.String("status", status.String()),
		)

		return nil
	}

	if o.cfg.StrictCleanup {
		return fmt.Errorf("clean pages dir: %w", err)
	}

	logger.WarnContext(ctx, "failed to clean pages dir",
		slog.String("pages_dir", o.cfg.PagesDir),
		slog.String("error", err.Error()),
	)

	return nil
}
