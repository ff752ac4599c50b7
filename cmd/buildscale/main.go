// Package main provides the CLI entry point for buildscale, a tool that
// measures how a web application's build time grows with its page count.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/weiihann/buildscale/bench"
	"github.com/weiihann/buildscale/config"
	"github.com/weiihann/buildscale/pages"
	"github.com/weiihann/buildscale/report"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	root := newRootCmd(logger, level)
	err := root.ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.Error("buildscale failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "buildscale",
		Short: "Measure how build time scales with page count",
		Long: `Buildscale fills a web project's pages directory with placeholder
pages, runs the project's build at several page counts and records how long
each build takes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, level))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the buildscale version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newRunCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		configPath string
		outputJSON bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the build-time benchmark",
		Long: `Generate placeholder pages at every configured level, time the
project's build several times per level and write all durations, in
milliseconds, to the output file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				level.Set(slog.LevelDebug)
			}

			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			return runBenchmark(cmd.Context(), logger, cfg, outputJSON)
		},
	}

	defaults := config.Default()

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to a config file (yaml, json or toml)")
	flags.IntSlice("levels", defaults.Levels,
		"Page counts to measure")
	flags.Int("repetitions", defaults.Repetitions,
		"Timed builds per level")
	flags.Int("concurrency", defaults.Concurrency,
		"Maximum simultaneous page writes")
	flags.String("pages-dir", defaults.PagesDir,
		"Directory that receives the placeholder pages")
	flags.String("cache-dir", defaults.CacheDir,
		"Build cache directory cleared before every build")
	flags.String("output", defaults.OutputPath,
		"Result file (.json or .yaml)")
	flags.String("build-command", strings.Join(defaults.BuildCommand, " "),
		"Build command, split on whitespace")
	flags.Duration("build-timeout", defaults.BuildTimeout,
		"Limit for a single build (0 = none)")
	flags.Bool("strict-cleanup", defaults.StrictCleanup,
		"Abort when the pages directory cannot be removed")
	flags.Bool("keep-pages", defaults.KeepPages,
		"Leave the last generated pages in place")
	flags.BoolVar(&outputJSON, "json", false,
		"Print the summary as JSON instead of a table")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	outputJSON bool,
) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.Any("levels", cfg.Levels),
		slog.Int("repetitions", cfg.Repetitions),
		slog.Int("concurrency", cfg.Concurrency),
		slog.String("pages_dir", cfg.PagesDir),
		slog.String("build_command", strings.Join(cfg.BuildCommand, " ")),
	)

	builder := bench.NewCommandBuilder(cfg.BuildCommand, cfg.BuildTimeout)

	orch := bench.NewOrchestrator(
		bench.RunConfig{
			Levels:        cfg.Levels,
			Repetitions:   cfg.Repetitions,
			PagesDir:      cfg.PagesDir,
			StrictCleanup: cfg.StrictCleanup,
			KeepPages:     cfg.KeepPages,
		},
		pages.NewWriter(cfg.Concurrency),
		&bench.TimedBuild{
			Builder:  builder,
			CacheDir: cfg.CacheDir,
			Logger:   logger,
		},
		logger,
	)

	// Partial results are dropped on failure; only a complete run is written.
	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	if err := bench.WriteResult(cfg.OutputPath, result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	logger.InfoContext(ctx, "result written",
		slog.String("path", cfg.OutputPath),
	)

	if outputJSON {
		if err := report.GenerateJSON(os.Stdout, result); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(os.Stdout, result); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}
