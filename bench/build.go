package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Builder runs one build of the project under test.
type Builder interface {
	Build(ctx context.Context) error
}

// BuildError describes a build that could not be started or exited
// unsuccessfully. ExitCode is -1 when the process never reported one.
type BuildError struct {
	Command  []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build %q failed", strings.Join(e.Command, " "))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}

	msg += ": " + e.Err.Error()

	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}

	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// CommandBuilder runs an external build command in the current working
// directory (or Dir) with the inherited environment plus Env.
type CommandBuilder struct {
	Command []string
	Dir     string
	Env     []string
	Timeout time.Duration

	// Stdout receives the command's standard output; nil discards it.
	Stdout io.Writer
	// Stderr receives a live copy of standard error; nil means os.Stderr.
	// Standard error is always captured into BuildError as well.
	Stderr io.Writer
}

// NewCommandBuilder creates a CommandBuilder for the given argv.
func NewCommandBuilder(command []string, timeout time.Duration) *CommandBuilder {
	return &CommandBuilder{
		Command: command,
		Timeout: timeout,
	}
}

// Build runs the command to completion.
func (b *CommandBuilder) Build(ctx context.Context) error {
	if len(b.Command) == 0 {
		return &BuildError{ExitCode: -1, Err: errors.New("empty build command")}
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.Command[0], b.Command[1:]...)
	cmd.Dir = b.Dir

	if len(b.Env) > 0 {
		cmd.Env = append(os.Environ(), b.Env...)
	}

	cmd.Stdout = b.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = io.Discard
	}

	live := b.Stderr
	if live == nil {
		live = os.Stderr
	}

	var stderr bytes.Buffer
	cmd.Stderr = io.MultiWriter(live, &stderr)

	if err := cmd.Run(); err != nil {
		exitCode := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%w)", err, ctxErr)
		}

		return &BuildError{
			Command:  b.Command,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return nil
}

// TimedBuild clears the build cache and measures a single build.
type TimedBuild struct {
	Builder  Builder
	CacheDir string
	Logger   *slog.Logger
}

// Run clears CacheDir, runs the build and returns its wall-clock duration.
// The cache is cleared before the clock starts.
func (t *TimedBuild) Run(ctx context.Context) (time.Duration, error) {
	if t.CacheDir != "" {
		status, err := RemoveTree(t.CacheDir)
		if err != nil {
			return 0, fmt.Errorf("clean build cache: %w", err)
		}

		t.logger().DebugContext(ctx, "build cache cleared",
			slog.String("cache_dir", t.CacheDir),
			slog.String("status", status.String()),
		)
	}

	start := time.Now()

	if err := t.Builder.Build(ctx); err != nil {
		return 0, err
	}

	return time.Since(start), nil
}

func (t *TimedBuild) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return t.Logger
}
