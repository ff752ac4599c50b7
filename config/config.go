// Package config loads buildscale settings from defaults, an optional
// config file, BUILDSCALE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "BUILDSCALE"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every setting of a benchmark run.
type Config struct {
	// Levels are the page counts to measure, in order.
	Levels []int `mapstructure:"levels"`
	// Repetitions is the number of timed builds per level.
	Repetitions int `mapstructure:"repetitions"`
	// Concurrency bounds simultaneous page writes.
	Concurrency int `mapstructure:"concurrency"`
	// PagesDir is where placeholder pages are generated.
	PagesDir string `mapstructure:"pages-dir"`
	// CacheDir is the build cache cleared before every build.
	CacheDir string `mapstructure:"cache-dir"`
	// OutputPath receives the final result. A .yaml or .yml extension
	// selects YAML, anything else JSON.
	OutputPath string `mapstructure:"output"`
	// BuildCommand is the argv of the build; it is not run through a shell.
	BuildCommand []string `mapstructure:"build-command"`
	// BuildTimeout limits a single build. Zero means no limit.
	BuildTimeout time.Duration `mapstructure:"build-timeout"`
	// StrictCleanup makes a failed pages teardown abort the run.
	StrictCleanup bool `mapstructure:"strict-cleanup"`
	// KeepPages leaves the generated pages in place after the run.
	KeepPages bool `mapstructure:"keep-pages"`
}

// Default returns the reference configuration: a Next.js project built
// with pnpm, measured at 100, 1000, 2000 and 3000 pages, five times each.
func Default() Config {
	return Config{
		Levels:        []int{100, 1000, 2000, 3000},
		Repetitions:   5,
		Concurrency:   30,
		PagesDir:      "./src/pages/benchmark",
		CacheDir:      "./.next",
		OutputPath:    "./final.json",
		BuildCommand:  []string{"pnpm", "run", "build"},
		StrictCleanup: true,
	}
}

// Load resolves the configuration. path names an optional config file in
// any format viper understands; flags, when non-nil, override everything
// else for the flags the user actually set.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("levels", defaults.Levels)
	v.SetDefault("repetitions", defaults.Repetitions)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("pages-dir", defaults.PagesDir)
	v.SetDefault("cache-dir", defaults.CacheDir)
	v.SetDefault("output", defaults.OutputPath)
	v.SetDefault("build-command", defaults.BuildCommand)
	v.SetDefault("build-timeout", defaults.BuildTimeout)
	v.SetDefault("strict-cleanup", defaults.StrictCleanup)
	v.SetDefault("keep-pages", defaults.KeepPages)

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	// Flags and environment values arrive as one string; lists from a
	// config file are taken as written.
	if raw, ok := v.Get("build-command").(string); ok {
		cfg.BuildCommand = strings.Fields(raw)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidConfig)
	}

	for i, level := range c.Levels {
		if level < 0 {
			return fmt.Errorf("%w: negative level %d", ErrInvalidConfig, level)
		}

		if slices.Contains(c.Levels[:i], level) {
			return fmt.Errorf("%w: duplicate level %d", ErrInvalidConfig, level)
		}
	}

	if c.Repetitions < 1 {
		return fmt.Errorf("%w: repetitions must be at least 1, got %d",
			ErrInvalidConfig, c.Repetitions)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d",
			ErrInvalidConfig, c.Concurrency)
	}

	if len(c.BuildCommand) == 0 {
		return fmt.Errorf("%w: empty build command", ErrInvalidConfig)
	}

	if c.BuildTimeout < 0 {
		return fmt.Errorf("%w: negative build timeout", ErrInvalidConfig)
	}

	for name, p := range map[string]string{
		"pages-dir": c.PagesDir,
		"cache-dir": c.CacheDir,
		"output":    c.OutputPath,
	} {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, name)
		}
	}

	return nil
}
