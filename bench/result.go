// Package bench runs build-time benchmarks: it fills a pages directory with
// placeholder files, times the project's build at each file count and
// collects the durations.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result maps a file count to the build durations, in milliseconds, of
// every trial run at that count.
type Result map[int][]float64

// Levels returns the file counts present in r in ascending order.
func (r Result) Levels() []int {
	levels := make([]int, 0, len(r))
	for level := range r {
		levels = append(levels, level)
	}

	slices.Sort(levels)

	return levels
}

// Marshal encodes r as indented JSON, or YAML when format is "yaml".
func (r Result) Marshal(format string) ([]byte, error) {
	switch format {
	case "yaml":
		var buf strings.Builder

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(map[int][]float64(r)); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}

		return []byte(buf.String()), nil

	case "json", "":
		data, err := json.MarshalIndent(map[int][]float64(r), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}

		return append(data, '\n'), nil

	default:
		return nil, fmt.Errorf("unknown result format %q", format)
	}
}

// FormatForPath picks the result encoding from the output file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// WriteResult writes r to path, replacing any existing file. The data is
// written to a temporary file in the same directory and renamed into place.
func WriteResult(path string, r Result) error {
	data, err := r.Marshal(FormatForPath(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".buildscale-result-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("write %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("rename result into %s: %w", path, err)
	}

	return nil
}
