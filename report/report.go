// Package report summarizes build-time benchmark results as tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/weiihann/buildscale/bench"
)

// LevelSummary aggregates the trials measured at one page count.
type LevelSummary struct {
	Pages    int     `json:"pages"`
	Trials   int     `json:"trials"`
	MinMs    float64 `json:"min_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// Summarize returns one LevelSummary per level, in ascending page order.
// Levels without trials are skipped.
func Summarize(result bench.Result) []LevelSummary {
	summaries := make([]LevelSummary, 0, len(result))

	for _, level := range result.Levels() {
		samples := result[level]
		if len(samples) == 0 {
			continue
		}

		sorted := slices.Clone(samples)
		slices.Sort(sorted)

		var total float64
		for _, s := range sorted {
			total += s
		}

		summaries = append(summaries, LevelSummary{
			Pages:    level,
			Trials:   len(sorted),
			MinMs:    sorted[0],
			MeanMs:   total / float64(len(sorted)),
			MedianMs: median(sorted),
			MaxMs:    sorted[len(sorted)-1],
		})
	}

	return summaries
}

// Generate writes a markdown table for the given result.
func Generate(w io.Writer, result bench.Result) error {
	summaries := Summarize(result)
	if len(summaries) == 0 {
		return fmt.Errorf("no results to report")
	}

	baseline := summaries[0].MeanMs

	fmt.Fprintln(w, "## Build Time Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Pages | Trials | Min | Mean | Median | Max | vs. smallest |")
	fmt.Fprintln(w, "|-------|--------|-----|------|--------|-----|--------------|")

	for _, s := range summaries {
		ratio := 1.0
		if baseline > 0 {
			ratio = s.MeanMs / baseline
		}

		fmt.Fprintf(w, "| %d | %d | %s | %s | %s | %s | %.2fx |\n",
			s.Pages,
			s.Trials,
			formatMs(s.MinMs),
			formatMs(s.MeanMs),
			formatMs(s.MedianMs),
			formatMs(s.MaxMs),
			ratio,
		)
	}

	return nil
}

// GenerateJSON writes the per-level summaries as JSON to w.
func GenerateJSON(w io.Writer, result bench.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Summarize(result))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func formatMs(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.1fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}
