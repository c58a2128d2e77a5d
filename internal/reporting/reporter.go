// Package reporting renders slice and aggregation results for humans and for
// CI logs. The console reporter is the default; the quiet reporter only
// speaks on failure, for pipelines that treat output as noise.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"matrixctl/internal/aggregate"
	"matrixctl/internal/results"
)

// SliceResult is the reporter-facing summary of one executed slice.
type SliceResult struct {
	Pattern     string          `json:"pattern"`
	Key         string          `json:"key"`
	Record      *results.Record `json:"record,omitempty"`
	PublishedTo string          `json:"published_to,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	Duration    time.Duration   `json:"duration"`
}

// Passed reports whether the slice ran and published without error.
func (s SliceResult) Passed() bool {
	return s.Error == ""
}

// Reporter receives progress and outcome events for a run.
type Reporter interface {
	// ReportStart is called once before any slice executes.
	ReportStart(patterns []string, parallel int)
	// ReportSliceStart is called when a slice begins.
	ReportSliceStart(pattern string)
	// ReportSliceResult is called when a slice reaches a terminal state.
	ReportSliceResult(result SliceResult)
	// ReportAggregate is called with the final completeness report.
	ReportAggregate(report *aggregate.Report)
}

// consoleReporter writes human-oriented progress to out.
type consoleReporter struct {
	out        io.Writer
	verbose    bool
	reportPath string
	slices     []SliceResult
}

// NewConsoleReporter creates the default reporter. When reportPath is
// non-empty a JSON report with every slice result is saved there after the
// run.
func NewConsoleReporter(out io.Writer, verbose bool, reportPath string) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &consoleReporter{out: out, verbose: verbose, reportPath: reportPath}
}

func (r *consoleReporter) ReportStart(patterns []string, parallel int) {
	fmt.Fprintf(r.out, "🧪 Running %d matrix slice(s)\n", len(patterns))
	if r.verbose {
		fmt.Fprintf(r.out, "   • Parallel workers: %d\n", parallel)
		for _, p := range patterns {
			fmt.Fprintf(r.out, "   • Pattern: %s\n", p)
		}
		fmt.Fprintln(r.out)
	}
}

func (r *consoleReporter) ReportSliceStart(pattern string) {
	if r.verbose {
		fmt.Fprintf(r.out, "🎯 Starting slice: %s\n", pattern)
	}
}

func (r *consoleReporter) ReportSliceResult(result SliceResult) {
	r.slices = append(r.slices, result)

	if result.Passed() {
		fmt.Fprintf(r.out, "%s %s (%v)\n", styleSuccess.Render("✅"), result.Pattern, result.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(r.out, "%s %s: %s\n", styleError.Render("❌"), result.Pattern, result.Error)
	}

	if r.verbose && result.Record != nil {
		fmt.Fprintf(r.out, "   📋 Environments: %d", len(result.Record.Environments))
		if failed := result.Record.Failed(); len(failed) > 0 {
			fmt.Fprintf(r.out, " (%s)", styleError.Render(fmt.Sprintf("%d not passing", len(failed))))
		}
		fmt.Fprintln(r.out)
		if result.PublishedTo != "" {
			fmt.Fprintf(r.out, "   📦 Published: %s\n", result.PublishedTo)
		}
	}
}

func (r *consoleReporter) ReportAggregate(report *aggregate.Report) {
	fmt.Fprintf(r.out, "\n🏁 Completeness check: %d record(s), %d declared environment(s)\n",
		report.Records, report.CatalogSize)

	if report.Passed() {
		fmt.Fprintf(r.out, "%s\n", styleSuccess.Render(report.Diff()))
	} else {
		fmt.Fprint(r.out, styleError.Render(report.Diff()))
		fmt.Fprintln(r.out)
	}

	if dups := report.Duplicates(); len(dups) > 0 {
		for _, name := range dups {
			fmt.Fprintf(r.out, "%s\n", styleWarn.Render(
				fmt.Sprintf("⚠️  %s executed %d times (overlapping patterns?)", name, report.Counts[name])))
		}
	}

	if r.reportPath != "" {
		if err := r.saveReport(report); err != nil {
			fmt.Fprintf(r.out, "%s\n", styleWarn.Render(fmt.Sprintf("⚠️  Failed to save report: %v", err)))
		} else {
			fmt.Fprintf(r.out, "%s\n", styleMuted.Render("📄 Report saved to "+r.reportPath))
		}
	}
}

// runReport is the JSON document persisted by --report.
type runReport struct {
	Slices     []SliceResult  `json:"slices"`
	Missing    []string       `json:"missing"`
	Unexpected []string       `json:"unexpected"`
	Counts     map[string]int `json:"counts"`
	Complete   bool           `json:"complete"`
	SavedAt    time.Time      `json:"saved_at"`
}

func (r *consoleReporter) saveReport(report *aggregate.Report) error {
	doc := runReport{
		Slices:     r.slices,
		Missing:    report.Missing,
		Unexpected: report.Unexpected,
		Counts:     report.Counts,
		Complete:   report.Passed(),
		SavedAt:    time.Now(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.reportPath), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(r.reportPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// NewQuietReporter creates a reporter that only reports failures and the
// final verdict, for CI logs.
func NewQuietReporter(out io.Writer) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &quietReporter{out: out}
}

type quietReporter struct {
	out io.Writer
}

func (r *quietReporter) ReportStart(patterns []string, parallel int) {}

func (r *quietReporter) ReportSliceStart(pattern string) {}

func (r *quietReporter) ReportSliceResult(result SliceResult) {
	if !result.Passed() {
		fmt.Fprintf(r.out, "❌ %s: %s\n", result.Pattern, result.Error)
	}
}

func (r *quietReporter) ReportAggregate(report *aggregate.Report) {
	fmt.Fprint(r.out, report.Diff())
}
