// Package engine is the analysis entry point: it composes the rule
// library, table/index health detectors, and workload analyzer over one
// Snapshot and Profile into a single, deterministic Report. The engine
// itself performs no I/O; only Analyze's call into snapshot.Fetch does.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/rules"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/tablehealth"
	"github.com/flanksource/postgres/pkg/units"
	"github.com/flanksource/postgres/pkg/workload"
)

// ErrFatalSnapshot wraps a required snapshot query failure. Callers can
// match it with errors.Is to distinguish an aborted run from a rule
// panicking or a programmer error.
var ErrFatalSnapshot = errors.New("engine: required snapshot query failed")

// AnalyzerOptions is the closed set of knobs Analyze accepts.
type AnalyzerOptions struct {
	WorkloadLimit  uint32
	EnableWorkload bool
	SeverityFloor  suggestion.Level
}

// DefaultOptions matches the spec's documented defaults.
func DefaultOptions() AnalyzerOptions {
	return AnalyzerOptions{WorkloadLimit: 20, EnableWorkload: true, SeverityFloor: suggestion.Info}
}

// Analyze fetches a Snapshot from p, runs every configuration rule plus
// the table/index health detectors and (if enabled) the workload
// analyzer, and returns a fully sorted, severity-filtered Report.
//
// A required snapshot query failing returns a zero Report and an error
// wrapping ErrFatalSnapshot; every other failure mode degrades locally
// and surfaces as a Report.Warnings entry instead of aborting the run.
func Analyze(ctx context.Context, p snapshot.Provider, prof profile.Profile, opts AnalyzerOptions) (suggestion.Report, error) {
	snap, err := snapshot.Fetch(ctx, p, int(opts.WorkloadLimit))
	if err != nil {
		return suggestion.Report{}, fmt.Errorf("%w: %v", ErrFatalSnapshot, err)
	}

	var report suggestion.Report

	if snap.BlockSize() == 0 {
		report.Warnings = append(report.Warnings, suggestion.Warning{
			ID:      "settings.block_size_default",
			Message: fmt.Sprintf("block_size not reported; assuming %d-byte blocks", units.DefaultBlockSize),
		})
	}

	for _, rule := range rules.All() {
		s, err := rule.Run(snap, prof)
		if err != nil {
			if errors.Is(err, rules.ErrSettingUnparseable) {
				report.Warnings = append(report.Warnings, suggestion.Warning{
					ID: "setting.unparseable", Message: err.Error(), Scope: rule.ID,
				})
			} else {
				logger.Warnf("rule %s failed: %v", rule.ID, err)
				report.Warnings = append(report.Warnings, suggestion.Warning{
					ID: "rule.error", Message: err.Error(), Scope: rule.ID,
				})
				continue
			}
		}
		if s == nil {
			continue
		}
		if s.Level < opts.SeverityFloor {
			continue
		}
		report.Suggestions = append(report.Suggestions, *s)
	}
	suggestion.SortSuggestions(report.Suggestions)

	report.Findings = tablehealth.Analyze(snap, time.Now())
	suggestion.SortFindings(report.Findings)

	if !snap.StatementsAvailable {
		logger.Debugf("pg_stat_statements unavailable; skipping workload analysis")
	}

	if opts.EnableWorkload {
		section, warnings := workload.Analyze(snap, report.Findings, int(opts.WorkloadLimit))
		report.Workload = section
		report.Warnings = append(report.Warnings, warnings...)
	}

	return report, nil
}
