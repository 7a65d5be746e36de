package workload

import (
	"fmt"

	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

// Analyze ranks the snapshot's slow statements, parses each for predicate
// columns, proposes candidate indexes, and correlates those candidates
// against existing SeqScanHotspot findings (mutated in place). It returns
// the workload section plus any warnings raised along the way; a nil
// section with one Warning means pg_stat_statements was unavailable.
func Analyze(snap snapshot.Snapshot, findings []suggestion.Finding, limit int) (*suggestion.WorkloadSection, []suggestion.Warning) {
	if !snap.StatementsAvailable {
		return nil, []suggestion.Warning{{
			ID:      "workload.unavailable",
			Message: "pg_stat_statements is not installed or not available; workload analysis was skipped.",
		}}
	}

	ranked := Rank(snap.Statements, limit)

	var warnings []suggestion.Warning
	records := make([]suggestion.WorkloadRecord, 0, len(ranked))
	merged := map[candidateKey]*suggestion.IndexCandidate{}

	for _, stmt := range ranked {
		rec := suggestion.WorkloadRecord{
			Fingerprint:     stmt.Fingerprint,
			QueryText:       stmt.QueryText,
			Calls:           stmt.Calls,
			TotalMs:         stmt.TotalExecMs,
			MeanMs:          stmt.MeanExecMs,
			Rows:            stmt.Rows,
			SharedBlksRead:  stmt.SharedBlksRead,
			SharedBlksHit:   stmt.SharedBlksHit,
			TempBlksWritten: stmt.TempBlksWritten,
		}

		refs, projected, _, hasLimit, err := parseStatement(stmt.QueryText)
		if err != nil {
			rec.ParseError = err.Error()
			warnings = append(warnings, suggestion.Warning{
				ID:      "workload.parse_error",
				Message: fmt.Sprintf("failed to parse statement for index candidates: %v", err),
				Scope:   stmt.Fingerprint,
			})
			records = append(records, rec)
			continue
		}

		rec.ParsedPredicates = groupByTable(refs)
		records = append(records, rec)

		base := buildCandidates(refs)
		for _, c := range base {
			mergeCandidate(merged, c, stmt.Fingerprint, stmt.TotalExecMs)
		}
		for _, c := range buildIncludeCandidates(base, refs, projected, hasLimit) {
			mergeCandidate(merged, c, stmt.Fingerprint, stmt.TotalExecMs)
		}
	}

	candidates := make([]suggestion.IndexCandidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, *c)
	}
	sortCandidates(candidates)

	correlate(findings, candidates)

	return &suggestion.WorkloadSection{
		Records:         records,
		ProposedIndexes: candidates,
	}, warnings
}
