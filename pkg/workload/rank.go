// Package workload ranks slow queries from pg_stat_statements, parses their
// SQL to extract predicate columns, and proposes candidate indexes. It is
// the one part of the engine with an external SQL-dialect dependency
// (pganalyze/pg_query_go), and the one place failures are expected and
// handled per-statement rather than aborting the run.
package workload

import (
	"sort"

	"github.com/flanksource/postgres/pkg/snapshot"
)

// DefaultLimit is the default top-N slot size (spec §4.5).
const DefaultLimit = 20

// Rank selects the top-N statements across four slots — total_exec_time,
// mean_exec_time (calls >= 10), temp_blks_written > 0, shared_blks_read >
// 1000 — and deduplicates by fingerprint, keeping each statement once.
// Order is by total_exec_time descending, the slot that drives the
// headline ranking; membership in the other slots only affects which
// statements are retained, not the final order.
func Rank(statements []snapshot.Statement, limit int) []snapshot.Statement {
	if limit <= 0 {
		limit = DefaultLimit
	}

	byTotal := make([]snapshot.Statement, len(statements))
	copy(byTotal, statements)
	sort.SliceStable(byTotal, func(i, j int) bool {
		return byTotal[i].TotalExecMs > byTotal[j].TotalExecMs
	})

	selected := map[string]snapshot.Statement{}
	order := []string{}

	take := func(s snapshot.Statement) {
		if _, ok := selected[s.Fingerprint]; !ok {
			order = append(order, s.Fingerprint)
		}
		selected[s.Fingerprint] = s
	}

	for i, s := range byTotal {
		if i >= limit {
			break
		}
		take(s)
	}

	byMean := make([]snapshot.Statement, 0, len(statements))
	for _, s := range statements {
		if s.Calls >= 10 {
			byMean = append(byMean, s)
		}
	}
	sort.SliceStable(byMean, func(i, j int) bool { return byMean[i].MeanExecMs > byMean[j].MeanExecMs })
	for i, s := range byMean {
		if i >= limit {
			break
		}
		take(s)
	}

	for _, s := range statements {
		if s.TempBlksWritten > 0 {
			take(s)
		}
	}
	for _, s := range statements {
		if s.SharedBlksRead > 1000 {
			take(s)
		}
	}

	out := make([]snapshot.Statement, 0, len(order))
	for _, fp := range order {
		out = append(out, selected[fp])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalExecMs > out[j].TotalExecMs })
	return out
}
