// Package tablehealth detects structural problems in tables and indexes
// from pg_stat_user_tables / pg_stat_user_indexes statistics: bloat,
// sequential-scan hotspots, unused indexes, low-selectivity indexes, and
// failed index-only scans. Each detector is a pure function over a single
// TableStat or IndexStat, grounded in the same "derive expected, compare,
// emit at most one result" shape as the rule library.
package tablehealth

import (
	"fmt"
	"time"

	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

// Analyze runs every detector over every table and index in the snapshot
// and returns the findings, unsorted (callers sort with
// suggestion.SortFindings before rendering).
func Analyze(snap snapshot.Snapshot, now time.Time) []suggestion.Finding {
	var findings []suggestion.Finding

	for _, t := range snap.TableStats {
		if f := bloatedTable(t, now); f != nil {
			findings = append(findings, *f)
		}
		if f := seqScanHotspot(t); f != nil {
			findings = append(findings, *f)
		}
	}

	for _, idx := range snap.IndexStats {
		table := findTable(snap, idx.Schema, idx.Relname)
		if f := unusedIndex(idx); f != nil {
			findings = append(findings, *f)
		}
		if f := lowSelectivityIndex(idx, table); f != nil {
			findings = append(findings, *f)
		}
		if f := failedIndexOnlyScan(idx); f != nil {
			findings = append(findings, *f)
		}
	}

	return findings
}

func findTable(snap snapshot.Snapshot, schema, relname string) *snapshot.TableStat {
	for i := range snap.TableStats {
		if snap.TableStats[i].Schema == schema && snap.TableStats[i].Relname == relname {
			return &snap.TableStats[i]
		}
	}
	return nil
}

func bloatedTable(t snapshot.TableStat, now time.Time) *suggestion.Finding {
	liveFloor := t.NLiveTup
	if liveFloor < 1 {
		liveFloor = 1
	}
	ratio := float64(t.NDeadTup) / float64(liveFloor)

	if !(t.NDeadTup >= 1000 && ratio >= 0.2) {
		return nil
	}

	level := suggestion.Important
	if ratio >= 0.5 {
		level = suggestion.Critical
	}
	if t.LastAutovacuum == nil || now.Sub(*t.LastAutovacuum) > 7*24*time.Hour {
		if level < suggestion.Important {
			level = suggestion.Important
		}
	}
	if t.LastAutovacuum != nil && now.Sub(*t.LastAutovacuum) < time.Hour {
		level = suggestion.Info
	}

	lastVacText := "never"
	if t.LastAutovacuum != nil {
		lastVacText = t.LastAutovacuum.Format(time.RFC3339)
	}

	return &suggestion.Finding{
		Kind: suggestion.BloatedTable, Schema: t.Schema, Relation: t.Relname,
		Level: level, SizeBytes: t.RelationSizeBytes,
		Metrics: map[string]string{
			"n_dead_tup":       fmt.Sprintf("%d", t.NDeadTup),
			"dead_tup_ratio":   fmt.Sprintf("%.2f", ratio),
			"last_autovacuum":  lastVacText,
		},
		Rationale:    fmt.Sprintf("%.0f%% of live rows are dead tuples; autovacuum last ran %s.", ratio*100, lastVacText),
		EvidenceRefs: []string{evidence.RefBloat},
	}
}

func seqScanHotspot(t snapshot.TableStat) *suggestion.Finding {
	if !(t.NLiveTup > 10000 && t.RelationSizeBytes > 5*1024*1024 && t.SeqScan*50 > t.IdxScan) {
		return nil
	}

	level := suggestion.Recommended
	if t.IdxScan == 0 && t.RelationSizeBytes > 100*1024*1024 {
		level = suggestion.Important
	}

	return &suggestion.Finding{
		Kind: suggestion.SeqScanHotspot, Schema: t.Schema, Relation: t.Relname,
		Level: level, SizeBytes: t.RelationSizeBytes,
		Metrics: map[string]string{
			"seq_scan": fmt.Sprintf("%d", t.SeqScan),
			"idx_scan": fmt.Sprintf("%d", t.IdxScan),
		},
		Rationale:    "sequential scans exceed one in fifty of this table's index scans on a table too large to benefit from scanning it whole.",
		EvidenceRefs: []string{evidence.RefSeqScanHotspot},
	}
}

func unusedIndex(idx snapshot.IndexStat) *suggestion.Finding {
	if idx.IdxScan != 0 || idx.Indisunique || idx.EnforcesConstraint {
		return nil
	}

	level := suggestion.Recommended
	if idx.IndexSizeBytes >= 100*1024*1024 {
		level = suggestion.Important
	}

	return &suggestion.Finding{
		Kind: suggestion.UnusedIndex, Schema: idx.Schema, Relation: idx.Relname, Index: idx.Indexrelname,
		Level: level, SizeBytes: idx.IndexSizeBytes,
		Metrics:      map[string]string{"idx_scan": "0"},
		Rationale:    "this index has never been scanned and is not required to enforce a constraint; it only costs storage and write overhead.",
		EvidenceRefs: []string{evidence.RefUnusedIndex},
	}
}

func lowSelectivityIndex(idx snapshot.IndexStat, table *snapshot.TableStat) *suggestion.Finding {
	if idx.Indisunique || table == nil {
		return nil
	}

	scanFloor := idx.IdxScan
	if scanFloor < 1 {
		scanFloor = 1
	}
	avgTupRead := float64(idx.IdxTupRead) / float64(scanFloor)

	if !(idx.IdxScan >= 50 && avgTupRead >= 0.2*float64(table.NLiveTup) && table.NLiveTup > 10000) {
		return nil
	}

	return &suggestion.Finding{
		Kind: suggestion.LowSelectivityIndex, Schema: idx.Schema, Relation: idx.Relname, Index: idx.Indexrelname,
		Level: suggestion.Important, SizeBytes: idx.IndexSizeBytes,
		Metrics: map[string]string{
			"avg_tup_read_per_scan": fmt.Sprintf("%.1f", avgTupRead),
		},
		Rationale:    "this index returns a large fraction of the table on an average scan and rarely beats a sequential scan.",
		EvidenceRefs: []string{evidence.RefLowSelectivity},
	}
}

func failedIndexOnlyScan(idx snapshot.IndexStat) *suggestion.Finding {
	readFloor := idx.IdxTupRead
	if readFloor < 1 {
		readFloor = 1
	}
	heapFetchRatio := float64(idx.IdxTupFetch) / float64(readFloor)

	if !(idx.IdxScan >= 100 && heapFetchRatio >= 0.5) {
		return nil
	}

	return &suggestion.Finding{
		Kind: suggestion.FailedIndexOnlyScan, Schema: idx.Schema, Relation: idx.Relname, Index: idx.Indexrelname,
		Level: suggestion.Important, SizeBytes: idx.IndexSizeBytes,
		Metrics: map[string]string{
			"heap_fetch_ratio": fmt.Sprintf("%.2f", heapFetchRatio),
		},
		Rationale:    "at least half of index reads fall through to a heap fetch; consider adding INCLUDE columns or running VACUUM to refresh the visibility map.",
		EvidenceRefs: []string{evidence.RefIndexOnlyScan},
	}
}
