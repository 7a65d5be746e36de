package tablehealth

import (
	"testing"
	"time"

	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

func TestBloatedTableNullAutovacuumIsImportant(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	table := snapshot.TableStat{
		Schema: "public", Relname: "orders",
		NLiveTup: 5000, NDeadTup: 1000, // ratio exactly 0.2
		LastAutovacuum: nil,
	}
	f := bloatedTable(table, now)
	if f == nil {
		t.Fatal("expected a bloat finding")
	}
	if f.Level != suggestion.Important {
		t.Errorf("expected Important, got %s", f.Level)
	}
}

func TestBloatWithHealthyAutovacuumDowngradesToInfo(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tenMinAgo := now.Add(-10 * time.Minute)
	table := snapshot.TableStat{
		Schema: "public", Relname: "orders",
		NLiveTup: 10_000_000, NDeadTup: 3_000_000, // ratio 0.3
		LastAutovacuum: &tenMinAgo,
	}
	f := bloatedTable(table, now)
	if f == nil {
		t.Fatal("expected a bloat finding")
	}
	if f.Level != suggestion.Info {
		t.Errorf("expected Info given recent autovacuum, got %s", f.Level)
	}
}

func TestSeqScanHotspotBoundaryNotFlagged(t *testing.T) {
	table := snapshot.TableStat{
		Schema: "public", Relname: "small",
		NLiveTup: 10_000, RelationSizeBytes: 5 * 1024 * 1024,
		SeqScan: 2, IdxScan: 100, // seq_scan * 50 == idx_scan, not >
	}
	if f := seqScanHotspot(table); f != nil {
		t.Error("expected no hotspot at the exact boundary")
	}
}

func TestSeqScanHotspotImportantWhenNoIndexScansAndLarge(t *testing.T) {
	table := snapshot.TableStat{
		Schema: "public", Relname: "big",
		NLiveTup: 20_000, RelationSizeBytes: 200 * 1024 * 1024,
		SeqScan: 10, IdxScan: 0,
	}
	f := seqScanHotspot(table)
	if f == nil {
		t.Fatal("expected a hotspot finding")
	}
	if f.Level != suggestion.Important {
		t.Errorf("expected Important, got %s", f.Level)
	}
}

func TestUnusedIndexPrimaryKeyNotFlagged(t *testing.T) {
	idx := snapshot.IndexStat{
		Schema: "public", Relname: "orders", Indexrelname: "orders_pkey",
		IdxScan: 0, Indisunique: true, EnforcesConstraint: true,
		IndexSizeBytes: 10 * 1024 * 1024,
	}
	if f := unusedIndex(idx); f != nil {
		t.Error("expected primary key index to never be flagged unused")
	}
}

func TestUnusedLargeIndexIsImportant(t *testing.T) {
	idx := snapshot.IndexStat{
		Schema: "public", Relname: "orders", Indexrelname: "idx_orders_note",
		IdxScan: 0, Indisunique: false, EnforcesConstraint: false,
		IndexSizeBytes: 250 * 1024 * 1024,
	}
	f := unusedIndex(idx)
	if f == nil {
		t.Fatal("expected an unused index finding")
	}
	if f.Level != suggestion.Important {
		t.Errorf("expected Important, got %s", f.Level)
	}
}

func TestFailedIndexOnlyScan(t *testing.T) {
	idx := snapshot.IndexStat{
		Schema: "public", Relname: "orders", Indexrelname: "idx_orders_customer",
		IdxScan: 500, IdxTupRead: 1_000_000, IdxTupFetch: 900_000,
	}
	f := failedIndexOnlyScan(idx)
	if f == nil {
		t.Fatal("expected a failed index-only scan finding")
	}
	if f.Level != suggestion.Important {
		t.Errorf("expected Important, got %s", f.Level)
	}
}

func TestSortFindingsOrdering(t *testing.T) {
	findings := []suggestion.Finding{
		{Schema: "public", Relation: "b", Level: suggestion.Important, SizeBytes: 100},
		{Schema: "public", Relation: "a", Level: suggestion.Critical, SizeBytes: 50},
		{Schema: "public", Relation: "c", Level: suggestion.Important, SizeBytes: 200},
	}
	suggestion.SortFindings(findings)

	if findings[0].Level != suggestion.Critical {
		t.Errorf("expected Critical first, got %s", findings[0].Level)
	}
	if findings[1].Relation != "c" || findings[2].Relation != "b" {
		t.Errorf("expected size-desc tie-break among Important findings, got order %s, %s",
			findings[1].Relation, findings[2].Relation)
	}
}
