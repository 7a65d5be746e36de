package workload

import (
	"testing"

	"github.com/flanksource/postgres/pkg/snapshot"
)

func TestRankDedupesByFingerprint(t *testing.T) {
	stmts := []snapshot.Statement{
		{Fingerprint: "a", TotalExecMs: 1000, Calls: 50, MeanExecMs: 20},
		{Fingerprint: "b", TotalExecMs: 500, Calls: 50, MeanExecMs: 10},
	}
	ranked := Rank(stmts, 20)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(ranked))
	}
	if ranked[0].Fingerprint != "a" {
		t.Errorf("expected highest total_exec_time first, got %s", ranked[0].Fingerprint)
	}
}

func TestRankIncludesTempBlocksAndSharedBlksOutliers(t *testing.T) {
	stmts := []snapshot.Statement{
		{Fingerprint: "temp-heavy", TotalExecMs: 1, Calls: 1, TempBlksWritten: 500},
		{Fingerprint: "shared-heavy", TotalExecMs: 1, Calls: 1, SharedBlksRead: 5000},
		{Fingerprint: "quiet", TotalExecMs: 1, Calls: 1},
	}
	// Limit 1 so only the top total_exec_time slot would otherwise admit one
	// statement; temp/shared slots should still pull in the other two.
	ranked := Rank(stmts, 1)

	found := map[string]bool{}
	for _, s := range ranked {
		found[s.Fingerprint] = true
	}
	if !found["temp-heavy"] || !found["shared-heavy"] {
		t.Errorf("expected temp/shared outliers retained regardless of limit, got %+v", ranked)
	}
	if found["quiet"] {
		t.Errorf("did not expect the quiet statement to be retained")
	}
}

func TestRankDefaultLimitWhenNonPositive(t *testing.T) {
	stmts := make([]snapshot.Statement, 0, 30)
	for i := 0; i < 30; i++ {
		stmts = append(stmts, snapshot.Statement{
			Fingerprint: string(rune('a' + i)),
			TotalExecMs: float64(30 - i),
		})
	}
	ranked := Rank(stmts, 0)
	if len(ranked) != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, len(ranked))
	}
}
