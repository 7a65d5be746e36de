package workload

import (
	"testing"

	"github.com/flanksource/postgres/pkg/suggestion"
)

func TestOrderColumnsEqualityBeforeRangeBeforeOrderBy(t *testing.T) {
	refs := []columnRef{
		{Table: "t", Column: "created_at", Kind: predOrderBy},
		{Table: "t", Column: "amount", Kind: predRange},
		{Table: "t", Column: "customer_id", Kind: predEquality},
	}
	cols := orderColumns(refs)
	want := []string{"customer_id", "amount", "created_at"}
	if len(cols) != len(want) {
		t.Fatalf("expected %v, got %v", want, cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("expected %v, got %v", want, cols)
			break
		}
	}
}

func TestMergeCandidateAccumulatesBenefitAndFingerprints(t *testing.T) {
	acc := map[candidateKey]*suggestion.IndexCandidate{}
	c := &suggestion.IndexCandidate{Schema: "public", Table: "orders", Columns: []string{"customer_id"}}

	mergeCandidate(acc, c, "fp1", 100)
	mergeCandidate(acc, c, "fp2", 50)

	key := candidateKey{table: "public.orders", columns: "customer_id"}
	merged, ok := acc[key]
	if !ok {
		t.Fatalf("expected a merged candidate under key %+v", key)
	}
	if merged.EstBenefitMs != 150 {
		t.Errorf("expected accumulated benefit 150, got %v", merged.EstBenefitMs)
	}
	if len(merged.SourceFingerprints) != 2 {
		t.Errorf("expected 2 source fingerprints, got %+v", merged.SourceFingerprints)
	}
}

func TestSortCandidatesByBenefitDescending(t *testing.T) {
	cands := []suggestion.IndexCandidate{
		{Schema: "public", Table: "a", Columns: []string{"x"}, EstBenefitMs: 10},
		{Schema: "public", Table: "b", Columns: []string{"y"}, EstBenefitMs: 90},
	}
	sortCandidates(cands)
	if cands[0].Table != "b" {
		t.Errorf("expected highest benefit first, got %+v", cands)
	}
}
