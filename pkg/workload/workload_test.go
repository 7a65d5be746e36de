package workload

import (
	"testing"

	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

func TestAnalyzeReturnsWarningWhenStatementsUnavailable(t *testing.T) {
	snap := snapshot.Snapshot{StatementsAvailable: false}
	section, warnings := Analyze(snap, nil, 20)
	if section != nil {
		t.Error("expected a nil workload section when statements are unavailable")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %+v", warnings)
	}
}

func TestAnalyzeCorrelatesWithSeqScanHotspot(t *testing.T) {
	snap := snapshot.Snapshot{
		StatementsAvailable: true,
		Statements: []snapshot.Statement{
			{
				Fingerprint: "rental-lookup", TotalExecMs: 50_000, Calls: 200, MeanExecMs: 250,
				QueryText: "SELECT * FROM rental WHERE customer_id = 7",
			},
		},
	}
	findings := []suggestion.Finding{
		{Kind: suggestion.SeqScanHotspot, Schema: "unknown_schema", Relation: "rental", Level: suggestion.Recommended},
	}

	section, warnings := Analyze(snap, findings, 20)
	if section == nil {
		t.Fatal("expected a workload section")
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", warnings)
	}
	if len(section.ProposedIndexes) != 1 {
		t.Fatalf("expected one proposed index, got %+v", section.ProposedIndexes)
	}
	if section.ProposedIndexes[0].Columns[0] != "customer_id" {
		t.Errorf("expected customer_id to lead the candidate, got %+v", section.ProposedIndexes[0].Columns)
	}

	if findings[0].Level != suggestion.Important {
		t.Errorf("expected the hotspot finding boosted to Important, got %s", findings[0].Level)
	}
	if len(findings[0].LinkedFingerprints) != 1 || findings[0].LinkedFingerprints[0] != "rental-lookup" {
		t.Errorf("expected the hotspot finding linked to rental-lookup, got %+v", findings[0].LinkedFingerprints)
	}
}

func TestAnalyzeWorkloadProposesIndexScenario(t *testing.T) {
	snap := snapshot.Snapshot{
		StatementsAvailable: true,
		Statements: []snapshot.Statement{
			{
				Fingerprint: "rental-return-date", TotalExecMs: 6_000, Calls: 50, MeanExecMs: 120,
				QueryText: "SELECT rental_id FROM rental WHERE return_date > $1",
			},
		},
	}

	section, warnings := Analyze(snap, nil, 20)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", warnings)
	}
	if section == nil || len(section.ProposedIndexes) != 1 {
		t.Fatalf("expected exactly one proposed index, got %+v", section)
	}
	cand := section.ProposedIndexes[0]
	if cand.Table != "rental" || len(cand.Columns) != 1 || cand.Columns[0] != "return_date" {
		t.Errorf("expected a return_date index on rental, got %+v", cand)
	}
}

func TestAnalyzeRecordsParseErrorWithoutAbortingOtherStatements(t *testing.T) {
	snap := snapshot.Snapshot{
		StatementsAvailable: true,
		Statements: []snapshot.Statement{
			{Fingerprint: "bad", TotalExecMs: 10, QueryText: "SELECT FROM WHERE !!!"},
			{Fingerprint: "good", TotalExecMs: 5, QueryText: "SELECT * FROM widgets WHERE sku = 'abc'"},
		},
	}

	section, warnings := Analyze(snap, nil, 20)
	if section == nil {
		t.Fatal("expected a workload section despite one parse failure")
	}
	if len(section.Records) != 2 {
		t.Fatalf("expected both statements recorded, got %d", len(section.Records))
	}
	if len(warnings) != 1 || warnings[0].Scope != "bad" {
		t.Errorf("expected one warning scoped to the failing fingerprint, got %+v", warnings)
	}
}
