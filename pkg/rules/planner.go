package rules

import (
	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

func init() {
	Register(Rule{ID: "planner.random_page_cost", Category: suggestion.Planner, Run: randomPageCostRule})
	Register(Rule{ID: "planner.effective_io_concurrency", Category: suggestion.Planner, Run: effectiveIOConcurrencyRule})
	Register(Rule{ID: "planner.seq_page_cost", Category: suggestion.Planner, Run: seqPageCostRule})
}

func randomPageCostRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingRatio(snap, "random_page_cost")
	if !ok {
		return skippedInfo("planner.random_page_cost", suggestion.Planner, "random_page_cost")
	}

	expected := "1.1"
	var level suggestion.Level
	switch {
	case current.Float64() >= 3.0:
		level = suggestion.Critical
	case current.Float64() != 1.1:
		level = suggestion.Important
	default:
		level = suggestion.Info
	}

	return &suggestion.Suggestion{
		ID: "planner.random_page_cost", Category: suggestion.Planner, Level: level,
		Parameter: "random_page_cost", Current: fmtRatio(current), Recommended: expected,
		Rationale:    "random_page_cost should be close to seq_page_cost on SSD/NVMe storage; a high value makes the planner wrongly skip indexes in favor of sequential scans.",
		EvidenceRefs: []string{evidence.RefRandomPageCost},
	}, nil
}

func effectiveIOConcurrencyRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "effective_io_concurrency")
	if !ok {
		return skippedInfo("planner.effective_io_concurrency", suggestion.Planner, "effective_io_concurrency")
	}

	level := suggestion.Info
	if current < 50 {
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "planner.effective_io_concurrency", Category: suggestion.Planner, Level: level,
		Parameter: "effective_io_concurrency", Current: fmtInt(current), Recommended: "200",
		Rationale:    "effective_io_concurrency lets bitmap heap scans issue more concurrent prefetch requests on SSD storage.",
		EvidenceRefs: []string{evidence.RefEffectiveIOConc},
	}, nil
}

func seqPageCostRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	randomCost, rOK := settingRatio(snap, "random_page_cost")
	seqCost, sOK := settingRatio(snap, "seq_page_cost")
	if !rOK || !sOK {
		return skippedInfo("planner.seq_page_cost", suggestion.Planner, "seq_page_cost")
	}

	if randomCost.Float64() < seqCost.Float64() {
		return &suggestion.Suggestion{
			ID: "planner.seq_page_cost", Category: suggestion.Planner, Level: suggestion.Important,
			Parameter: "seq_page_cost", Current: fmtRatio(seqCost), Recommended: fmtRatio(randomCost),
			Rationale:    "random_page_cost must be >= seq_page_cost; a violation biases the planner toward inconsistent cost estimates.",
			EvidenceRefs: []string{evidence.RefRandomPageCost},
		}, nil
	}

	return nil, nil
}
