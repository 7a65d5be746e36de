package rules

import (
	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/units"
)

func init() {
	Register(Rule{ID: "wal.max_wal_size", Category: suggestion.WAL, Run: maxWalSizeRule})
	Register(Rule{ID: "wal.checkpoint_timeout", Category: suggestion.WAL, Run: checkpointTimeoutRule})
	Register(Rule{ID: "wal.checkpoint_completion_target", Category: suggestion.WAL, Run: checkpointCompletionTargetRule})
}

func expectedMaxWalSize(p profile.Profile) units.Size {
	switch {
	case p.RAMBytes.GB() >= 256:
		return units.Size(32 * units.GB)
	case p.RAMBytes.GB() >= 64:
		return units.Size(16 * units.GB)
	default:
		return units.Size(4 * units.GB)
	}
}

func maxWalSizeRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingSize(snap, "max_wal_size")
	if !ok {
		return skippedInfo("wal.max_wal_size", suggestion.WAL, "max_wal_size")
	}

	expected := expectedMaxWalSize(p)
	level := suggestion.Info
	if current.Bytes() <= (1 * units.GB) {
		level = suggestion.Important
	} else if current != expected {
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "wal.max_wal_size", Category: suggestion.WAL, Level: level,
		Parameter: "max_wal_size", Current: fmtSize(current), Recommended: fmtSize(expected),
		Rationale:    "a low max_wal_size forces frequent checkpoints, increasing write amplification.",
		EvidenceRefs: []string{evidence.RefMaxWalSize},
	}, nil
}

func expectedCheckpointTimeout(p profile.Profile) (lo, hi units.Duration) {
	if p.WorkloadHint == profile.OLAP {
		return units.Duration(15 * units.Minute), units.Duration(30 * units.Minute)
	}
	return units.Duration(5 * units.Minute), units.Duration(5 * units.Minute)
}

func checkpointTimeoutRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingDuration(snap, "checkpoint_timeout")
	if !ok {
		return skippedInfo("wal.checkpoint_timeout", suggestion.WAL, "checkpoint_timeout")
	}

	lo, hi := expectedCheckpointTimeout(p)
	within := current.Duration() >= lo.Duration() && current.Duration() <= hi.Duration()
	level := suggestion.Info
	if !within {
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "wal.checkpoint_timeout", Category: suggestion.WAL, Level: level,
		Parameter: "checkpoint_timeout", Current: fmtDuration(current), Recommended: fmtDuration(lo),
		Rationale:    "checkpoint_timeout should match the workload: 5min for OLTP, 15-30min for OLAP.",
		EvidenceRefs: []string{evidence.RefMaxWalSize},
	}, nil
}

func checkpointCompletionTargetRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingRatio(snap, "checkpoint_completion_target")
	if !ok {
		return skippedInfo("wal.checkpoint_completion_target", suggestion.WAL, "checkpoint_completion_target")
	}

	expected := units.Ratio(0.9)
	level := suggestion.Info
	if current.Float64() < 0.8 {
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "wal.checkpoint_completion_target", Category: suggestion.WAL, Level: level,
		Parameter: "checkpoint_completion_target", Current: fmtRatio(current), Recommended: fmtRatio(expected),
		Rationale:    "checkpoint_completion_target spreads checkpoint I/O across the checkpoint interval to avoid write spikes.",
		EvidenceRefs: []string{evidence.RefCheckpointCompletion},
	}, nil
}
