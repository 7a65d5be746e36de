package rules

import (
	"fmt"

	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/units"
)

func init() {
	Register(Rule{ID: "memory.shared_buffers", Category: suggestion.Memory, Run: sharedBuffersRule})
	Register(Rule{ID: "memory.effective_cache_size", Category: suggestion.Memory, Run: effectiveCacheSizeRule})
	Register(Rule{ID: "memory.work_mem", Category: suggestion.Memory, Run: workMemRule})
	Register(Rule{ID: "memory.maintenance_work_mem", Category: suggestion.Memory, Run: maintenanceWorkMemRule})
	Register(Rule{ID: "memory.wal_buffers", Category: suggestion.Memory, Run: walBuffersRule})
}

// expectedSharedBuffers is 25% of RAM, capped at 8GiB when RAM exceeds 64GiB.
func expectedSharedBuffers(p profile.Profile) units.Size {
	quarter := p.PercentOfRAM(0.25)
	if p.RAMBytes.GB() > 64 {
		cap8 := units.Size(8 * units.GB)
		if quarter > cap8 {
			return cap8
		}
	}
	return quarter
}

func sharedBuffersRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingSize(snap, "shared_buffers")
	if !ok {
		return skippedInfo("memory.shared_buffers", suggestion.Memory, "shared_buffers")
	}

	expected := expectedSharedBuffers(p)
	ratio := ratioOf(current, expected)

	level := suggestion.Info
	switch {
	case ratio < 0.5 || ratio > 1.5:
		level = suggestion.Important
	case ratio != 1.0:
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "memory.shared_buffers", Category: suggestion.Memory, Level: level,
		Parameter: "shared_buffers", Current: fmtSize(current), Recommended: fmtSize(expected),
		Rationale:    "shared_buffers should be about 25% of RAM, capped around 8GiB on larger machines.",
		EvidenceRefs: []string{evidence.RefSharedBuffers},
	}, nil
}

func effectiveCacheSizeRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingSize(snap, "effective_cache_size")
	if !ok {
		return skippedInfo("memory.effective_cache_size", suggestion.Memory, "effective_cache_size")
	}

	expected := p.PercentOfRAM(0.75)
	ratio := ratioOf(current, expected)

	level := suggestion.Info
	switch {
	case ratio < 0.5:
		level = suggestion.Important
	case ratio != 1.0:
		level = suggestion.Recommended
	}

	rationale := "effective_cache_size should be about 75% of RAM; it only informs the planner's cost model."
	if level == suggestion.Important {
		rationale = "effective_cache_size is well below 75% of RAM; the planner will undervalue index scans and may avoid them."
	}

	return &suggestion.Suggestion{
		ID: "memory.effective_cache_size", Category: suggestion.Memory, Level: level,
		Parameter: "effective_cache_size", Current: fmtSize(current), Recommended: fmtSize(expected),
		Rationale: rationale, EvidenceRefs: []string{evidence.RefEffectiveCacheSize},
	}, nil
}

func workMemBand(p profile.Profile) (units.Size, units.Size) {
	switch p.WorkloadHint {
	case profile.OLAP:
		return 128 * units.MB, 256 * units.MB
	default: // OLTP and mixed share the OLTP band
		return 16 * units.MB, 64 * units.MB
	}
}

func workMemRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingSize(snap, "work_mem")
	if !ok {
		return skippedInfo("memory.work_mem", suggestion.Memory, "work_mem")
	}

	maxConn, connOK := settingInt(snap, "max_connections")
	if connOK && maxConn > 0 {
		total := current.Mul(float64(maxConn))
		half := p.PercentOfRAM(0.5)
		if total.Bytes() > half.Bytes() {
			return &suggestion.Suggestion{
				ID: "memory.work_mem", Category: suggestion.Memory, Level: suggestion.Critical,
				Parameter: "work_mem", Current: fmtSize(current), Recommended: fmtSize(workMemMidpoint(p)),
				Rationale: fmt.Sprintf(
					"work_mem x max_connections = %s exceeds 50%% of RAM (%s); every connection can allocate work_mem multiple times, risking OOM.",
					fmtSize(total), fmtSize(half)),
				EvidenceRefs: []string{evidence.RefWorkMem},
			}, nil
		}
	}

	lo, hi := workMemBand(p)
	if current.Bytes() < lo.Bytes() || current.Bytes() > hi.Bytes() {
		return &suggestion.Suggestion{
			ID: "memory.work_mem", Category: suggestion.Memory, Level: suggestion.Recommended,
			Parameter: "work_mem", Current: fmtSize(current), Recommended: fmtSize(workMemMidpoint(p)),
			Rationale:    fmt.Sprintf("work_mem should fall within [%s, %s] for a %s workload.", fmtSize(lo), fmtSize(hi), p.WorkloadHint),
			EvidenceRefs: []string{evidence.RefWorkMem},
		}, nil
	}

	return nil, nil
}

func workMemMidpoint(p profile.Profile) units.Size {
	lo, hi := workMemBand(p)
	return units.Size((lo.Bytes() + hi.Bytes()) / 2)
}

func maintenanceWorkMemRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingSize(snap, "maintenance_work_mem")
	if !ok {
		return skippedInfo("memory.maintenance_work_mem", suggestion.Memory, "maintenance_work_mem")
	}

	expected := maintenanceWorkMemForRAM(p.RAMBytes)
	level := suggestion.Info
	if current != expected {
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "memory.maintenance_work_mem", Category: suggestion.Memory, Level: level,
		Parameter: "maintenance_work_mem", Current: fmtSize(current), Recommended: fmtSize(expected),
		Rationale:    "maintenance_work_mem is used by VACUUM, CREATE INDEX, and ALTER TABLE ADD FOREIGN KEY.",
		EvidenceRefs: []string{evidence.RefMaintenanceWorkMem},
	}, nil
}

// maintenanceWorkMemForRAM maps declared RAM to the tier preset the setting
// is expected to hold, rather than deriving the tier from vCPU/RAM pairs
// directly — RAM alone determines this expectation per the spec table.
func maintenanceWorkMemForRAM(ram units.Size) units.Size {
	switch {
	case ram.GB() >= 256:
		return units.Size(2 * units.GB)
	case ram.GB() >= 64:
		return units.Size(1 * units.GB)
	default:
		return units.Size(512 * units.MB)
	}
}

func walBuffersRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingSize(snap, "wal_buffers")
	if !ok {
		return skippedInfo("memory.wal_buffers", suggestion.Memory, "wal_buffers")
	}

	sharedBuffers, sbOK := settingSize(snap, "shared_buffers")
	writeHeavy := p.WorkloadHint == profile.OLTP || p.WorkloadHint == profile.Mixed

	target := units.Size(16 * units.MB)
	shouldRecommend := writeHeavy && (current.Bytes() < target.Bytes()) && sbOK && sharedBuffers.GB() >= 1

	if !shouldRecommend {
		return nil, nil
	}

	return &suggestion.Suggestion{
		ID: "memory.wal_buffers", Category: suggestion.Memory, Level: suggestion.Recommended,
		Parameter: "wal_buffers", Current: fmtSize(current), Recommended: fmtSize(target),
		Rationale:    "wal_buffers below 16MiB under a write-heavy workload with shared_buffers >= 1GiB limits WAL write throughput.",
		EvidenceRefs: []string{evidence.RefWalBuffers},
	}, nil
}

// ratioOf returns current/expected as a float, guarding expected == 0.
func ratioOf(current, expected units.Size) float64 {
	if expected.Bytes() == 0 {
		if current.Bytes() == 0 {
			return 1.0
		}
		return 2.0
	}
	return float64(current.Bytes()) / float64(expected.Bytes())
}

// skippedInfo builds the Info suggestion emitted when a rule's dependent
// setting is missing or failed to parse — the setting is "unknown" per
// spec §3, and the rule is skipped rather than guessing. The accompanying
// error wraps ErrSettingUnparseable rather than being nil: the engine
// recognizes it and attaches a Report warning while still keeping this
// Suggestion, instead of treating it as a rule failure that drops output.
func skippedInfo(id string, cat suggestion.Category, param string) (*suggestion.Suggestion, error) {
	s := &suggestion.Suggestion{
		ID: id, Category: cat, Level: suggestion.Info, Parameter: param,
		Rationale: fmt.Sprintf("%s was missing or unparseable; this check was skipped.", param),
	}
	return s, fmt.Errorf("%w: %s", ErrSettingUnparseable, param)
}
