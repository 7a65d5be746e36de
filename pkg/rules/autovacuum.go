package rules

import (
	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/units"
)

func init() {
	Register(Rule{ID: "autovacuum.max_workers", Category: suggestion.Autovacuum, Run: autovacuumMaxWorkersRule})
	Register(Rule{ID: "autovacuum.vacuum_cost_limit", Category: suggestion.Autovacuum, Run: autovacuumCostLimitRule})
	Register(Rule{ID: "autovacuum.work_mem", Category: suggestion.Autovacuum, Run: autovacuumWorkMemRule})
	Register(Rule{ID: "autovacuum.vacuum_scale_factor", Category: suggestion.Autovacuum, Run: autovacuumScaleFactorRule})
	Register(Rule{ID: "autovacuum.naptime", Category: suggestion.Autovacuum, Run: autovacuumNaptimeRule})
}

func autovacuumMaxWorkersRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "autovacuum_max_workers")
	if !ok {
		return skippedInfo("autovacuum.max_workers", suggestion.Autovacuum, "autovacuum_max_workers")
	}
	level := suggestion.Info
	if current < 5 {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "autovacuum.max_workers", Category: suggestion.Autovacuum, Level: level,
		Parameter: "autovacuum_max_workers", Current: fmtInt(current), Recommended: "5",
		Rationale:    "too few autovacuum workers causes large tables to queue behind small ones.",
		EvidenceRefs: []string{evidence.RefAutovacuumWorkers},
	}, nil
}

func autovacuumCostLimitRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "autovacuum_vacuum_cost_limit")
	if !ok {
		return skippedInfo("autovacuum.vacuum_cost_limit", suggestion.Autovacuum, "autovacuum_vacuum_cost_limit")
	}
	level := suggestion.Info
	if current <= 200 {
		level = suggestion.Important
	} else if current != 2000 {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "autovacuum.vacuum_cost_limit", Category: suggestion.Autovacuum, Level: level,
		Parameter: "autovacuum_vacuum_cost_limit", Current: fmtInt(current), Recommended: "2000",
		Rationale:    "the default autovacuum_vacuum_cost_limit throttles autovacuum heavily on modern hardware.",
		EvidenceRefs: []string{evidence.RefAutovacuumCostLimit},
	}, nil
}

func autovacuumWorkMemRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	raw, ok := snap.Settings.Get("autovacuum_work_mem")
	if !ok {
		return skippedInfo("autovacuum.work_mem", suggestion.Autovacuum, "autovacuum_work_mem")
	}

	if raw.RawValue == "-1" {
		maintWorkMem, mwOK := settingSize(snap, "maintenance_work_mem")
		if mwOK && maintWorkMem.GB() >= 1 {
			return &suggestion.Suggestion{
				ID: "autovacuum.work_mem", Category: suggestion.Autovacuum, Level: suggestion.Critical,
				Parameter: "autovacuum_work_mem", Current: "-1 (falls back to maintenance_work_mem)", Recommended: fmtSize(units.Size(512 * units.MB)),
				Rationale:    "autovacuum_work_mem falling back to maintenance_work_mem multiplies that allocation by every concurrent autovacuum worker.",
				EvidenceRefs: []string{evidence.RefAutovacuumWorkMem},
			}, nil
		}
		return nil, nil
	}

	current, ok := raw.Bytes(blockSize(snap))
	if !ok {
		return skippedInfo("autovacuum.work_mem", suggestion.Autovacuum, "autovacuum_work_mem")
	}
	expected := units.Size(512 * units.MB)
	level := suggestion.Info
	if current != expected {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "autovacuum.work_mem", Category: suggestion.Autovacuum, Level: level,
		Parameter: "autovacuum_work_mem", Current: fmtSize(current), Recommended: fmtSize(expected),
		Rationale:    "autovacuum_work_mem should be set explicitly rather than inherited from maintenance_work_mem.",
		EvidenceRefs: []string{evidence.RefAutovacuumWorkMem},
	}, nil
}

func autovacuumScaleFactorRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingRatio(snap, "autovacuum_vacuum_scale_factor")
	if !ok {
		return skippedInfo("autovacuum.vacuum_scale_factor", suggestion.Autovacuum, "autovacuum_vacuum_scale_factor")
	}
	level := suggestion.Info
	if current.Float64() == 0.2 {
		level = suggestion.Important
	} else if current.Float64() > 0.1 {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "autovacuum.vacuum_scale_factor", Category: suggestion.Autovacuum, Level: level,
		Parameter: "autovacuum_vacuum_scale_factor", Current: fmtRatio(current), Recommended: "0.1",
		Rationale:    "the default 0.2 is too sparse for large tables; prefer a per-table ALTER TABLE override for big tables rather than lowering this globally.",
		EvidenceRefs: []string{evidence.RefAutovacuumScaleFactor},
	}, nil
}

func autovacuumNaptimeRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingDuration(snap, "autovacuum_naptime")
	if !ok {
		return skippedInfo("autovacuum.naptime", suggestion.Autovacuum, "autovacuum_naptime")
	}
	expected := units.Duration(30 * units.Second)
	level := suggestion.Info
	if current.Duration() != expected.Duration() {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "autovacuum.naptime", Category: suggestion.Autovacuum, Level: level,
		Parameter: "autovacuum_naptime", Current: fmtDuration(current), Recommended: fmtDuration(expected),
		Rationale:    "a 30s naptime is appropriate for high-churn tables; longer naptimes let dead tuples accumulate between runs.",
		EvidenceRefs: []string{evidence.RefAutovacuumWorkers},
	}, nil
}
