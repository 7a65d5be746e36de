package rules

import (
	"fmt"

	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

func init() {
	Register(Rule{ID: "concurrency.max_connections", Category: suggestion.Concurrency, Run: maxConnectionsRule})
	Register(Rule{ID: "concurrency.max_worker_processes", Category: suggestion.Concurrency, Run: maxWorkerProcessesRule})
	Register(Rule{ID: "concurrency.max_parallel_workers", Category: suggestion.Concurrency, Run: maxParallelWorkersRule})
	Register(Rule{ID: "concurrency.max_parallel_workers_per_gather", Category: suggestion.Concurrency, Run: maxParallelWorkersPerGatherRule})
	Register(Rule{ID: "concurrency.max_parallel_maintenance_workers", Category: suggestion.Concurrency, Run: maxParallelMaintenanceWorkersRule})
}

func expectedMaxConnections(p profile.Profile) int64 {
	v := int64(4 * p.VCPUs)
	if v < 100 {
		return 100
	}
	return v
}

func maxConnectionsRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "max_connections")
	if !ok {
		return skippedInfo("concurrency.max_connections", suggestion.Concurrency, "max_connections")
	}

	expected := expectedMaxConnections(p)
	level := suggestion.Info
	rationale := "max_connections should be at least 4x vCPUs, with a floor of 100."
	if current > 4*expected {
		level = suggestion.Important
		rationale = "max_connections is far above the expected ceiling; consider a connection pooler (pgbouncer) instead of raising it further."
	} else if current != expected {
		level = suggestion.Recommended
	}

	return &suggestion.Suggestion{
		ID: "concurrency.max_connections", Category: suggestion.Concurrency, Level: level,
		Parameter: "max_connections", Current: fmtInt(current), Recommended: fmtInt(expected),
		Rationale: rationale, EvidenceRefs: []string{evidence.RefMaxConnections},
	}, nil
}

func maxWorkerProcessesRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "max_worker_processes")
	if !ok {
		return skippedInfo("concurrency.max_worker_processes", suggestion.Concurrency, "max_worker_processes")
	}
	expected := int64(p.VCPUs)
	level := suggestion.Info
	if current != expected {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "concurrency.max_worker_processes", Category: suggestion.Concurrency, Level: level,
		Parameter: "max_worker_processes", Current: fmtInt(current), Recommended: fmtInt(expected),
		Rationale: "max_worker_processes should track the declared vCPU count.", EvidenceRefs: []string{evidence.RefParallelWorkers},
	}, nil
}

func maxParallelWorkersRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "max_parallel_workers")
	if !ok {
		return skippedInfo("concurrency.max_parallel_workers", suggestion.Concurrency, "max_parallel_workers")
	}
	maxWorkers, mwOK := settingInt(snap, "max_worker_processes")
	expected := int64(p.VCPUs)

	if mwOK && current > maxWorkers {
		return &suggestion.Suggestion{
			ID: "concurrency.max_parallel_workers", Category: suggestion.Concurrency, Level: suggestion.Important,
			Parameter: "max_parallel_workers", Current: fmtInt(current), Recommended: fmtInt(expected),
			Rationale: fmt.Sprintf("max_parallel_workers (%d) exceeds max_worker_processes (%d); parallel queries cannot obtain enough workers.", current, maxWorkers),
			EvidenceRefs: []string{evidence.RefParallelWorkers},
		}, nil
	}

	level := suggestion.Info
	if current != expected {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "concurrency.max_parallel_workers", Category: suggestion.Concurrency, Level: level,
		Parameter: "max_parallel_workers", Current: fmtInt(current), Recommended: fmtInt(expected),
		Rationale: "max_parallel_workers should track the declared vCPU count and must not exceed max_worker_processes.",
		EvidenceRefs: []string{evidence.RefParallelWorkers},
	}, nil
}

func maxParallelWorkersPerGatherRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "max_parallel_workers_per_gather")
	if !ok {
		return skippedInfo("concurrency.max_parallel_workers_per_gather", suggestion.Concurrency, "max_parallel_workers_per_gather")
	}
	maxParallel, mpOK := settingInt(snap, "max_parallel_workers")
	expected := int64(p.HalfVCPUs())

	if mpOK && current == maxParallel {
		return &suggestion.Suggestion{
			ID: "concurrency.max_parallel_workers_per_gather", Category: suggestion.Concurrency, Level: suggestion.Important,
			Parameter: "max_parallel_workers_per_gather", Current: fmtInt(current), Recommended: fmtInt(expected),
			Rationale:    "max_parallel_workers_per_gather equals max_parallel_workers; a single query could consume the entire parallel worker pool.",
			EvidenceRefs: []string{evidence.RefParallelWorkers},
		}, nil
	}

	level := suggestion.Info
	if current != expected {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "concurrency.max_parallel_workers_per_gather", Category: suggestion.Concurrency, Level: level,
		Parameter: "max_parallel_workers_per_gather", Current: fmtInt(current), Recommended: fmtInt(expected),
		Rationale: "max_parallel_workers_per_gather should be about half the declared vCPU count.", EvidenceRefs: []string{evidence.RefParallelWorkers},
	}, nil
}

func maxParallelMaintenanceWorkersRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingInt(snap, "max_parallel_maintenance_workers")
	if !ok {
		return skippedInfo("concurrency.max_parallel_maintenance_workers", suggestion.Concurrency, "max_parallel_maintenance_workers")
	}
	expected := int64(p.HalfVCPUs())
	level := suggestion.Info
	if current != expected {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "concurrency.max_parallel_maintenance_workers", Category: suggestion.Concurrency, Level: level,
		Parameter: "max_parallel_maintenance_workers", Current: fmtInt(current), Recommended: fmtInt(expected),
		Rationale: "max_parallel_maintenance_workers should be about half the declared vCPU count.", EvidenceRefs: []string{evidence.RefParallelWorkers},
	}, nil
}
