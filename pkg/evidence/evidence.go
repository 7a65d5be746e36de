// Package evidence holds the fixed, process-wide catalog of documentation
// citations that rules attach to suggestions. It is the one piece of
// process-wide state the engine carries, and it is immutable after package
// initialization — see the registry pattern in pkg/rules.
package evidence

import "sort"

// Reference is one citation: a short key rules embed in a Suggestion's
// EvidenceRefs, plus the human-readable text a reporter renders.
type Reference struct {
	Key  string
	Text string
}

var catalog = map[string]Reference{}

func register(key, text string) string {
	catalog[key] = Reference{Key: key, Text: text}
	return key
}

// Lookup returns the reference text for a key, or the key itself if no
// reference was registered — callers never fail on an unknown key.
func Lookup(key string) string {
	if ref, ok := catalog[key]; ok {
		return ref.Text
	}
	return key
}

// All returns every registered reference sorted by Key, for reporters that
// render a collapsible evidence block.
func All() []Reference {
	out := make([]Reference, 0, len(catalog))
	for _, ref := range catalog {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Evidence keys cited by the rule library. Grouped by family for
// readability; the key strings are what Suggestion.EvidenceRefs carries.
var (
	RefSharedBuffers        = register("pg.shared_buffers", "PostgreSQL docs: shared_buffers — typically 25% of system RAM, up to a ceiling around 8GB on larger machines.")
	RefEffectiveCacheSize   = register("pg.effective_cache_size", "PostgreSQL docs: effective_cache_size — an estimate of memory available for disk caching, used only by the planner's cost model.")
	RefWorkMem              = register("pg.work_mem", "PostgreSQL docs: work_mem — allocated per sort/hash operation, potentially many times per connection; size conservatively against max_connections.")
	RefMaintenanceWorkMem   = register("pg.maintenance_work_mem", "PostgreSQL docs: maintenance_work_mem — used by VACUUM, CREATE INDEX, and ALTER TABLE ADD FOREIGN KEY.")
	RefWalBuffers           = register("pg.wal_buffers", "PostgreSQL docs: wal_buffers — 16MB is sufficient for most workloads once shared_buffers exceeds 1GB.")
	RefMaxConnections       = register("pg.max_connections", "PostgreSQL docs: max_connections — high connection counts consume memory per-backend; prefer a connection pooler (pgbouncer) over raising this.")
	RefParallelWorkers      = register("pg.parallel_workers", "PostgreSQL docs: max_worker_processes / max_parallel_workers — parallel query workers are bounded by the worker process pool.")
	RefMaxWalSize           = register("pg.max_wal_size", "PostgreSQL docs: max_wal_size — a low ceiling forces frequent checkpoints, increasing write amplification.")
	RefCheckpointCompletion = register("pg.checkpoint_completion_target", "PostgreSQL docs: checkpoint_completion_target — spreads checkpoint I/O across the checkpoint interval to avoid write spikes.")
	RefRandomPageCost       = register("pg.random_page_cost", "PostgreSQL docs: random_page_cost — should be close to seq_page_cost on SSD/NVMe storage; a high value biases the planner toward sequential scans.")
	RefEffectiveIOConc      = register("pg.effective_io_concurrency", "PostgreSQL docs: effective_io_concurrency — raising it lets bitmap heap scans issue more concurrent prefetch requests on SSD storage.")
	RefAutovacuumWorkers    = register("pg.autovacuum_max_workers", "PostgreSQL docs: autovacuum_max_workers — too few workers causes large tables to queue behind small ones.")
	RefAutovacuumCostLimit  = register("pg.autovacuum_vacuum_cost_limit", "PostgreSQL docs: autovacuum_vacuum_cost_limit — the default throttles autovacuum heavily on modern hardware.")
	RefAutovacuumWorkMem    = register("pg.autovacuum_work_mem", "PostgreSQL docs: autovacuum_work_mem — falling back to maintenance_work_mem multiplies that allocation by every concurrent autovacuum worker.")
	RefAutovacuumScaleFactor = register("pg.autovacuum_vacuum_scale_factor", "PostgreSQL docs: autovacuum_vacuum_scale_factor — the default 0.2 is too sparse for large tables; prefer a per-table ALTER TABLE override.")
	RefLogMinDuration       = register("pg.log_min_duration_statement", "PostgreSQL docs: log_min_duration_statement — needed to see slow queries at all.")
	RefLogLockWaits         = register("pg.log_lock_waits", "PostgreSQL docs: log_lock_waits — logs sessions waiting longer than deadlock_timeout for a lock.")
	RefBloat                = register("health.bloat", "PostgreSQL wiki: table bloat — dead tuples accumulate between vacuums and inflate storage and scan cost.")
	RefSeqScanHotspot       = register("health.seq_scan_hotspot", "PostgreSQL docs: a high ratio of sequential to index scans on a large table usually indicates a missing or unused index.")
	RefUnusedIndex          = register("health.unused_index", "PostgreSQL wiki: unused indexes consume storage and slow writes without ever serving a read.")
	RefLowSelectivity       = register("health.low_selectivity_index", "PostgreSQL docs: an index returning a large fraction of the table per scan rarely beats a sequential scan.")
	RefIndexOnlyScan        = register("health.failed_index_only_scan", "PostgreSQL docs: index-only scans require an up-to-date visibility map; a high heap-fetch ratio means VACUUM has fallen behind or the index lacks INCLUDE columns.")
	RefWorkloadIndex        = register("workload.index_candidate", "PostgreSQL docs: multicolumn indexes should lead with equality-filtered columns, then range-filtered columns, then ORDER BY columns.")
)
