package snapshot

import (
	"context"
	"errors"
)

// ErrNotAvailable is returned by FetchStatements when pg_stat_statements is
// not installed on the target. The engine treats this as Degraded, not
// Fatal: it emits a warning and skips workload analysis.
var ErrNotAvailable = errors.New("pg_stat_statements is not available")

// Provider executes the catalog queries the engine needs and returns typed
// rows. Every method takes a context so a cancelled run aborts in-flight
// queries instead of completing a Snapshot the engine would otherwise
// analyze incompletely.
type Provider interface {
	FetchSettings(ctx context.Context) ([]Setting, error)
	FetchActiveConnections(ctx context.Context) (uint32, error)
	FetchTableStats(ctx context.Context) ([]TableStat, error)
	FetchIndexStats(ctx context.Context) ([]IndexStat, error)
	// FetchStatements returns ErrNotAvailable when pg_stat_statements is not
	// installed; limit bounds the number of rows the provider asks for.
	FetchStatements(ctx context.Context, limit int) ([]Statement, error)
}

// Fetch builds a complete Snapshot from a Provider. Required queries
// (settings, active connections, table stats, index stats) failing is
// Fatal and aborts with no Snapshot. pg_stat_statements being unavailable
// is Degraded: the snapshot is still returned, with StatementsAvailable
// false, so the engine can emit a warning and skip workload analysis.
func Fetch(ctx context.Context, p Provider, statementLimit int) (Snapshot, error) {
	settingRows, err := p.FetchSettings(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	conns, err := p.FetchActiveConnections(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	tableStats, err := p.FetchTableStats(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	indexStats, err := p.FetchIndexStats(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Settings:          NewSettings(settingRows),
		ActiveConnections: conns,
		TableStats:        tableStats,
		IndexStats:        indexStats,
	}

	statements, err := p.FetchStatements(ctx, statementLimit)
	switch {
	case err == nil:
		snap.Statements = statements
		snap.StatementsAvailable = true
	case errors.Is(err, ErrNotAvailable):
		snap.StatementsAvailable = false
	default:
		// A timed-out or failed optional query degrades the run rather
		// than aborting it: the caller surfaces this as a warning.
		snap.StatementsAvailable = false
	}

	return snap, nil
}
