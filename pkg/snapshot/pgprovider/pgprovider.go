// Package pgprovider is the production snapshot.Provider: it runs the
// catalog queries the engine needs against a live *sql.DB, following the
// same database/sql + lib/pq pattern the teacher uses to talk to
// PostgreSQL in pkg/server/postgres.go.
package pgprovider

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/flanksource/postgres/pkg/snapshot"
)

// Provider runs catalog queries against db. Every method uses the
// *Context variants of database/sql so a cancelled context aborts the
// in-flight round trip instead of letting it complete.
type Provider struct {
	db *sql.DB
}

// New wraps an already-opened connection pool. The caller owns the
// lifecycle of db (opening, timeouts, closing).
func New(db *sql.DB) *Provider {
	return &Provider{db: db}
}

var _ snapshot.Provider = (*Provider)(nil)

const settingsQuery = `
SELECT name, setting, COALESCE(unit, ''), source
FROM pg_settings
`

func (p *Provider) FetchSettings(ctx context.Context) ([]snapshot.Setting, error) {
	rows, err := p.db.QueryContext(ctx, settingsQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch_settings: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Setting
	for rows.Next() {
		var s snapshot.Setting
		if err := rows.Scan(&s.Name, &s.RawValue, &s.Unit, &s.Source); err != nil {
			return nil, fmt.Errorf("fetch_settings: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch_settings: %w", err)
	}
	return out, nil
}

const activeConnectionsQuery = `
SELECT count(*) FROM pg_stat_activity WHERE backend_type = 'client backend'
`

func (p *Provider) FetchActiveConnections(ctx context.Context) (uint32, error) {
	var n uint32
	row := p.db.QueryRowContext(ctx, activeConnectionsQuery)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("fetch_active_connections: %w", err)
	}
	return n, nil
}

const tableStatsQuery = `
SELECT
	s.schemaname, s.relname, s.n_live_tup, s.n_dead_tup, s.seq_scan, s.idx_scan,
	s.last_autovacuum, s.last_autoanalyze,
	pg_total_relation_size(s.relid)
FROM pg_stat_user_tables s
`

func (p *Provider) FetchTableStats(ctx context.Context) ([]snapshot.TableStat, error) {
	rows, err := p.db.QueryContext(ctx, tableStatsQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch_table_stats: %w", err)
	}
	defer rows.Close()

	var out []snapshot.TableStat
	for rows.Next() {
		var t snapshot.TableStat
		if err := rows.Scan(&t.Schema, &t.Relname, &t.NLiveTup, &t.NDeadTup, &t.SeqScan, &t.IdxScan,
			&t.LastAutovacuum, &t.LastAutoanalyze, &t.RelationSizeBytes); err != nil {
			return nil, fmt.Errorf("fetch_table_stats: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch_table_stats: %w", err)
	}
	return out, nil
}

const indexStatsQuery = `
SELECT
	s.schemaname, s.relname, s.indexrelname, s.idx_scan, s.idx_tup_read, s.idx_tup_fetch,
	i.indisunique,
	EXISTS (SELECT 1 FROM pg_constraint c WHERE c.conindid = s.indexrelid),
	pg_relation_size(s.indexrelid)
FROM pg_stat_user_indexes s
JOIN pg_index i ON i.indexrelid = s.indexrelid
`

func (p *Provider) FetchIndexStats(ctx context.Context) ([]snapshot.IndexStat, error) {
	rows, err := p.db.QueryContext(ctx, indexStatsQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch_index_stats: %w", err)
	}
	defer rows.Close()

	var out []snapshot.IndexStat
	for rows.Next() {
		var idx snapshot.IndexStat
		if err := rows.Scan(&idx.Schema, &idx.Relname, &idx.Indexrelname, &idx.IdxScan, &idx.IdxTupRead,
			&idx.IdxTupFetch, &idx.Indisunique, &idx.EnforcesConstraint, &idx.IndexSizeBytes); err != nil {
			return nil, fmt.Errorf("fetch_index_stats: scan: %w", err)
		}
		out = append(out, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch_index_stats: %w", err)
	}
	return out, nil
}

const statementsExistsQuery = `
SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'pg_stat_statements')
`

const statementsQuery = `
SELECT queryid::text, query, calls, total_exec_time, mean_exec_time, rows,
	shared_blks_read, shared_blks_hit, temp_blks_written
FROM pg_stat_statements
ORDER BY total_exec_time DESC
LIMIT $1
`

// FetchStatements returns snapshot.ErrNotAvailable when pg_stat_statements
// is not installed in the target database, so the engine can degrade
// instead of treating this as fatal.
func (p *Provider) FetchStatements(ctx context.Context, limit int) ([]snapshot.Statement, error) {
	var installed bool
	if err := p.db.QueryRowContext(ctx, statementsExistsQuery).Scan(&installed); err != nil {
		return nil, fmt.Errorf("fetch_pg_stat_statements: checking extension: %w", err)
	}
	if !installed {
		return nil, snapshot.ErrNotAvailable
	}

	rows, err := p.db.QueryContext(ctx, statementsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch_pg_stat_statements: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Statement
	for rows.Next() {
		var s snapshot.Statement
		if err := rows.Scan(&s.Fingerprint, &s.QueryText, &s.Calls, &s.TotalExecMs, &s.MeanExecMs, &s.Rows,
			&s.SharedBlksRead, &s.SharedBlksHit, &s.TempBlksWritten); err != nil {
			return nil, fmt.Errorf("fetch_pg_stat_statements: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch_pg_stat_statements: %w", err)
	}
	return out, nil
}
