// Package snapshot holds the typed records the analysis engine reads from a
// target PostgreSQL instance — pg_settings rows, table/index statistics, and
// pg_stat_statements rows — plus the Provider contract that fetches them.
package snapshot

import (
	"strconv"
	"strings"

	"github.com/flanksource/postgres/pkg/units"
)

// Setting is one pg_settings row: the raw string form PostgreSQL reports,
// plus enough metadata to resolve it to a typed quantity. Rules never parse
// raw_value themselves; they go through the typed view methods below, so a
// parse failure in one place (recorded once as a Warning) cannot silently
// diverge across rules.
type Setting struct {
	Name     string
	RawValue string
	Unit     string // pg_settings.unit: "", "8kB", "kB", "MB", "GB", "ms", "s", "min", ...
	Source   string // pg_settings.source, e.g. "default", "configuration file"
}

// Bytes interprets the setting as a byte quantity using the pg_settings
// raw_value+unit convention. blockSize resolves the "8kB" block-count unit
// (see Snapshot.BlockSize). ok is false when the setting is not numeric or
// carries a unit this package does not recognize.
func (s Setting) Bytes(blockSize uint64) (size units.Size, ok bool) {
	v, err := units.ParseSettingSize(s.RawValue, s.Unit, blockSize)
	if err != nil {
		return 0, false
	}
	return units.Size(v), true
}

// Duration interprets the setting as a time quantity.
func (s Setting) Duration() (d units.Duration, ok bool) {
	v, err := units.ParseSettingDuration(s.RawValue, s.Unit)
	if err != nil {
		return 0, false
	}
	return units.Duration(v), true
}

// Ratio interprets the setting as a bare decimal GUC.
func (s Setting) Ratio() (r units.Ratio, ok bool) {
	v, err := units.ParseRatio(s.RawValue)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Bool interprets the setting as a PostgreSQL boolean GUC.
func (s Setting) Bool() (b units.Bool, ok bool) {
	v, err := units.ParseBool(s.RawValue)
	if err != nil {
		return false, false
	}
	return v, true
}

// Int interprets the setting as a bare (unitless) integer, the form used by
// e.g. max_connections or autovacuum_max_workers. Unlike Bytes, negative
// values parse successfully, since several GUCs (autovacuum_vacuum_cost_limit,
// autovacuum_work_mem, log_min_duration_statement) use -1 as a sentinel.
func (s Setting) Int() (n int64, ok bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s.RawValue), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Settings indexes Setting rows by name for rule lookups.
type Settings map[string]Setting

// NewSettings builds a Settings index from a slice of rows, the shape a
// Provider returns.
func NewSettings(rows []Setting) Settings {
	m := make(Settings, len(rows))
	for _, row := range rows {
		m[row.Name] = row
	}
	return m
}

// Get looks up a setting by name.
func (s Settings) Get(name string) (Setting, bool) {
	v, ok := s[name]
	return v, ok
}
