package rules

import (
	"errors"
	"fmt"

	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/units"
)

// ErrSettingUnparseable marks the degraded-but-not-fatal case where a rule's
// dependent setting was absent or failed to convert to its typed view (spec
// §3/§7): the rule still emits an Info suggestion via skippedInfo, and the
// engine turns this sentinel into a Report warning rather than dropping the
// rule's output the way an unexpected Run error would.
var ErrSettingUnparseable = errors.New("rules: setting missing or unparseable")

// blockSize resolves the snapshot's reported block size, defaulting to
// units.DefaultBlockSize — Open Question (a).
func blockSize(snap snapshot.Snapshot) uint64 {
	if bs := snap.BlockSize(); bs > 0 {
		return bs
	}
	return units.DefaultBlockSize
}

// settingSize fetches a byte-valued setting by name.
func settingSize(snap snapshot.Snapshot, name string) (units.Size, bool) {
	s, ok := snap.Settings.Get(name)
	if !ok {
		return 0, false
	}
	return s.Bytes(blockSize(snap))
}

func settingDuration(snap snapshot.Snapshot, name string) (units.Duration, bool) {
	s, ok := snap.Settings.Get(name)
	if !ok {
		return 0, false
	}
	return s.Duration()
}

func settingRatio(snap snapshot.Snapshot, name string) (units.Ratio, bool) {
	s, ok := snap.Settings.Get(name)
	if !ok {
		return 0, false
	}
	return s.Ratio()
}

func settingBool(snap snapshot.Snapshot, name string) (units.Bool, bool) {
	s, ok := snap.Settings.Get(name)
	if !ok {
		return false, false
	}
	return s.Bool()
}

func settingInt(snap snapshot.Snapshot, name string) (int64, bool) {
	s, ok := snap.Settings.Get(name)
	if !ok {
		return 0, false
	}
	return s.Int()
}

func fmtSize(s units.Size) string     { return s.PostgreSQLString() }
func fmtDuration(d units.Duration) string { return d.PostgreSQLString() }
func fmtRatio(r units.Ratio) string   { return r.String() }
func fmtInt(n int64) string           { return fmt.Sprintf("%d", n) }
