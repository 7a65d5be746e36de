package rules

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/units"
)

// settingsSnapshot builds pg_settings rows from combined literals such as
// "128MB", splitting the trailing unit into Setting.Unit the way pg_settings
// reports it; unitless values ("4.0", "-1", "200") are stored as-is.
func settingsSnapshot(kv map[string]string) snapshot.Snapshot {
	rows := make([]snapshot.Setting, 0, len(kv))
	for name, raw := range kv {
		value, unit := raw, ""
		if i := strings.IndexFunc(raw, unicode.IsLetter); i > 0 {
			value, unit = raw[:i], raw[i:]
		}
		rows = append(rows, snapshot.Setting{Name: name, RawValue: value, Unit: unit})
	}
	return snapshot.Snapshot{Settings: snapshot.NewSettings(rows)}
}

func findByID(t *testing.T, id string, snap snapshot.Snapshot, p profile.Profile) *suggestion.Suggestion {
	t.Helper()
	for _, r := range All() {
		if r.ID != id {
			continue
		}
		s, err := r.Run(snap, p)
		// ErrSettingUnparseable accompanies the Info suggestion a rule emits
		// when it skips; the engine turns it into a warning, not a failure.
		if err != nil && !errors.Is(err, ErrSettingUnparseable) {
			t.Fatalf("rule %s returned error: %v", id, err)
		}
		return s
	}
	t.Fatalf("no rule registered with id %s", id)
	return nil
}

func TestScenarioMediumOLTPDefaults(t *testing.T) {
	p := profile.Profile{VCPUs: 8, RAMBytes: profileRAM(64), WorkloadHint: profile.OLTP}
	snap := settingsSnapshot(map[string]string{
		"shared_buffers":        "128MB",
		"effective_cache_size":  "4GB",
		"work_mem":              "4MB",
		"random_page_cost":      "4.0",
		"max_wal_size":          "1GB",
		"autovacuum_vacuum_cost_limit": "-1",
	})

	if s := findByID(t, "planner.random_page_cost", snap, p); s.Level != suggestion.Critical {
		t.Errorf("expected Critical random_page_cost, got %s", s.Level)
	}
	if s := findByID(t, "memory.shared_buffers", snap, p); s.Level != suggestion.Important {
		t.Errorf("expected Important shared_buffers, got %s", s.Level)
	}
	if s := findByID(t, "memory.effective_cache_size", snap, p); s.Level != suggestion.Important {
		t.Errorf("expected Important effective_cache_size, got %s", s.Level)
	}
	if s := findByID(t, "wal.max_wal_size", snap, p); s.Level != suggestion.Important {
		t.Errorf("expected Important max_wal_size, got %s", s.Level)
	}
	if s := findByID(t, "autovacuum.vacuum_cost_limit", snap, p); s.Level != suggestion.Important {
		t.Errorf("expected Important autovacuum_vacuum_cost_limit, got %s", s.Level)
	}
}

func TestScenarioOOMRisk(t *testing.T) {
	p := profile.Profile{VCPUs: 8, RAMBytes: profileRAM(64), WorkloadHint: profile.Mixed}
	snap := settingsSnapshot(map[string]string{
		"work_mem":        "512MB",
		"max_connections": "200",
	})

	s := findByID(t, "memory.work_mem", snap, p)
	if s.Level != suggestion.Critical {
		t.Fatalf("expected Critical work_mem, got %s", s.Level)
	}
}

func TestWorkMemExactlyHalfRAMDoesNotFireCritical(t *testing.T) {
	// work_mem * max_connections == 50% RAM exactly -> Critical must NOT fire.
	p := profile.Profile{VCPUs: 8, RAMBytes: profileRAM(64), WorkloadHint: profile.Mixed}
	// half of 64GB = 32GB; 256 * work_mem = 32GB => work_mem = 131072kB (128MB) exactly.
	snap := settingsSnapshot(map[string]string{
		"work_mem":        "131072kB",
		"max_connections": "256",
	})

	s := findByID(t, "memory.work_mem", snap, p)
	if s != nil && s.Level == suggestion.Critical {
		t.Error("expected Critical to NOT fire at the exact 50% RAM boundary")
	}
}

func TestRandomPageCostBoundary(t *testing.T) {
	p := profile.Profile{VCPUs: 8, RAMBytes: profileRAM(64), WorkloadHint: profile.Mixed}

	snap30 := settingsSnapshot(map[string]string{"random_page_cost": "3.0"})
	if s := findByID(t, "planner.random_page_cost", snap30, p); s.Level != suggestion.Critical {
		t.Errorf("expected Critical at 3.0, got %s", s.Level)
	}

	snap29 := settingsSnapshot(map[string]string{"random_page_cost": "2.9"})
	if s := findByID(t, "planner.random_page_cost", snap29, p); s.Level != suggestion.Important {
		t.Errorf("expected Important at 2.9, got %s", s.Level)
	}
}

func TestMissingSettingSkipsRuleAsInfo(t *testing.T) {
	p := profile.Default()
	snap := settingsSnapshot(map[string]string{})
	s := findByID(t, "memory.shared_buffers", snap, p)
	if s.Level != suggestion.Info {
		t.Errorf("expected Info for missing setting, got %s", s.Level)
	}
}

func TestNoDuplicateRuleIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range All() {
		if seen[r.ID] {
			t.Errorf("duplicate rule id: %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func profileRAM(gb uint64) units.Size {
	return units.Size(gb * units.GB)
}
