package snapshot

import "testing"

func TestSettingBytes(t *testing.T) {
	s := Setting{Name: "shared_buffers", RawValue: "16384", Unit: "8kB"}
	size, ok := s.Bytes(8192)
	if !ok {
		t.Fatal("expected bytes conversion to succeed")
	}
	if size.Bytes() != 128*1024*1024 {
		t.Errorf("expected 128MB, got %d", size.Bytes())
	}
}

func TestSettingBytesInvalid(t *testing.T) {
	s := Setting{Name: "bad", RawValue: "not-a-number", Unit: "MB"}
	if _, ok := s.Bytes(8192); ok {
		t.Error("expected conversion to fail for non-numeric raw_value")
	}
}

func TestSettingDuration(t *testing.T) {
	s := Setting{Name: "checkpoint_timeout", RawValue: "300", Unit: "s"}
	d, ok := s.Duration()
	if !ok {
		t.Fatal("expected duration conversion to succeed")
	}
	if d.Seconds() != 300 {
		t.Errorf("expected 300s, got %v", d.Seconds())
	}
}

func TestSettingRatio(t *testing.T) {
	s := Setting{Name: "checkpoint_completion_target", RawValue: "0.9"}
	r, ok := s.Ratio()
	if !ok {
		t.Fatal("expected ratio conversion to succeed")
	}
	if r.Float64() != 0.9 {
		t.Errorf("expected 0.9, got %v", r.Float64())
	}
}

func TestSettingBool(t *testing.T) {
	s := Setting{Name: "log_lock_waits", RawValue: "on"}
	b, ok := s.Bool()
	if !ok {
		t.Fatal("expected bool conversion to succeed")
	}
	if !b.Bool() {
		t.Error("expected true")
	}
}

func TestSettingInt(t *testing.T) {
	s := Setting{Name: "max_connections", RawValue: "100"}
	n, ok := s.Int()
	if !ok {
		t.Fatal("expected int conversion to succeed")
	}
	if n != 100 {
		t.Errorf("expected 100, got %d", n)
	}
}

func TestSettingsGet(t *testing.T) {
	settings := NewSettings([]Setting{
		{Name: "shared_buffers", RawValue: "16384", Unit: "8kB"},
		{Name: "max_connections", RawValue: "100"},
	})

	if _, ok := settings.Get("shared_buffers"); !ok {
		t.Error("expected shared_buffers to be present")
	}
	if _, ok := settings.Get("missing"); ok {
		t.Error("expected missing setting to be absent")
	}
}

func TestSnapshotBlockSizeDefaultsWhenAbsent(t *testing.T) {
	snap := Snapshot{Settings: NewSettings(nil)}
	if bs := snap.BlockSize(); bs != 0 {
		t.Errorf("expected 0 (caller substitutes default) when block_size is absent, got %d", bs)
	}
}

func TestSnapshotBlockSizeFromSettings(t *testing.T) {
	snap := Snapshot{Settings: NewSettings([]Setting{
		{Name: "block_size", RawValue: "4096"},
	})}
	if bs := snap.BlockSize(); bs != 4096 {
		t.Errorf("expected 4096, got %d", bs)
	}
}
