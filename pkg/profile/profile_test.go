package profile

import (
	"testing"

	"github.com/flanksource/postgres/pkg/units"
)

func TestResolveTierPresets(t *testing.T) {
	tests := []struct {
		tier  string
		vcpus uint32
		ramGB uint64
	}{
		{"small", 2, 16},
		{"medium", 8, 64},
		{"large", 32, 256},
		{"MEDIUM", 8, 64},
	}

	for _, test := range tests {
		p, err := Resolve("", test.tier, "")
		if err != nil {
			t.Fatalf("unexpected error for tier %q: %v", test.tier, err)
		}
		if p.VCPUs != test.vcpus {
			t.Errorf("tier %q: expected %d vcpus, got %d", test.tier, test.vcpus, p.VCPUs)
		}
		if p.RAMBytes.GB() != test.ramGB {
			t.Errorf("tier %q: expected %dGB, got %d", test.tier, test.ramGB, p.RAMBytes.GB())
		}
		if p.WorkloadHint != Mixed {
			t.Errorf("tier %q: expected default mixed workload hint, got %s", test.tier, p.WorkloadHint)
		}
	}
}

func TestResolveUnknownTierFallsBackToMedium(t *testing.T) {
	p, err := Resolve("", "gigantic", "")
	if err == nil {
		t.Fatal("expected a warning error for an unknown tier")
	}
	if p.VCPUs != 8 || p.RAMBytes.GB() != 64 {
		t.Errorf("expected medium fallback, got %+v", p)
	}
}

func TestResolveCustomProfile(t *testing.T) {
	tests := []struct {
		input string
		vcpus uint32
		ramGB uint64
	}{
		{"4vCPU-32GB", 4, 32},
		{"4VCPU-32GB", 4, 32},
		{" 4 vCPU - 32 GB ", 4, 32},
		{"16vcpu-128gb", 16, 128},
	}

	for _, test := range tests {
		p, err := Resolve(test.input, "", "")
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", test.input, err)
		}
		if p.VCPUs != test.vcpus || p.RAMBytes.GB() != test.ramGB {
			t.Errorf("%q: expected %d vCPU/%dGB, got %d vCPU/%dGB",
				test.input, test.vcpus, test.ramGB, p.VCPUs, p.RAMBytes.GB())
		}
	}
}

func TestResolveCustomProfileRejectsNonPositive(t *testing.T) {
	invalid := []string{"0vCPU-32GB", "4vCPU-0GB", "-4vCPU-32GB", "not a profile"}
	for _, input := range invalid {
		p, err := Resolve(input, "", "")
		if err == nil {
			t.Errorf("expected error for invalid custom profile %q", input)
		}
		if p.VCPUs != 8 || p.RAMBytes.GB() != 64 {
			t.Errorf("%q: expected medium fallback, got %+v", input, p)
		}
	}
}

func TestResolveCustomTakesPrecedenceOverTier(t *testing.T) {
	p, err := Resolve("4vCPU-32GB", "large", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.VCPUs != 4 || p.RAMBytes.GB() != 32 {
		t.Errorf("expected custom profile to win over tier, got %+v", p)
	}
}

func TestResolveWorkloadHint(t *testing.T) {
	tests := []struct {
		hint     string
		expected WorkloadHint
	}{
		{"oltp", OLTP},
		{"OLTP", OLTP},
		{"olap", OLAP},
		{"mixed", Mixed},
		{"", Mixed},
	}

	for _, test := range tests {
		p, err := Resolve("", "medium", test.hint)
		if err != nil {
			t.Fatalf("unexpected error for hint %q: %v", test.hint, err)
		}
		if p.WorkloadHint != test.expected {
			t.Errorf("hint %q: expected %s, got %s", test.hint, test.expected, p.WorkloadHint)
		}
	}
}

func TestResolveUnknownWorkloadHintFallsBackToMixed(t *testing.T) {
	p, err := Resolve("", "medium", "batch")
	if err == nil {
		t.Fatal("expected a warning error for an unknown workload hint")
	}
	if p.WorkloadHint != Mixed {
		t.Errorf("expected mixed fallback, got %s", p.WorkloadHint)
	}
}

func TestResolveDefaultsToMedium(t *testing.T) {
	p, err := Resolve("", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.VCPUs != 8 || p.RAMBytes.GB() != 64 || p.WorkloadHint != Mixed {
		t.Errorf("expected medium/mixed default, got %+v", p)
	}
}

func TestPercentOfRAM(t *testing.T) {
	p := Profile{VCPUs: 8, RAMBytes: units.Size(64 * units.GB)}
	quarter := p.PercentOfRAM(0.25)
	if quarter.GB() != 16 {
		t.Errorf("expected 16GB (25%% of 64GB), got %d", quarter.GB())
	}
}

func TestHalfVCPUs(t *testing.T) {
	tests := []struct {
		vcpus    uint32
		expected uint32
	}{
		{1, 1},
		{2, 1},
		{3, 1},
		{8, 4},
		{32, 16},
	}

	for _, test := range tests {
		p := Profile{VCPUs: test.vcpus}
		if got := p.HalfVCPUs(); got != test.expected {
			t.Errorf("vcpus=%d: expected half=%d, got %d", test.vcpus, test.expected, got)
		}
	}
}

func TestRAMGiBDisplay(t *testing.T) {
	p := Profile{RAMBytes: units.Size(uint64(1.5 * float64(units.GB)))}
	if p.RAMGiBDisplay() != "1.5" {
		t.Errorf("expected \"1.5\", got %q", p.RAMGiBDisplay())
	}
}

func TestDetectLocalNeverReturnsZero(t *testing.T) {
	p := DetectLocal()
	if p.VCPUs < 1 {
		t.Error("expected at least 1 vCPU from local detection")
	}
	if p.RAMBytes.Bytes() < units.GB {
		t.Error("expected at least 1GB of RAM from local detection")
	}
	if p.WorkloadHint != Mixed {
		t.Error("expected mixed workload hint from local detection")
	}
}
