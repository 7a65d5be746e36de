// Package profile models the declared compute shape of a target PostgreSQL
// instance — vCPU count, RAM, and workload hint — the way managed instances
// require it since system stats (cgroup limits, host memory) are usually
// hidden from the connecting client.
package profile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flanksource/postgres/pkg/units"
)

// WorkloadHint classifies the expected query mix, used by rules that trade
// off latency against throughput (e.g. checkpoint pacing).
type WorkloadHint string

const (
	OLTP  WorkloadHint = "oltp"
	OLAP  WorkloadHint = "olap"
	Mixed WorkloadHint = "mixed"
)

// Tier is a named preset covering the common small/medium/large shapes.
type Tier string

const (
	Small  Tier = "small"
	Medium Tier = "medium"
	Large  Tier = "large"
)

// tierPresets gives (vcpus, ram) for each named tier. Values are grounded in
// the spec's preset table, not a formula, so they are kept as a simple map
// rather than derived.
var tierPresets = map[Tier]Profile{
	Small:  {VCPUs: 2, RAMBytes: 16 * units.GB},
	Medium: {VCPUs: 8, RAMBytes: 64 * units.GB},
	Large:  {VCPUs: 32, RAMBytes: 256 * units.GB},
}

// customProfileRegex matches the free-form "<N>vCPU-<M>GB" syntax,
// case-insensitively and tolerant of internal whitespace.
var customProfileRegex = regexp.MustCompile(`(?i)^\s*(\d+)\s*vCPU\s*-\s*(\d+)\s*GB\s*$`)

// Profile is the declared compute shape of a target: vCPU count, RAM in
// bytes, and the expected workload mix. The engine treats it as an input,
// never something it measures itself.
type Profile struct {
	VCPUs        uint32
	RAMBytes     units.Size
	WorkloadHint WorkloadHint
}

// Default is the fallback profile used whenever resolution fails: a medium
// tier with a mixed workload hint.
func Default() Profile {
	p := tierPresets[Medium]
	p.WorkloadHint = Mixed
	return p
}

// Resolve builds a Profile from the CLI/config triad of optional inputs.
// Resolution order is explicit custom string > tier name > defaults. An
// unknown tier name or malformed custom string never fails outright: it
// returns the medium default profile plus a non-nil warning describing why.
func Resolve(custom, tierName, workloadHint string) (Profile, error) {
	hint, hintErr := parseWorkloadHint(workloadHint)

	if strings.TrimSpace(custom) != "" {
		p, err := parseCustom(custom)
		if err != nil {
			d := Default()
			if hintErr == nil {
				d.WorkloadHint = hint
			}
			return d, fmt.Errorf("invalid compute profile %q, falling back to medium: %w", custom, err)
		}
		p.WorkloadHint = hint
		if hintErr != nil {
			return p, hintErr
		}
		return p, nil
	}

	if strings.TrimSpace(tierName) != "" {
		tier := Tier(strings.ToLower(strings.TrimSpace(tierName)))
		preset, ok := tierPresets[tier]
		if !ok {
			d := Default()
			if hintErr == nil {
				d.WorkloadHint = hint
			}
			return d, fmt.Errorf("unknown compute tier %q, falling back to medium", tierName)
		}
		preset.WorkloadHint = hint
		if hintErr != nil {
			return preset, hintErr
		}
		return preset, nil
	}

	d := Default()
	if hintErr == nil {
		d.WorkloadHint = hint
	}
	return d, hintErr
}

func parseWorkloadHint(s string) (WorkloadHint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Mixed, nil
	case "oltp":
		return OLTP, nil
	case "olap":
		return OLAP, nil
	case "mixed":
		return Mixed, nil
	default:
		return Mixed, fmt.Errorf("unknown workload hint %q, falling back to mixed", s)
	}
}

func parseCustom(s string) (Profile, error) {
	matches := customProfileRegex.FindStringSubmatch(s)
	if matches == nil {
		return Profile{}, fmt.Errorf("expected tier name or \"<N>vCPU-<M>GB\", got %q", s)
	}

	vcpus, err := strconv.ParseUint(matches[1], 10, 32)
	if err != nil || vcpus == 0 {
		return Profile{}, fmt.Errorf("vCPU count must be a positive integer, got %q", matches[1])
	}

	ramGB, err := strconv.ParseUint(matches[2], 10, 64)
	if err != nil || ramGB == 0 {
		return Profile{}, fmt.Errorf("RAM must be a positive integer GB value, got %q", matches[2])
	}

	return Profile{
		VCPUs:    uint32(vcpus),
		RAMBytes: units.Size(ramGB * units.GB),
	}, nil
}

// RAMGiBDisplay returns RAM as GiB with one decimal, the display form used
// throughout reports and the CLI.
func (p Profile) RAMGiBDisplay() string {
	return fmt.Sprintf("%.1f", p.RAMBytes.GBFloat())
}

// PercentOfRAM returns the byte quantity corresponding to a fraction of
// declared RAM, e.g. PercentOfRAM(0.25) for a quarter of RAM.
func (p Profile) PercentOfRAM(fraction float64) units.Size {
	return p.RAMBytes.Mul(fraction)
}

// HalfVCPUs returns half the declared vCPU count, floor-divided and never
// less than 1.
func (p Profile) HalfVCPUs() uint32 {
	half := p.VCPUs / 2
	if half < 1 {
		return 1
	}
	return half
}

func (p Profile) String() string {
	return fmt.Sprintf("%d vCPU / %s GiB (%s)", p.VCPUs, p.RAMGiBDisplay(), p.WorkloadHint)
}
