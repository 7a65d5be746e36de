// Package suggestion defines the Report data model the engine produces:
// Suggestion (configuration recommendations), Finding (table/index health),
// the workload section, and the ordering rules that make a Report
// deterministic.
package suggestion

import "sort"

// Level is a suggestion's severity, totally ordered Critical > Important >
// Recommended > Info.
type Level int

const (
	Info Level = iota
	Recommended
	Important
	Critical
)

func (l Level) String() string {
	switch l {
	case Critical:
		return "Critical"
	case Important:
		return "Important"
	case Recommended:
		return "Recommended"
	default:
		return "Info"
	}
}

// Badge returns the Markdown emoji badge for the level.
func (l Level) Badge() string {
	switch l {
	case Critical:
		return "🔴 Critical"
	case Important:
		return "🟠 Important"
	case Recommended:
		return "🟡 Recommended"
	default:
		return "ℹ️ Info"
	}
}

// Category groups suggestions and findings into the families the report
// sections iterate in order.
type Category int

const (
	Memory Category = iota
	Concurrency
	WAL
	Planner
	Autovacuum
	Logging
	TableIndexHealth
	Workload
)

var categoryNames = [...]string{
	"Memory", "Concurrency", "WAL", "Planner", "Autovacuum", "Logging",
	"TableIndexHealth", "Workload",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// Suggestion is one configuration recommendation. At most one Suggestion
// per id appears in a Report.
type Suggestion struct {
	ID           string
	Category     Category
	Level        Level
	Parameter    string
	Current      string // formatted with the same unit as Recommended
	Recommended  string
	Rationale    string
	EvidenceRefs []string
}

// FindingKind tags the variant of a table/index health Finding.
type FindingKind int

const (
	BloatedTable FindingKind = iota
	SeqScanHotspot
	UnusedIndex
	LowSelectivityIndex
	FailedIndexOnlyScan
)

func (k FindingKind) String() string {
	switch k {
	case BloatedTable:
		return "BloatedTable"
	case SeqScanHotspot:
		return "SeqScanHotspot"
	case UnusedIndex:
		return "UnusedIndex"
	case LowSelectivityIndex:
		return "LowSelectivityIndex"
	case FailedIndexOnlyScan:
		return "FailedIndexOnlyScan"
	default:
		return "Unknown"
	}
}

// Finding is one table/index health observation.
type Finding struct {
	Kind         FindingKind
	Schema       string
	Relation     string
	Index        string // empty for table-level findings
	Level        Level
	SizeBytes    int64
	Metrics      map[string]string // rendered metric values, e.g. "dead_tup_ratio": "0.30"
	Rationale    string
	EvidenceRefs []string
	// LinkedFingerprints cross-references workload candidates that
	// correlate with this finding (SeqScanHotspot <-> proposed index).
	LinkedFingerprints []string
}

// QualifiedRelation returns "schema.relation" for ordering and display.
func (f Finding) QualifiedRelation() string {
	return f.Schema + "." + f.Relation
}

// Warning is a non-fatal, recorded condition: a setting that failed to
// parse, a workload statement that failed to parse, an unavailable
// optional snapshot, or a compute profile fallback.
type Warning struct {
	ID      string
	Message string
	Scope   string // e.g. a setting name or statement fingerprint; optional
}

// IndexCandidateKind distinguishes a plain B-tree proposal from one
// carrying INCLUDE columns.
type IndexCandidateKind int

const (
	BTree IndexCandidateKind = iota
	BTreeInclude
)

func (k IndexCandidateKind) String() string {
	if k == BTreeInclude {
		return "btree+include"
	}
	return "btree"
}

// IndexCandidate is a proposed index derived from workload analysis.
type IndexCandidate struct {
	Schema             string
	Table              string
	Columns            []string // ordered: equality, then range, then order-by
	IncludeColumns     []string
	Kind               IndexCandidateKind
	SourceFingerprints []string
	EstBenefitMs       float64
}

// WorkloadRecord is one ranked statement plus its derived parse results.
type WorkloadRecord struct {
	Fingerprint      string
	QueryText        string
	Calls            int64
	TotalMs          float64
	MeanMs           float64
	Rows             int64
	SharedBlksRead   int64
	SharedBlksHit    int64
	TempBlksWritten  int64
	ParsedPredicates map[string][]string // "schema.table" -> columns
	ParseError       string
}

// WorkloadSection is the optional workload-analysis part of a Report.
type WorkloadSection struct {
	Records          []WorkloadRecord
	ProposedIndexes  []IndexCandidate
}

// Report is the complete output of one analysis run.
type Report struct {
	Suggestions []Suggestion
	Findings    []Finding
	Workload    *WorkloadSection
	Warnings    []Warning
}

// SortSuggestions orders suggestions by category (declaration order), then
// level descending, then id — the ordering every Reporter and test relies
// on for determinism.
func SortSuggestions(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Category != s[j].Category {
			return s[i].Category < s[j].Category
		}
		if s[i].Level != s[j].Level {
			return s[i].Level > s[j].Level
		}
		return s[i].ID < s[j].ID
	})
}

// SortFindings orders findings by level descending, then size descending,
// then schema.relation lexically.
func SortFindings(f []Finding) {
	sort.SliceStable(f, func(i, j int) bool {
		if f[i].Level != f[j].Level {
			return f[i].Level > f[j].Level
		}
		if f[i].SizeBytes != f[j].SizeBytes {
			return f[i].SizeBytes > f[j].SizeBytes
		}
		return f[i].QualifiedRelation() < f[j].QualifiedRelation()
	})
}
