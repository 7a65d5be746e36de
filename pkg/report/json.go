package report

import (
	"encoding/json"

	"github.com/flanksource/postgres/pkg/suggestion"
)

type jsonSuggestion struct {
	ID           string   `json:"id"`
	Level        string   `json:"level"`
	Parameter    string   `json:"parameter,omitempty"`
	Current      string   `json:"current,omitempty"`
	Recommended  string   `json:"recommended,omitempty"`
	Rationale    string   `json:"rationale"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

type jsonCategory struct {
	Category    string           `json:"category"`
	Suggestions []jsonSuggestion `json:"suggestions"`
}

type jsonFinding struct {
	Kind               string            `json:"kind"`
	Schema             string            `json:"schema"`
	Relation           string            `json:"relation"`
	Index              string            `json:"index,omitempty"`
	Level              string            `json:"level"`
	SizeBytes          int64             `json:"size_bytes"`
	Metrics            map[string]string `json:"metrics,omitempty"`
	Rationale          string            `json:"rationale"`
	EvidenceRefs       []string          `json:"evidence_refs,omitempty"`
	LinkedFingerprints []string          `json:"linked_fingerprints,omitempty"`
}

type jsonIndexCandidate struct {
	Schema             string   `json:"schema"`
	Table              string   `json:"table"`
	Columns            []string `json:"columns"`
	IncludeColumns     []string `json:"include_columns,omitempty"`
	Kind               string   `json:"kind"`
	SourceFingerprints []string `json:"source_fingerprints"`
	EstBenefitMs       float64  `json:"est_benefit_ms"`
}

type jsonWorkloadRecord struct {
	Fingerprint      string              `json:"fingerprint"`
	QueryText        string              `json:"query_text"`
	Calls            int64               `json:"calls"`
	TotalMs          float64             `json:"total_ms"`
	MeanMs           float64             `json:"mean_ms"`
	Rows             int64               `json:"rows"`
	SharedBlksRead   int64               `json:"shared_blks_read"`
	SharedBlksHit    int64               `json:"shared_blks_hit"`
	TempBlksWritten  int64               `json:"temp_blks_written"`
	ParsedPredicates map[string][]string `json:"parsed_predicates,omitempty"`
	ParseError       string              `json:"parse_error,omitempty"`
}

type jsonWorkload struct {
	Records         []jsonWorkloadRecord `json:"records"`
	ProposedIndexes []jsonIndexCandidate `json:"proposed_indexes"`
}

type jsonWarning struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Scope   string `json:"scope,omitempty"`
}

type jsonReport struct {
	Categories []jsonCategory `json:"categories"`
	Findings   []jsonFinding  `json:"findings"`
	Workload   *jsonWorkload  `json:"workload,omitempty"`
	Warnings   []jsonWarning  `json:"warnings"`
}

// ToJSON renders a Report with a stable, category-keyed schema: integer
// byte counts, decimal millisecond durations, and a deterministic field
// order driven by struct tags rather than map iteration.
func ToJSON(r suggestion.Report) (string, error) {
	grouped := groupByCategory(r.Suggestions)

	out := jsonReport{
		Categories: make([]jsonCategory, 0, len(categoriesInOrder)),
		Findings:   make([]jsonFinding, 0, len(r.Findings)),
		Warnings:   make([]jsonWarning, 0, len(r.Warnings)),
	}

	for _, cat := range categoriesInOrder {
		suggestions := grouped[cat]
		jsonSuggestions := make([]jsonSuggestion, 0, len(suggestions))
		for _, s := range suggestions {
			jsonSuggestions = append(jsonSuggestions, jsonSuggestion{
				ID: s.ID, Level: s.Level.String(), Parameter: s.Parameter,
				Current: s.Current, Recommended: s.Recommended,
				Rationale: s.Rationale, EvidenceRefs: s.EvidenceRefs,
			})
		}
		out.Categories = append(out.Categories, jsonCategory{
			Category: cat.String(), Suggestions: jsonSuggestions,
		})
	}

	for _, f := range r.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			Kind: f.Kind.String(), Schema: f.Schema, Relation: f.Relation, Index: f.Index,
			Level: f.Level.String(), SizeBytes: f.SizeBytes, Metrics: f.Metrics,
			Rationale: f.Rationale, EvidenceRefs: f.EvidenceRefs,
			LinkedFingerprints: f.LinkedFingerprints,
		})
	}

	if r.Workload != nil {
		w := &jsonWorkload{
			Records:         make([]jsonWorkloadRecord, 0, len(r.Workload.Records)),
			ProposedIndexes: make([]jsonIndexCandidate, 0, len(r.Workload.ProposedIndexes)),
		}
		for _, rec := range r.Workload.Records {
			w.Records = append(w.Records, jsonWorkloadRecord{
				Fingerprint: rec.Fingerprint, QueryText: rec.QueryText, Calls: rec.Calls,
				TotalMs: rec.TotalMs, MeanMs: rec.MeanMs, Rows: rec.Rows,
				SharedBlksRead: rec.SharedBlksRead, SharedBlksHit: rec.SharedBlksHit,
				TempBlksWritten: rec.TempBlksWritten, ParsedPredicates: rec.ParsedPredicates,
				ParseError: rec.ParseError,
			})
		}
		for _, c := range r.Workload.ProposedIndexes {
			w.ProposedIndexes = append(w.ProposedIndexes, jsonIndexCandidate{
				Schema: c.Schema, Table: c.Table, Columns: c.Columns,
				IncludeColumns: c.IncludeColumns, Kind: c.Kind.String(),
				SourceFingerprints: c.SourceFingerprints, EstBenefitMs: c.EstBenefitMs,
			})
		}
		out.Workload = w
	}

	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, jsonWarning{ID: w.ID, Message: w.Message, Scope: w.Scope})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
