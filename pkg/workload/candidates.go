package workload

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/flanksource/postgres/pkg/suggestion"
)

// candidateKey identifies a proposed index for dedup purposes: the table
// plus its ordered column list plus its INCLUDE set (order-independent).
type candidateKey struct {
	table   string
	columns string // ordered, joined with ","
	include string // sorted, joined with ","
}

// buildCandidates turns one statement's parsed predicate columns into zero
// or more proposed indexes: equality columns lead, range columns follow,
// ORDER BY columns are appended last. A table with only ORDER BY references
// and no predicate does not produce a candidate — sorting alone rarely
// justifies a new index.
func buildCandidates(refs []columnRef) map[string]*suggestion.IndexCandidate {
	byTable := map[string][]columnRef{}
	for _, r := range refs {
		key := tableKey(r.Schema, r.Table)
		byTable[key] = append(byTable[key], r)
	}

	out := map[string]*suggestion.IndexCandidate{}
	for key, tableRefs := range byTable {
		cols := orderColumns(tableRefs)
		if len(cols) == 0 {
			continue
		}
		schema, table := splitTableKey(key)
		out[key] = &suggestion.IndexCandidate{
			Schema:  schema,
			Table:   table,
			Columns: cols,
			Kind:    suggestion.BTree,
		}
	}
	return out
}

// buildIncludeCandidates proposes an INCLUDE variant of each base candidate
// when the statement projects columns that aren't already part of the
// index's key and the predicate is selective enough to be worth it —
// marked, per spec, by an equality predicate on the table or a LIMIT
// clause on the statement. Tables with no base candidate (no WHERE/JOIN
// predicate at all) never get an INCLUDE proposal: sorting/projecting
// alone doesn't justify a new index.
func buildIncludeCandidates(base map[string]*suggestion.IndexCandidate, refs, projected []columnRef, hasLimit bool) []*suggestion.IndexCandidate {
	hasEquality := map[string]bool{}
	for _, r := range refs {
		if r.Kind == predEquality {
			hasEquality[tableKey(r.Schema, r.Table)] = true
		}
	}

	byTable := map[string][]string{}
	seen := map[string]map[string]bool{}
	for _, p := range projected {
		if p.Column == "" {
			continue
		}
		key := tableKey(p.Schema, p.Table)
		if seen[key] == nil {
			seen[key] = map[string]bool{}
		}
		if seen[key][p.Column] {
			continue
		}
		seen[key][p.Column] = true
		byTable[key] = append(byTable[key], p.Column)
	}

	var out []*suggestion.IndexCandidate
	for key, cols := range byTable {
		base, ok := base[key]
		if !ok {
			continue
		}
		if !hasEquality[key] && !hasLimit {
			continue
		}

		keyCols := map[string]bool{}
		for _, c := range base.Columns {
			keyCols[c] = true
		}
		var include []string
		for _, c := range cols {
			if !keyCols[c] {
				include = append(include, c)
			}
		}
		if len(include) == 0 {
			continue
		}

		out = append(out, &suggestion.IndexCandidate{
			Schema:         base.Schema,
			Table:          base.Table,
			Columns:        base.Columns,
			IncludeColumns: include,
			Kind:           suggestion.BTreeInclude,
		})
	}
	return out
}

// orderColumns dedups and orders a table's column references: equality
// first, range second, order-by last, each group deduped preserving
// first-seen order. A column already placed by an earlier group is not
// repeated by a later one.
func orderColumns(refs []columnRef) []string {
	var eq, rng, ord []string
	seen := map[string]bool{}

	add := func(dst *[]string, col string) {
		if col == "" || seen[col] {
			return
		}
		seen[col] = true
		*dst = append(*dst, col)
	}

	for _, r := range refs {
		if r.Kind == predEquality {
			add(&eq, r.Column)
		}
	}
	for _, r := range refs {
		if r.Kind == predRange {
			add(&rng, r.Column)
		}
	}
	for _, r := range refs {
		if r.Kind == predOrderBy {
			add(&ord, r.Column)
		}
	}

	if len(eq) == 0 && len(rng) == 0 {
		return nil
	}

	out := make([]string, 0, len(eq)+len(rng)+len(ord))
	out = append(out, eq...)
	out = append(out, rng...)
	out = append(out, ord...)
	return out
}

// mergeCandidate folds a new per-statement candidate into the accumulated
// map by dedup key, merging source fingerprints and accumulating estimated
// benefit (sum of total_exec_time across contributing statements).
func mergeCandidate(acc map[candidateKey]*suggestion.IndexCandidate, c *suggestion.IndexCandidate, fingerprint string, execMs float64) {
	key := candidateKey{
		table:   c.Schema + "." + c.Table,
		columns: strings.Join(c.Columns, ","),
		include: strings.Join(sortedCopy(c.IncludeColumns), ","),
	}

	existing, ok := acc[key]
	if !ok {
		clone := *c
		clone.SourceFingerprints = []string{fingerprint}
		clone.EstBenefitMs = execMs
		acc[key] = &clone
		return
	}

	existing.SourceFingerprints = appendUnique(existing.SourceFingerprints, fingerprint)
	existing.EstBenefitMs += execMs
}

func sortedCopy(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

func appendUnique(s []string, v string) []string {
	if lo.Contains(s, v) {
		return s
	}
	return append(s, v)
}

// sortCandidates orders proposed indexes by estimated benefit descending,
// then schema.table.columns lexically for a deterministic tie-break.
func sortCandidates(cands []suggestion.IndexCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].EstBenefitMs != cands[j].EstBenefitMs {
			return cands[i].EstBenefitMs > cands[j].EstBenefitMs
		}
		return candidateSortKey(cands[i]) < candidateSortKey(cands[j])
	})
}

func candidateSortKey(c suggestion.IndexCandidate) string {
	return c.Schema + "." + c.Table + "." + strings.Join(c.Columns, ",")
}
