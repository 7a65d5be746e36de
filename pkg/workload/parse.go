package workload

import (
	"encoding/json"
	"fmt"
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v6"
)

// predicateKind distinguishes the three contexts a column reference can
// come from, driving the leading/following/appended order of a proposed
// index (spec §4.5).
type predicateKind int

const (
	predEquality predicateKind = iota
	predRange
	predOrderBy
)

// columnRef is one parsed reference to a table.column, tagged with how it
// was used.
type columnRef struct {
	Schema string // "" when unqualified; caller resolves to unknown_schema or the sole FROM table
	Table  string
	Column string
	Kind   predicateKind
}

// parseTree walks the libpg_query JSON parse tree looking for RangeVar
// (table) and ColumnRef nodes. It does its own node-kind dispatch over a
// generic map[string]interface{} rather than binding to pg_query_go's full
// protobuf types, trading a typed visitor for resilience against AST-shape
// differences across libpg_query versions.
func parseTree(sql string) ([]columnRef, string, error) {
	refs, _, sole, _, err := parseStatement(sql)
	return refs, sole, err
}

// parseStatement is the full parse result parseTree and the INCLUDE-column
// heuristic both need: predicate/order-by column references, the columns
// the statement projects (for the INCLUDE variant), the sole FROM table
// used to resolve unqualified names, and whether the statement carries a
// LIMIT clause.
func parseStatement(sql string) (refs []columnRef, projected []columnRef, sole string, hasLimit bool, err error) {
	raw, err := pgquery.ParseToJSON(sql)
	if err != nil {
		return nil, nil, "", false, fmt.Errorf("sql parse failed: %w", err)
	}

	var tree interface{}
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, nil, "", false, fmt.Errorf("sql parse tree decode failed: %w", err)
	}

	w := &walker{tables: map[string]tableRef{}}
	w.walk(tree, predEquality, false)

	if len(w.fromTables) == 1 {
		sole = w.fromTables[0]
	}

	resolve := func(r columnRef) columnRef {
		if r.Table == "" && sole != "" {
			if tr, ok := w.tables[sole]; ok {
				r.Schema, r.Table = tr.schema, tr.relname
			}
		} else if r.Table != "" {
			if tr, ok := w.tables[r.Table]; ok {
				r.Schema, r.Table = tr.schema, tr.relname
			}
		}
		return r
	}

	refs = make([]columnRef, 0, len(w.refs))
	for _, r := range w.refs {
		refs = append(refs, resolve(r))
	}

	projected = make([]columnRef, 0, len(w.projected))
	for _, r := range w.projected {
		projected = append(projected, resolve(r))
	}

	return refs, projected, sole, w.hasLimit, nil
}

type tableRef struct {
	schema  string
	relname string
}

type walker struct {
	tables     map[string]tableRef // alias/relname -> resolved table
	fromTables []string            // aliases/relnames seen as RangeVar, in order
	refs       []columnRef
	projected  []columnRef // SELECT-list columns, kept separate from refs
	hasLimit   bool
}

// walk recurses over the generic JSON tree. inOrderBy marks nodes under a
// sortClause so bare column references there are tagged predOrderBy;
// otherwise equality vs range is decided at the A_Expr level. SelectStmt is
// handled explicitly by walkSelectStmt rather than falling through to the
// generic recursion below, so a statement's targetList (the SELECT list)
// never gets folded into WHERE/JOIN/ORDER BY predicate references.
func (w *walker) walk(node interface{}, kind predicateKind, inOrderBy bool) {
	switch n := node.(type) {
	case map[string]interface{}:
		if rv, ok := n["RangeVar"].(map[string]interface{}); ok {
			w.recordRangeVar(rv)
		}
		if ss, ok := n["SelectStmt"].(map[string]interface{}); ok {
			w.walkSelectStmt(ss)
			return
		}
		if cr, ok := n["ColumnRef"].(map[string]interface{}); ok {
			w.recordColumnRef(cr, kind, inOrderBy)
		}
		if expr, ok := n["A_Expr"].(map[string]interface{}); ok {
			w.walkAExpr(expr, inOrderBy)
			return
		}
		if sortBy, ok := n["SortBy"].(map[string]interface{}); ok {
			if node, ok := sortBy["node"]; ok {
				w.walk(node, predOrderBy, true)
			}
			return
		}
		for key, v := range n {
			if key == "A_Expr" || key == "SortBy" {
				continue
			}
			w.walk(v, kind, inOrderBy)
		}
	case []interface{}:
		for _, item := range n {
			w.walk(item, kind, inOrderBy)
		}
	}
}

// walkSelectStmt dispatches a SelectStmt's fields individually: fromClause
// and whereClause feed predicate extraction (a JOIN's ON clause arrives
// nested under fromClause's JoinExpr.quals and is picked up by the generic
// A_Expr handling there), sortClause feeds ORDER BY, and targetList is
// recorded separately as projected columns rather than walked as a
// predicate context. Any other field (set-op arms, CTEs) is walked
// generically so nested SelectStmts are still discovered.
func (w *walker) walkSelectStmt(ss map[string]interface{}) {
	if from, ok := ss["fromClause"]; ok {
		w.walk(from, predEquality, false)
	}
	if where, ok := ss["whereClause"]; ok {
		w.walk(where, predEquality, false)
	}
	if sortClause, ok := ss["sortClause"]; ok {
		w.walk(sortClause, predOrderBy, true)
	}
	if tl, ok := ss["targetList"]; ok {
		w.recordTargetList(tl)
	}
	if _, ok := ss["limitCount"]; ok {
		w.hasLimit = true
	}

	for key, v := range ss {
		switch key {
		case "fromClause", "whereClause", "sortClause", "targetList", "limitCount":
			continue
		default:
			w.walk(v, predEquality, false)
		}
	}
}

// recordTargetList extracts the ColumnRefs a SELECT list projects, so the
// INCLUDE-column heuristic can see what the statement reads beyond its
// predicates. A projected "*" (A_Star) or expression yields no column name
// and is silently skipped.
func (w *walker) recordTargetList(tl interface{}) {
	items, ok := tl.([]interface{})
	if !ok {
		return
	}
	for _, item := range items {
		rt, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		resTarget, ok := rt["ResTarget"].(map[string]interface{})
		if !ok {
			continue
		}
		val, ok := resTarget["val"].(map[string]interface{})
		if !ok {
			continue
		}
		cr, ok := val["ColumnRef"].(map[string]interface{})
		if !ok {
			continue
		}
		before := len(w.refs)
		w.recordColumnRef(cr, predEquality, false)
		w.projected = append(w.projected, w.refs[before:]...)
		w.refs = w.refs[:before]
	}
}

func (w *walker) walkAExpr(expr map[string]interface{}, inOrderBy bool) {
	opKind, _ := expr["kind"].(string)
	op := aExprOperator(expr["name"])

	k := predEquality
	switch {
	case opKind == "AEXPR_IN", op == "=":
		k = predEquality
	case op == "<" || op == ">" || op == "<=" || op == ">=" || op == "<>":
		k = predRange
	}

	if lexpr, ok := expr["lexpr"]; ok {
		w.walk(lexpr, k, inOrderBy)
	}
	if rexpr, ok := expr["rexpr"]; ok {
		w.walk(rexpr, k, inOrderBy)
	}
}

func aExprOperator(raw interface{}) string {
	items, ok := raw.([]interface{})
	if !ok || len(items) == 0 {
		return ""
	}
	if m, ok := items[0].(map[string]interface{}); ok {
		if s, ok := m["String"].(map[string]interface{}); ok {
			if str, ok := s["str"].(string); ok {
				return str
			}
			if str, ok := s["sval"].(string); ok {
				return str
			}
		}
	}
	return ""
}

func (w *walker) recordRangeVar(rv map[string]interface{}) {
	relname, _ := rv["relname"].(string)
	if relname == "" {
		return
	}
	schema, _ := rv["schemaname"].(string)

	key := relname
	if alias, ok := rv["alias"].(map[string]interface{}); ok {
		if name, ok := alias["aliasname"].(string); ok && name != "" {
			key = name
		}
	}

	w.tables[key] = tableRef{schema: schema, relname: relname}
	w.tables[relname] = tableRef{schema: schema, relname: relname}
	w.fromTables = append(w.fromTables, key)
}

func (w *walker) recordColumnRef(cr map[string]interface{}, kind predicateKind, inOrderBy bool) {
	fields, ok := cr["fields"].([]interface{})
	if !ok || len(fields) == 0 {
		return
	}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		m, ok := f.(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := m["String"].(map[string]interface{}); ok {
			if str, ok := s["str"].(string); ok {
				names = append(names, str)
				continue
			}
			if str, ok := s["sval"].(string); ok {
				names = append(names, str)
			}
		}
	}

	if len(names) == 0 {
		return
	}

	ref := columnRef{Kind: kind}
	if inOrderBy {
		ref.Kind = predOrderBy
	}
	if len(names) >= 2 {
		ref.Table = names[len(names)-2]
		ref.Column = names[len(names)-1]
	} else {
		ref.Column = names[0]
	}

	w.refs = append(w.refs, ref)
}

// groupByTable collapses parsed column references into the
// {"schema.table" -> [column...]} shape the Report exposes, deduplicating
// columns per table while preserving first-seen order.
func groupByTable(refs []columnRef) map[string][]string {
	out := map[string][]string{}
	seen := map[string]map[string]bool{}

	for _, r := range refs {
		key := tableKey(r.Schema, r.Table)
		if seen[key] == nil {
			seen[key] = map[string]bool{}
		}
		if seen[key][r.Column] {
			continue
		}
		seen[key][r.Column] = true
		out[key] = append(out[key], r.Column)
	}
	return out
}

func tableKey(schema, table string) string {
	if table == "" {
		return "unknown_schema.unknown"
	}
	if schema == "" {
		return "unknown_schema." + table
	}
	return schema + "." + table
}

func splitTableKey(key string) (schema, table string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return "unknown_schema", key
	}
	return parts[0], parts[1]
}
