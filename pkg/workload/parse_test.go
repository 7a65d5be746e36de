package workload

import "testing"

func TestParseTreeEqualityPredicate(t *testing.T) {
	refs, sole, err := parseTree("SELECT * FROM orders WHERE customer_id = 42")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if sole != "orders" {
		t.Errorf("expected sole FROM table orders, got %q", sole)
	}

	grouped := groupByTable(refs)
	cols, ok := grouped["unknown_schema.orders"]
	if !ok {
		t.Fatalf("expected a column group for orders, got %+v", grouped)
	}
	if len(cols) == 0 || cols[0] != "customer_id" {
		t.Errorf("expected customer_id among parsed columns, got %+v", cols)
	}
}

func TestParseTreeRangeAndOrderBy(t *testing.T) {
	refs, _, err := parseTree("SELECT * FROM events WHERE created_at > '2026-01-01' ORDER BY created_at DESC")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	cols := buildCandidates(refs)
	c, ok := cols["unknown_schema.events"]
	if !ok {
		t.Fatalf("expected a candidate for events, got %+v", cols)
	}
	if len(c.Columns) == 0 || c.Columns[0] != "created_at" {
		t.Errorf("expected created_at to lead the candidate, got %+v", c.Columns)
	}
}

func TestParseTreeInvalidSQLReturnsError(t *testing.T) {
	_, _, err := parseTree("SELECT FROM WHERE !!!")
	if err == nil {
		t.Error("expected a parse error for malformed SQL")
	}
}

func TestParseTreeQualifiedTableName(t *testing.T) {
	refs, _, err := parseTree("SELECT * FROM billing.invoices i WHERE i.status = 'open'")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	grouped := groupByTable(refs)
	if _, ok := grouped["billing.invoices"]; !ok {
		t.Errorf("expected schema-qualified grouping billing.invoices, got %+v", grouped)
	}
}

func TestOrderByOnlyProducesNoCandidate(t *testing.T) {
	refs, _, err := parseTree("SELECT * FROM logs ORDER BY created_at")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	cands := buildCandidates(refs)
	if len(cands) != 0 {
		t.Errorf("expected no candidate from an ORDER BY-only statement, got %+v", cands)
	}
}

// TestSelectListColumnsAreNotPredicates guards the workload scenario in the
// spec: SELECT rental_id FROM rental WHERE return_date > $1 must propose an
// index on return_date alone, never on the projected rental_id.
func TestSelectListColumnsAreNotPredicates(t *testing.T) {
	refs, projected, sole, _, err := parseStatement("SELECT rental_id FROM rental WHERE return_date > $1")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if sole != "rental" {
		t.Fatalf("expected sole FROM table rental, got %q", sole)
	}

	grouped := groupByTable(refs)
	cols := grouped["unknown_schema.rental"]
	for _, c := range cols {
		if c == "rental_id" {
			t.Errorf("rental_id is a projected column, not a predicate; got predicate columns %+v", cols)
		}
	}
	if len(cols) != 1 || cols[0] != "return_date" {
		t.Errorf("expected only return_date as a predicate column, got %+v", cols)
	}

	if len(projected) != 1 || projected[0].Column != "rental_id" {
		t.Errorf("expected rental_id recorded as a projected column, got %+v", projected)
	}
}

func TestBuildIncludeCandidateForProjectedColumnWithLimit(t *testing.T) {
	refs, projected, _, hasLimit, err := parseStatement(
		"SELECT rental_id, customer_id FROM rental WHERE return_date > $1 LIMIT 10")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !hasLimit {
		t.Fatal("expected hasLimit to be true")
	}

	base := buildCandidates(refs)
	includes := buildIncludeCandidates(base, refs, projected, hasLimit)
	if len(includes) != 1 {
		t.Fatalf("expected one INCLUDE candidate, got %+v", includes)
	}
	inc := includes[0]
	if inc.Kind.String() != "btree+include" {
		t.Errorf("expected a btree+include candidate, got %s", inc.Kind)
	}
	found := false
	for _, c := range inc.IncludeColumns {
		if c == "rental_id" || c == "customer_id" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected projected columns in INCLUDE set, got %+v", inc.IncludeColumns)
	}
}
