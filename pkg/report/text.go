package report

import (
	"fmt"
	"strings"

	"github.com/flanksource/postgres/pkg/suggestion"
)

// ToText renders a Report as plain, uncolored text: one paragraph per
// suggestion and finding, grouped by category in the same order every
// other renderer uses.
func ToText(r suggestion.Report) string {
	var b strings.Builder
	grouped := groupByCategory(r.Suggestions)

	for _, cat := range categoriesInOrder {
		suggestions := grouped[cat]
		if len(suggestions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "== %s ==\n\n", cat)
		for _, s := range suggestions {
			fmt.Fprintf(&b, "[%s] %s\n", s.Level, s.ID)
			if s.Parameter != "" {
				fmt.Fprintf(&b, "  parameter: %s\n", s.Parameter)
			}
			if s.Current != "" || s.Recommended != "" {
				fmt.Fprintf(&b, "  current: %s, recommended: %s\n", s.Current, s.Recommended)
			}
			fmt.Fprintf(&b, "  %s\n\n", s.Rationale)
		}
	}

	if len(r.Findings) > 0 {
		b.WriteString("== Table & Index Health ==\n\n")
		for _, f := range r.Findings {
			obj := f.QualifiedRelation()
			if f.Index != "" {
				obj += "." + f.Index
			}
			fmt.Fprintf(&b, "[%s] %s %s\n  %s\n\n", f.Level, f.Kind, obj, f.Rationale)
		}
	}

	if r.Workload != nil {
		b.WriteString("== Workload ==\n\n")
		for _, c := range r.Workload.ProposedIndexes {
			fmt.Fprintf(&b, "proposed index: %s.%s(%s)", c.Schema, c.Table, strings.Join(c.Columns, ", "))
			if len(c.IncludeColumns) > 0 {
				fmt.Fprintf(&b, " INCLUDE (%s)", strings.Join(c.IncludeColumns, ", "))
			}
			fmt.Fprintf(&b, " est_benefit_ms=%.0f\n", c.EstBenefitMs)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("== Warnings ==\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "%s: %s\n", w.ID, w.Message)
		}
	}

	return b.String()
}
