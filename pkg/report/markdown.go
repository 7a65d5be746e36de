package report

import (
	"fmt"
	"strings"

	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/suggestion"
)

// ToMarkdown renders a Report as sectioned Markdown: one section per
// category with level badges, a findings table, a workload proposed-index
// table, and a collapsible block citing the evidence references any
// rendered suggestion or finding used.
func ToMarkdown(r suggestion.Report) string {
	var b strings.Builder
	grouped := groupByCategory(r.Suggestions)
	cited := map[string]bool{}

	b.WriteString("# PostGreat Report\n\n")

	for _, cat := range categoriesInOrder {
		suggestions := grouped[cat]
		if cat == suggestion.TableIndexHealth || cat == suggestion.Workload {
			continue // rendered separately below, over Findings/Workload rather than Suggestions
		}
		if len(suggestions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", cat)
		for _, s := range suggestions {
			writeSuggestionMarkdown(&b, s, cited)
		}
	}

	if len(r.Findings) > 0 {
		b.WriteString("## Table & Index Health\n\n")
		b.WriteString("| Level | Kind | Object | Size | Rationale |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, f := range r.Findings {
			obj := f.QualifiedRelation()
			if f.Index != "" {
				obj += "." + f.Index
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				f.Level.Badge(), f.Kind, obj, formatBytes(f.SizeBytes), escapeCell(f.Rationale))
			for _, ref := range f.EvidenceRefs {
				cited[ref] = true
			}
		}
		b.WriteString("\n")
	}

	if r.Workload != nil && len(r.Workload.ProposedIndexes) > 0 {
		b.WriteString("## Workload — Proposed Indexes\n\n")
		b.WriteString("| Table | Columns | Include | Est. Benefit (ms) | Source Statements |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range r.Workload.ProposedIndexes {
			include := "—"
			if len(c.IncludeColumns) > 0 {
				include = strings.Join(c.IncludeColumns, ", ")
			}
			fmt.Fprintf(&b, "| %s.%s | %s | %s | %.0f | %s |\n",
				c.Schema, c.Table, strings.Join(c.Columns, ", "), include,
				c.EstBenefitMs, strings.Join(c.SourceFingerprints, ", "))
		}
		b.WriteString("\n")
		cited[evidence.RefWorkloadIndex] = true
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			if w.Scope != "" {
				fmt.Fprintf(&b, "- `%s` (%s): %s\n", w.ID, w.Scope, w.Message)
			} else {
				fmt.Fprintf(&b, "- `%s`: %s\n", w.ID, w.Message)
			}
		}
		b.WriteString("\n")
	}

	if len(cited) > 0 {
		b.WriteString("<details>\n<summary>Evidence</summary>\n\n")
		for _, ref := range evidence.All() {
			if cited[ref.Key] {
				fmt.Fprintf(&b, "- **%s**: %s\n", ref.Key, ref.Text)
			}
		}
		b.WriteString("\n</details>\n")
	}

	return b.String()
}

func writeSuggestionMarkdown(b *strings.Builder, s suggestion.Suggestion, cited map[string]bool) {
	fmt.Fprintf(b, "### %s — %s\n\n", s.Level.Badge(), s.ID)
	if s.Parameter != "" {
		fmt.Fprintf(b, "- **Parameter**: `%s`\n", s.Parameter)
	}
	if s.Current != "" {
		fmt.Fprintf(b, "- **Current**: %s\n", s.Current)
	}
	if s.Recommended != "" {
		fmt.Fprintf(b, "- **Recommended**: %s\n", s.Recommended)
	}
	fmt.Fprintf(b, "- **Rationale**: %s\n\n", s.Rationale)
	for _, ref := range s.EvidenceRefs {
		cited[ref] = true
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1fGB", float64(n)/float64(gb))
	case n >= mb:
		return fmt.Sprintf("%.1fMB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.1fkB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
