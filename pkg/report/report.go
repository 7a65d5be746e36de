// Package report renders an analysis Report to the three output formats
// the CLI exposes: JSON, Markdown, and plain text. Every renderer is a
// pure function of the Report — no clock reads, no I/O — so the same
// Report always produces byte-identical output, matching the engine's own
// determinism invariant one layer up.
package report

import (
	"github.com/flanksource/postgres/pkg/suggestion"
)

// Format selects one of the three renderers.
type Format string

const (
	JSON     Format = "json"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// Render dispatches to the renderer named by format.
func Render(r suggestion.Report, format Format) (string, error) {
	switch format {
	case JSON:
		return ToJSON(r)
	case Markdown:
		return ToMarkdown(r), nil
	case Text, "":
		return ToText(r), nil
	default:
		return "", &UnknownFormatError{Format: string(format)}
	}
}

// UnknownFormatError is returned by Render for a format outside the closed
// {json, markdown, text} set.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return "report: unknown format " + e.Format
}

// categoriesInOrder lists every Category in the declaration order the
// Report, and every renderer, groups suggestions by.
var categoriesInOrder = []suggestion.Category{
	suggestion.Memory,
	suggestion.Concurrency,
	suggestion.WAL,
	suggestion.Planner,
	suggestion.Autovacuum,
	suggestion.Logging,
	suggestion.TableIndexHealth,
	suggestion.Workload,
}

// groupByCategory splits suggestions into per-category slices, preserving
// the level-desc-then-id order SortSuggestions already established within
// each category. Suggestions is assumed pre-sorted by the engine; this
// function never re-sorts.
func groupByCategory(suggestions []suggestion.Suggestion) map[suggestion.Category][]suggestion.Suggestion {
	out := make(map[suggestion.Category][]suggestion.Suggestion, len(categoriesInOrder))
	for _, s := range suggestions {
		out[s.Category] = append(out[s.Category], s)
	}
	return out
}
