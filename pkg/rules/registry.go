// Package rules is the configuration rule library: one pure function per
// parameter, registered as a value rather than wired through inheritance or
// dynamic dispatch (see the teacher's post-processor registry in the
// original pgtune package, generalized here from "generate a config" to
// "compare current to expected").
package rules

import (
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
)

// Rule is one independent, pure check: given a Snapshot and a Profile, it
// returns at most one Suggestion. A nil Suggestion with a nil error means
// the rule had nothing to say (e.g. the current value is already within the
// expected band). Rules never see the severity floor; the engine applies it.
// Rules never mutate the Snapshot and never call out to I/O.
type Rule struct {
	ID       string
	Category suggestion.Category
	Run      func(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error)
}

var registry []Rule

// Register appends a rule to the registry. Called from each family's
// init(); order of registration does not affect Report ordering, since
// suggestions are always sorted before being returned.
func Register(r Rule) {
	registry = append(registry, r)
}

// All returns every registered rule.
func All() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}
