package rules

import (
	"github.com/flanksource/postgres/pkg/evidence"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/snapshot"
	"github.com/flanksource/postgres/pkg/suggestion"
	"github.com/flanksource/postgres/pkg/units"
)

func init() {
	Register(Rule{ID: "logging.log_min_duration_statement", Category: suggestion.Logging, Run: logMinDurationRule})
	Register(Rule{ID: "logging.log_lock_waits", Category: suggestion.Logging, Run: logLockWaitsRule})
	Register(Rule{ID: "logging.deadlock_timeout", Category: suggestion.Logging, Run: deadlockTimeoutRule})
}

func logMinDurationRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	raw, ok := snap.Settings.Get("log_min_duration_statement")
	if !ok {
		return skippedInfo("logging.log_min_duration_statement", suggestion.Logging, "log_min_duration_statement")
	}

	if raw.RawValue == "-1" {
		return &suggestion.Suggestion{
			ID: "logging.log_min_duration_statement", Category: suggestion.Logging, Level: suggestion.Recommended,
			Parameter: "log_min_duration_statement", Current: "-1 (disabled)", Recommended: "1000ms",
			Rationale:    "slow queries are invisible without log_min_duration_statement enabled.",
			EvidenceRefs: []string{evidence.RefLogMinDuration},
		}, nil
	}

	current, ok := raw.Duration()
	if !ok {
		return skippedInfo("logging.log_min_duration_statement", suggestion.Logging, "log_min_duration_statement")
	}
	expected := units.Duration(1000 * units.Millisecond)
	level := suggestion.Info
	if current.Duration() > expected.Duration() {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "logging.log_min_duration_statement", Category: suggestion.Logging, Level: level,
		Parameter: "log_min_duration_statement", Current: fmtDuration(current), Recommended: fmtDuration(expected),
		Rationale:    "1000ms (or less) keeps slow queries visible without flooding the log.",
		EvidenceRefs: []string{evidence.RefLogMinDuration},
	}, nil
}

func logLockWaitsRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingBool(snap, "log_lock_waits")
	if !ok {
		return skippedInfo("logging.log_lock_waits", suggestion.Logging, "log_lock_waits")
	}
	level := suggestion.Info
	if !current.Bool() {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "logging.log_lock_waits", Category: suggestion.Logging, Level: level,
		Parameter: "log_lock_waits", Current: current.String(), Recommended: "on",
		Rationale:    "log_lock_waits logs sessions waiting longer than deadlock_timeout for a lock.",
		EvidenceRefs: []string{evidence.RefLogLockWaits},
	}, nil
}

func deadlockTimeoutRule(snap snapshot.Snapshot, p profile.Profile) (*suggestion.Suggestion, error) {
	current, ok := settingDuration(snap, "deadlock_timeout")
	if !ok {
		return skippedInfo("logging.deadlock_timeout", suggestion.Logging, "deadlock_timeout")
	}
	expected := units.Duration(1 * units.Second)
	level := suggestion.Info
	if current.Duration() != expected.Duration() {
		level = suggestion.Recommended
	}
	return &suggestion.Suggestion{
		ID: "logging.deadlock_timeout", Category: suggestion.Logging, Level: level,
		Parameter: "deadlock_timeout", Current: fmtDuration(current), Recommended: fmtDuration(expected),
		Rationale:    "deadlock_timeout defaults to 1s; deviating from it changes how quickly lock waits are logged and deadlocks detected.",
		EvidenceRefs: []string{evidence.RefLogLockWaits},
	}, nil
}
