package units

import (
	"fmt"
	"strings"
)

// Bool is a PostgreSQL-style boolean GUC, accepting the full
// on/off/true/false/yes/no/1/0 family that pg_settings permits.
type Bool bool

// ParseBool parses a PostgreSQL boolean string.
func ParseBool(s string) (Bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1", "t", "y":
		return Bool(true), nil
	case "off", "false", "no", "0", "f", "n":
		return Bool(false), nil
	default:
		return false, fmt.Errorf("invalid boolean value: %q", s)
	}
}

// Bool returns the underlying bool.
func (b Bool) Bool() bool { return bool(b) }

// String formats as PostgreSQL's canonical on/off spelling.
func (b Bool) String() string {
	if b {
		return "on"
	}
	return "off"
}

// MustParseBool parses a boolean string and panics on error; reserved for
// known-valid literals such as rule defaults.
func MustParseBool(s string) Bool {
	v, err := ParseBool(s)
	if err != nil {
		panic(fmt.Sprintf("invalid boolean: %v", err))
	}
	return v
}
