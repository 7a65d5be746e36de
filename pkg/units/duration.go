package units

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration represents a time duration that can be parsed from various
// pg_settings string formats. It stores the duration internally as
// time.Duration.
type Duration time.Duration

// ParseDurationValue creates a Duration from a combined string
// representation (e.g., "5min", "30s", "1h").
func ParseDurationValue(s string) (Duration, error) {
	if s == "" || s == "0" {
		return Duration(0), nil
	}

	d, err := ParseDuration(s)
	if err != nil {
		return Duration(0), fmt.Errorf("invalid duration format: %w", err)
	}

	return Duration(d), nil
}

// ParseSettingDuration creates a Duration from a pg_settings raw_value +
// unit pair.
func ParseSettingDuration(rawValue, unit string) (Duration, error) {
	d, err := ParseDurationWithUnit(rawValue, unit)
	if err != nil {
		return Duration(0), err
	}
	return Duration(d), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Milliseconds returns the duration as milliseconds.
func (d Duration) Milliseconds() int64 { return int64(d) / int64(time.Millisecond) }

// Seconds returns the duration as seconds.
func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }

// Minutes returns the duration as minutes.
func (d Duration) Minutes() float64 { return time.Duration(d).Minutes() }

// String returns a human-readable string representation.
func (d Duration) String() string {
	if d == 0 {
		return "0"
	}
	return FormatDuration(time.Duration(d))
}

// PostgreSQLString returns a PostgreSQL-compatible string representation.
func (d Duration) PostgreSQLString() string {
	if d == 0 {
		return "0"
	}
	return FormatDurationPostgreSQL(time.Duration(d))
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var num int64
		if numErr := json.Unmarshal(data, &num); numErr != nil {
			return fmt.Errorf("duration must be a string or number: %w", err)
		}
		*d = Duration(time.Duration(num) * time.Millisecond)
		return nil
	}

	parsed, err := ParseDurationValue(str)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// IsZero returns true if the duration is zero.
func (d Duration) IsZero() bool { return d == 0 }

// MustParseDuration parses a duration string and panics on error; reserved
// for known-valid literals such as rule defaults.
func MustParseDuration(s string) Duration {
	duration, err := ParseDurationValue(s)
	if err != nil {
		panic(fmt.Sprintf("invalid duration: %v", err))
	}
	return duration
}
