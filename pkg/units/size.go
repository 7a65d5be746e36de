package units

import (
	"encoding/json"
	"fmt"
)

// Size represents a memory or storage size that can be parsed from various
// pg_settings string formats and provides type-safe operations. It stores
// the size internally as bytes.
type Size uint64

// ParseSizeValue creates a Size from a combined string representation
// (e.g., "128MB", "1GB", "512kB").
func ParseSizeValue(s string) (Size, error) {
	if s == "" {
		return Size(0), nil
	}

	bytes, err := ParseSize(s)
	if err != nil {
		return Size(0), fmt.Errorf("invalid size format: %w", err)
	}

	return Size(bytes), nil
}

// ParseSettingSize creates a Size from a pg_settings raw_value + unit pair.
func ParseSettingSize(rawValue, unit string, blockSize uint64) (Size, error) {
	bytes, err := ParseSizeWithUnit(rawValue, unit, blockSize)
	if err != nil {
		return Size(0), err
	}
	return Size(bytes), nil
}

// Bytes returns the size in bytes.
func (s Size) Bytes() uint64 { return uint64(s) }

// KB returns the size in kilobytes.
func (s Size) KB() uint64 { return uint64(s) / KB }

// MB returns the size in megabytes.
func (s Size) MB() uint64 { return uint64(s) / MB }

// GB returns the size in gigabytes.
func (s Size) GB() uint64 { return uint64(s) / GB }

// GBFloat returns the size in gigabytes with fractional precision, the
// display form used for the compute profile's RAM figure.
func (s Size) GBFloat() float64 { return float64(s) / float64(GB) }

// String returns a human-readable string representation.
func (s Size) String() string { return FormatSize(uint64(s)) }

// PostgreSQLString returns a PostgreSQL-compatible string representation.
func (s Size) PostgreSQLString() string { return FormatSizePostgreSQL(uint64(s)) }

// MarshalJSON implements json.Marshaler.
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.PostgreSQLString())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Size) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var num uint64
		if numErr := json.Unmarshal(data, &num); numErr != nil {
			return fmt.Errorf("size must be a string or number: %w", err)
		}
		*s = Size(num)
		return nil
	}

	parsed, err := ParseSizeValue(str)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// IsZero returns true if the size is zero.
func (s Size) IsZero() bool { return s == 0 }

// Mul multiplies the size by a factor (used for percent-of-RAM rules).
func (s Size) Mul(factor float64) Size {
	return Size(uint64(float64(s) * factor))
}

// Div divides the size by a factor.
func (s Size) Div(factor float64) Size {
	if factor == 0 {
		return Size(0)
	}
	return Size(uint64(float64(s) / factor))
}

// MustParseSize parses a size string and panics on error; reserved for
// known-valid literals such as rule defaults.
func MustParseSize(s string) Size {
	size, err := ParseSizeValue(s)
	if err != nil {
		panic(fmt.Sprintf("invalid size: %v", err))
	}
	return size
}
