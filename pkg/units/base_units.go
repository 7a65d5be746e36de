// Package units converts PostgreSQL parameter text — byte sizes, durations,
// ratios, and booleans — to typed quantities and back, matching the
// conventions pg_settings uses for raw_value + unit.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Size constants in bytes.
const (
	Byte = 1
	KB   = 1024 * Byte
	MB   = 1024 * KB
	GB   = 1024 * MB
	TB   = 1024 * GB
)

// Time constants.
const (
	Microsecond = time.Microsecond
	Millisecond = time.Millisecond
	Second      = time.Second
	Minute      = 60 * Second
	Hour        = 60 * Minute
	Day         = 24 * Hour
)

// DefaultBlockSize is PostgreSQL's compiled-in page size, used when the
// Snapshot has no block_size setting to read (Open Question (a)).
const DefaultBlockSize uint64 = 8192

// sizeRegex matches combined size strings like "128MB", "1GB", "512kB".
var sizeRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMGT]?B)$`)

// durationRegex matches combined duration strings like "5min", "30s", "1h".
var durationRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(us|ms|s|min|h|d)$`)

// ParseSize parses a combined size string ("128MB", "1GB", "512kB", or a
// bare integer assumed to already be bytes) and returns the size in bytes.
func ParseSize(sizeStr string) (uint64, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if val, err := strconv.ParseUint(sizeStr, 10, 64); err == nil {
		return val, nil
	}

	matches := sizeRegex.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(sizeStr)))
	if matches == nil {
		return 0, fmt.Errorf("invalid size format: %s", sizeStr)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %s", matches[1])
	}

	multiplier, err := sizeMultiplier(matches[2])
	if err != nil {
		return 0, err
	}

	return uint64(value * float64(multiplier)), nil
}

func sizeMultiplier(unit string) (uint64, error) {
	switch strings.ToUpper(unit) {
	case "B":
		return Byte, nil
	case "KB":
		return KB, nil
	case "MB":
		return MB, nil
	case "GB":
		return GB, nil
	case "TB":
		return TB, nil
	default:
		return 0, fmt.Errorf("unknown size unit: %s", unit)
	}
}

// ParseSizeWithUnit applies the pg_settings raw_value+unit convention: a
// bare integer setting multiplied by the unit's byte count. unit "8kB"
// (PostgreSQL's block-count convention) multiplies by blockSize instead of
// a literal 8KB, so callers should pass the server's reported block_size
// (DefaultBlockSize when unknown).
func ParseSizeWithUnit(rawValue, unit string, blockSize uint64) (uint64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(rawValue), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer setting %q: %w", rawValue, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size setting: %s", rawValue)
	}

	switch strings.TrimSpace(unit) {
	case "", "B":
		return uint64(n), nil
	case "8kB":
		if blockSize == 0 {
			blockSize = DefaultBlockSize
		}
		return uint64(n) * blockSize, nil
	case "kB":
		return uint64(n) * KB, nil
	case "MB":
		return uint64(n) * MB, nil
	case "GB":
		return uint64(n) * GB, nil
	case "TB":
		return uint64(n) * TB, nil
	default:
		return 0, fmt.Errorf("unknown pg_settings size unit: %q", unit)
	}
}

// FormatSize formats a size in bytes to a human-readable string.
func FormatSize(bytes uint64) string {
	if bytes == 0 {
		return "0B"
	}

	if bytes >= TB {
		return fmt.Sprintf("%.1fTB", float64(bytes)/float64(TB))
	}
	if bytes >= GB {
		return fmt.Sprintf("%.1fGB", float64(bytes)/float64(GB))
	}
	if bytes >= MB {
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(MB))
	}
	if bytes >= KB {
		return fmt.Sprintf("%.1fkB", float64(bytes)/float64(KB))
	}

	return fmt.Sprintf("%dB", bytes)
}

// FormatSizePostgreSQL formats a size in bytes using the largest unit that
// produces a whole number, the way PostgreSQL config values are written;
// a size that is not a whole number of kB is written as bare bytes. Any
// string this returns re-parses to the same byte count via ParseSize.
func FormatSizePostgreSQL(bytes uint64) string {
	if bytes == 0 {
		return "0"
	}

	if bytes >= TB && bytes%TB == 0 {
		return fmt.Sprintf("%dTB", bytes/TB)
	}
	if bytes >= GB && bytes%GB == 0 {
		return fmt.Sprintf("%dGB", bytes/GB)
	}
	if bytes >= MB && bytes%MB == 0 {
		return fmt.Sprintf("%dMB", bytes/MB)
	}
	if bytes >= KB && bytes%KB == 0 {
		return fmt.Sprintf("%dkB", bytes/KB)
	}

	return fmt.Sprintf("%d", bytes)
}

// ParseDuration parses a combined duration string ("5min", "30s", "1h") or
// a bare integer assumed to be milliseconds.
func ParseDuration(durationStr string) (time.Duration, error) {
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if durationStr == "0" {
		return 0, nil
	}

	if val, err := strconv.ParseInt(durationStr, 10, 64); err == nil {
		return time.Duration(val) * Millisecond, nil
	}

	matches := durationRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(durationStr)))
	if matches == nil {
		return 0, fmt.Errorf("invalid duration format: %s", durationStr)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	mult, err := durationMultiplier(matches[2])
	if err != nil {
		return 0, err
	}

	return time.Duration(value * float64(mult)), nil
}

func durationMultiplier(unit string) (time.Duration, error) {
	switch unit {
	case "us":
		return Microsecond, nil
	case "ms":
		return Millisecond, nil
	case "s":
		return Second, nil
	case "min":
		return Minute, nil
	case "h":
		return Hour, nil
	case "d":
		return Day, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// ParseDurationWithUnit applies the pg_settings raw_value+unit convention
// for time-valued GUCs (unit is typically "ms", "s", or "min").
func ParseDurationWithUnit(rawValue, unit string) (time.Duration, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(rawValue), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer setting %q: %w", rawValue, err)
	}

	switch strings.TrimSpace(unit) {
	case "", "ms":
		return time.Duration(n) * Millisecond, nil
	case "s":
		return time.Duration(n) * Second, nil
	case "min":
		return time.Duration(n) * Minute, nil
	case "h":
		return time.Duration(n) * Hour, nil
	case "d":
		return time.Duration(n) * Day, nil
	default:
		return 0, fmt.Errorf("unknown pg_settings duration unit: %q", unit)
	}
}

// FormatDuration formats a duration to a human-readable string.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0"
	}

	if d >= Day {
		return fmt.Sprintf("%.1fd", float64(d)/float64(Day))
	}
	if d >= Hour {
		return fmt.Sprintf("%.1fh", float64(d)/float64(Hour))
	}
	if d >= Minute {
		return fmt.Sprintf("%.1fmin", float64(d)/float64(Minute))
	}
	if d >= Second {
		return fmt.Sprintf("%.1fs", float64(d)/float64(Second))
	}
	if d >= Millisecond {
		return fmt.Sprintf("%.1fms", float64(d)/float64(Millisecond))
	}

	return fmt.Sprintf("%.1fus", float64(d)/float64(Microsecond))
}

// FormatDurationPostgreSQL formats a duration using the largest unit that
// produces a whole number. For a duration that is a whole number of
// microseconds, the string re-parses to the same duration via
// ParseDuration; a finer duration is rounded to the nearest whole unit
// and does not round-trip.
func FormatDurationPostgreSQL(d time.Duration) string {
	if d == 0 {
		return "0"
	}

	if d >= Day && d%Day == 0 {
		return fmt.Sprintf("%dd", int64(d/Day))
	}
	if d >= Hour && d%Hour == 0 {
		return fmt.Sprintf("%dh", int64(d/Hour))
	}
	if d >= Minute && d%Minute == 0 {
		return fmt.Sprintf("%dmin", int64(d/Minute))
	}
	if d >= Second && d%Second == 0 {
		return fmt.Sprintf("%ds", int64(d/Second))
	}
	if d >= Millisecond && d%Millisecond == 0 {
		return fmt.Sprintf("%dms", int64(d/Millisecond))
	}
	if d%Microsecond == 0 {
		return fmt.Sprintf("%dus", int64(d/Microsecond))
	}

	if d >= Day {
		return fmt.Sprintf("%.0fd", float64(d)/float64(Day))
	}
	if d >= Hour {
		return fmt.Sprintf("%.0fh", float64(d)/float64(Hour))
	}
	if d >= Minute {
		return fmt.Sprintf("%.0fmin", float64(d)/float64(Minute))
	}
	if d >= Second {
		return fmt.Sprintf("%.0fs", float64(d)/float64(Second))
	}
	if d >= Millisecond {
		return fmt.Sprintf("%.0fms", float64(d)/float64(Millisecond))
	}

	return fmt.Sprintf("%.0fus", float64(d)/float64(Microsecond))
}

// IsValidSizeString checks if a string is a valid combined size format.
func IsValidSizeString(s string) bool {
	_, err := ParseSize(s)
	return err == nil
}

// IsValidDurationString checks if a string is a valid combined duration format.
func IsValidDurationString(s string) bool {
	_, err := ParseDuration(s)
	return err == nil
}
