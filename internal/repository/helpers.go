package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// timeLayout is fixed-width RFC3339 with nanoseconds, so stored UTC
// timestamps sort lexicographically and cooldown checks stay exact.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts t to the UTC string stored in SQLite.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp, naming the column on failure.
func parseTime(column, s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// parseNullableTime parses a sql.NullString into a *time.Time.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// formatSeed stores a uint64 seed as text; SQLite integers are signed.
func formatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}

func parseSeed(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing seed: %w", err)
	}
	return v, nil
}
