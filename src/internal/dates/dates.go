// Package dates turns free-form publish dates into sortable calendar values.
package dates

import (
	"strconv"
	"strings"
	"time"
)

const (
	monthDayYear = "Jan 2, 2006"
	isoLenient   = "2006-1-2"
	isoStrict    = "2006-01-02"
)

// Sentinel is the date given to strings no stage of the cascade understands.
// It sorts before every real publish date.
var Sentinel = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Sortable parses s through a fixed cascade and never fails:
//  1. "Jan 5, 2001"
//  2. "2001-01-05"
//  3. the whole string as a year ("2001")
//  4. the first four characters as a year, clamped: below 1900 becomes 1900,
//     1900-1999 becomes 2000
//  5. Sentinel
func Sortable(s string) time.Time {
	if t, err := time.Parse(monthDayYear, s); err == nil {
		return t
	}
	if t, err := time.Parse(isoLenient, s); err == nil {
		return t
	}
	if y, ok := parseYear(s); ok && y >= 1 && y <= 9999 {
		return january(y)
	}
	// The clamp targets truncated two-digit-year garbage; it is kept as-is.
	if y, ok := parseYear(prefix(s, 4)); ok {
		switch {
		case y < 1900:
			y = 1900
		case y < 2000:
			y = 2000
		}
		return january(y)
	}
	return Sentinel
}

// IsValid reports whether s is a strict YYYY-MM-DD calendar date.
func IsValid(s string) bool {
	_, err := time.Parse(isoStrict, s)
	return err == nil
}

// parseYear accepts an optionally signed integer with surrounding whitespace.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func january(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
