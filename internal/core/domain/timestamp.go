package domain

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing an update timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// minEpochDigits keeps compact dates like 20240601 or a bare year from
// reading as seconds after 1970. Ten digits covers every instant since 2001.
const minEpochDigits = 10

// ParseTimestamp parses an ISO-8601 date or instant, or Unix epoch seconds
// written with at least ten digits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) >= minEpochDigits && allDigits(s) {
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
	}
	return time.Time{}, false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TimestampAfter reports whether a is strictly later than b.
// Both sides are compared as instants when they parse, and lexically otherwise.
// An empty b is never exceeded: nothing compares as newer than an unknown date.
func TimestampAfter(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ta, okA := ParseTimestamp(a)
	tb, okB := ParseTimestamp(b)
	if okA && okB {
		return ta.After(tb)
	}
	return a > b
}
