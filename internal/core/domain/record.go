package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one row exchanged with the record store, keyed by column name.
// Values are whatever the driver produced: strings, int64, float64, []byte,
// time.Time or nil.
type Record map[string]any

// SortOrder is the direction of an ORDER BY term.
type SortOrder string

// Sort directions.
const (
	Ascending  SortOrder = "ASC"
	Descending SortOrder = "DESC"
)

// OrderBy is a single ORDER BY term.
type OrderBy struct {
	Column string
	Order  SortOrder
}

// SelectQuery describes a filtered, ordered and limited read of one table.
type SelectQuery struct {
	// Table is the table to read.
	Table string

	// Columns are the columns to return. Empty means all columns.
	Columns []string

	// Filters are equality filters joined with AND.
	Filters map[string]any

	// OrderBy terms are applied in order.
	OrderBy []OrderBy

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// String returns the column as a string.
// Missing and nil values yield "".
func (r Record) String(key string) string {
	s, _ := r.OptString(key)
	return s
}

// OptString returns the column as a string and whether it held a non-nil value.
func (r Record) OptString(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case time.Time:
		return formatTime(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}

// Int returns the column as an int.
// Values that are missing or not numeric yield 0.
func (r Record) Int(key string) int {
	switch t := r[key].(type) {
	case int64:
		return int(t)
	case int:
		return t
	case int32:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(t))
		return n
	default:
		return 0
	}
}

// ID returns the store-assigned identifier of the record.
// Integer keys are rendered in base 10 so identifiers are opaque strings everywhere.
func (r Record) ID() string {
	return r.String(ColID)
}

// formatTime renders dates without a clock component as yyyy-mm-dd.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}
