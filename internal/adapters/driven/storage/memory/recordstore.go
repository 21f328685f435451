package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// sequence assigns a per-group counter to a column on insert.
type sequence struct {
	column  string
	groupBy string
}

// RecordStore is an in-memory implementation of driven.RecordStore.
// Rows get a UUID "id" and a "created_at" timestamp on insert.
type RecordStore struct {
	mu        sync.RWMutex
	tables    map[string][]domain.Record
	sequences map[string]sequence
	now       func() time.Time
}

// RecordStoreOption configures a RecordStore.
type RecordStoreOption func(*RecordStore)

// WithSequence makes inserts into table fill column with 1 + the highest
// existing value among rows sharing the same groupBy value.
func WithSequence(table, column, groupBy string) RecordStoreOption {
	return func(s *RecordStore) {
		s.sequences[table] = sequence{column: column, groupBy: groupBy}
	}
}

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) RecordStoreOption {
	return func(s *RecordStore) {
		s.now = now
	}
}

// NewRecordStore creates a new in-memory record store.
// Version rows are numbered per URL unless another sequence replaces it.
func NewRecordStore(opts ...RecordStoreOption) *RecordStore {
	s := &RecordStore{
		tables:    make(map[string][]domain.Record),
		sequences: make(map[string]sequence),
		now:       time.Now,
	}
	WithSequence(domain.TableVersions, domain.ColVersion, domain.ColURLID)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert inserts data, or merges it into the row whose conflictKey matches.
func (s *RecordStore) Upsert(
	ctx context.Context,
	table string,
	data domain.Record,
	conflictKey string,
	returning []string,
) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if table == "" || conflictKey == "" {
		return nil, fmt.Errorf("%w: table and conflict key are required", domain.ErrStoreOperationFailed)
	}
	key, ok := data[conflictKey]
	if !ok {
		return nil, fmt.Errorf("%w: upsert data has no %s", domain.ErrStoreOperationFailed, conflictKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.tables[table] {
		if sameValue(row[conflictKey], key) {
			for col, val := range data {
				if col == domain.ColID {
					continue
				}
				row[col] = val
			}
			return project(row, returning), nil
		}
	}

	row := s.insertLocked(table, data)
	return project(row, returning), nil
}

// Select returns copies of the rows matching query.
func (s *RecordStore) Select(ctx context.Context, query domain.SelectQuery) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if query.Table == "" {
		return nil, fmt.Errorf("%w: table is required", domain.ErrStoreOperationFailed)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Record
	for _, row := range s.tables[query.Table] {
		if matches(row, query.Filters) {
			matched = append(matched, row)
		}
	}

	if len(query.OrderBy) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, term := range query.OrderBy {
				c := compareValues(matched[i][term.Column], matched[j][term.Column])
				if c == 0 {
					continue
				}
				if term.Order == domain.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	result := make([]domain.Record, 0, len(matched))
	for _, row := range matched {
		result = append(result, project(row, query.Columns))
	}
	return result, nil
}

// Insert appends a row and returns it as stored.
func (s *RecordStore) Insert(ctx context.Context, table string, data domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if table == "" {
		return nil, fmt.Errorf("%w: table is required", domain.ErrStoreOperationFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.insertLocked(table, data)
	return project(row, nil), nil
}

// Len returns the number of rows in table.
func (s *RecordStore) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// insertLocked stores a copy of data with generated columns filled in.
// Callers must hold the write lock.
func (s *RecordStore) insertLocked(table string, data domain.Record) domain.Record {
	row := make(domain.Record, len(data)+2)
	for col, val := range data {
		row[col] = val
	}
	if _, ok := row[domain.ColID]; !ok {
		row[domain.ColID] = uuid.New().String()
	}
	if _, ok := row[domain.ColCreatedAt]; !ok {
		row[domain.ColCreatedAt] = s.now().UTC().Format(time.RFC3339)
	}
	if seq, ok := s.sequences[table]; ok {
		if _, set := row[seq.column]; !set {
			row[seq.column] = s.nextLocked(table, seq, row[seq.groupBy])
		}
	}
	s.tables[table] = append(s.tables[table], row)
	return row
}

func (s *RecordStore) nextLocked(table string, seq sequence, group any) int64 {
	var highest int64
	for _, row := range s.tables[table] {
		if !sameValue(row[seq.groupBy], group) {
			continue
		}
		if n := domain.Record(row).Int(seq.column); int64(n) > highest {
			highest = int64(n)
		}
	}
	return highest + 1
}

// project copies the requested columns of row. No columns means all of them.
func project(row domain.Record, columns []string) domain.Record {
	if len(columns) == 0 {
		out := make(domain.Record, len(row))
		for col, val := range row {
			out[col] = val
		}
		return out
	}
	out := make(domain.Record, len(columns))
	for _, col := range columns {
		out[col] = row[col]
	}
	return out
}

func matches(row domain.Record, filters map[string]any) bool {
	for col, want := range filters {
		if !sameValue(row[col], want) {
			return false
		}
	}
	return true
}

// sameValue compares values the way a SQL equality filter would, so an
// integer id matches its decimal string.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues orders numbers numerically and everything else as text.
// Nil sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	af, errA := strconv.ParseFloat(as, 64)
	bf, errB := strconv.ParseFloat(bs, 64)
	if errA == nil && errB == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
