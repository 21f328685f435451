package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

// identifierPattern matches the table and column names the store accepts.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Classifier maps a driver error to domain.ErrStoreUnavailable or
// domain.ErrStoreOperationFailed. It returns nil when it does not recognise err.
type Classifier func(err error) error

// Store implements driven.RecordStore over any database/sql driver that
// understands INSERT ... ON CONFLICT ... RETURNING.
// Every table it writes must have an "id" primary key.
type Store struct {
	db       *sqlx.DB
	classify Classifier
}

// Option configures a Store.
type Option func(*Store)

// WithClassifier adds driver-specific error classification.
func WithClassifier(c Classifier) Option {
	return func(s *Store) {
		s.classify = c
	}
}

// New creates a store on db. Placeholders are rebound for db's driver.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts data or updates the row that conflicts on conflictKey.
func (s *Store) Upsert(
	ctx context.Context,
	table string,
	data domain.Record,
	conflictKey string,
	returning []string,
) (domain.Record, error) {
	if _, ok := data[conflictKey]; !ok {
		return nil, fmt.Errorf("%w: upsert data has no %s", domain.ErrStoreOperationFailed, conflictKey)
	}
	query, args, err := buildUpsert(table, data, conflictKey, returning)
	if err != nil {
		return nil, err
	}

	row, err := s.queryOne(ctx, s.db, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("upserting into %s: %w", table, err)
	}
	return row, nil
}

// Select returns the rows matching query.
func (s *Store) Select(ctx context.Context, query domain.SelectQuery) ([]domain.Record, error) {
	stmt, args, err := buildSelect(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(stmt), args...)
	if err != nil {
		return nil, fmt.Errorf("selecting from %s: %w", query.Table, s.classifyErr(err))
	}
	defer rows.Close()

	var result []domain.Record
	for rows.Next() {
		row, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", query.Table, s.classifyErr(err))
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", query.Table, s.classifyErr(err))
	}
	return result, nil
}

// Insert appends a row and returns it as stored, including values set by
// defaults and triggers.
func (s *Store) Insert(ctx context.Context, table string, data domain.Record) (domain.Record, error) {
	query, args, err := buildInsert(table, data)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning insert into %s: %w", table, s.classifyErr(err))
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.queryOne(ctx, tx, tx.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("inserting into %s: %w", table, err)
	}

	// RETURNING does not see changes made by AFTER triggers, so read the row back.
	stored, err := s.queryOne(ctx, tx,
		tx.Rebind("SELECT * FROM "+table+" WHERE "+domain.ColID+" = ?"), inserted[domain.ColID])
	if err != nil {
		return nil, fmt.Errorf("reading back %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing insert into %s: %w", table, s.classifyErr(err))
	}
	return stored, nil
}

// queryOne runs a statement expected to yield exactly one row.
func (s *Store) queryOne(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (domain.Record, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, s.classifyErr(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, s.classifyErr(err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreOperationFailed, sql.ErrNoRows)
	}
	row, err := scanRecord(rows)
	if err != nil {
		return nil, s.classifyErr(err)
	}
	return row, nil
}

// scanRecord scans the current row. Byte slices become strings.
func scanRecord(rows *sqlx.Rows) (domain.Record, error) {
	raw := make(map[string]any)
	if err := rows.MapScan(raw); err != nil {
		return nil, err
	}
	row := make(domain.Record, len(raw))
	for col, val := range raw {
		if b, ok := val.([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = val
	}
	return row, nil
}

func buildUpsert(table string, data domain.Record, conflictKey string, returning []string) (string, []any, error) {
	insert, args, err := buildInsertPrefix(table, data)
	if err != nil {
		return "", nil, err
	}
	if err := checkIdentifiers(append([]string{conflictKey}, returning...)...); err != nil {
		return "", nil, err
	}

	var sets []string
	for _, col := range sortedColumns(data) {
		if col == conflictKey || col == domain.ColID {
			continue
		}
		sets = append(sets, col+" = excluded."+col)
	}
	if len(sets) == 0 {
		// DO NOTHING would return no row, so touch the key instead.
		sets = append(sets, conflictKey+" = excluded."+conflictKey)
	}

	var b strings.Builder
	b.WriteString(insert)
	b.WriteString(" ON CONFLICT (")
	b.WriteString(conflictKey)
	b.WriteString(") DO UPDATE SET ")
	b.WriteString(strings.Join(sets, ", "))
	b.WriteString(" RETURNING ")
	b.WriteString(columnList(returning))
	return b.String(), args, nil
}

func buildInsert(table string, data domain.Record) (string, []any, error) {
	insert, args, err := buildInsertPrefix(table, data)
	if err != nil {
		return "", nil, err
	}
	return insert + " RETURNING " + domain.ColID, args, nil
}

func buildInsertPrefix(table string, data domain.Record) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: no columns to insert into %s", domain.ErrStoreOperationFailed, table)
	}
	cols := sortedColumns(data)
	if err := checkIdentifiers(append([]string{table}, cols...)...); err != nil {
		return "", nil, err
	}

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		args[i] = data[col]
		marks[i] = "?"
	}

	query := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	return query, args, nil
}

func buildSelect(q domain.SelectQuery) (string, []any, error) {
	if err := checkIdentifiers(append([]string{q.Table}, q.Columns...)...); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columnList(q.Columns))
	b.WriteString(" FROM ")
	b.WriteString(q.Table)

	var args []any
	if len(q.Filters) > 0 {
		keys := make([]string, 0, len(q.Filters))
		for k := range q.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if err := checkIdentifiers(keys...); err != nil {
			return "", nil, err
		}

		conds := make([]string, len(keys))
		for i, k := range keys {
			conds[i] = k + " = ?"
			args = append(args, q.Filters[k])
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			if err := checkIdentifiers(o.Column); err != nil {
				return "", nil, err
			}
			order := domain.Ascending
			if o.Order == domain.Descending {
				order = domain.Descending
			}
			terms[i] = o.Column + " " + string(order)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args, nil
}

func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("%w: invalid identifier %q", domain.ErrStoreOperationFailed, name)
		}
	}
	return nil
}

func columnList(cols []string) string {
	if len(cols) == 0 {
		return "*"
	}
	return strings.Join(cols, ", ")
}

func sortedColumns(data domain.Record) []string {
	cols := make([]string, 0, len(data))
	for col := range data {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
