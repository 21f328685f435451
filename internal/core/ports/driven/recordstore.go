package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// RecordStore is the generic table store the version sync runs against.
//
// Implementations must honour these preconditions:
//
//   - Upsert is atomic per conflict key. Two concurrent upserts of the same
//     key end with exactly one row, and both callers see the same identifier.
//   - The store assigns identifiers ("id") and, for version rows, the
//     per-URL "version" counter on insert.
//   - Errors are wrapped with domain.ErrStoreUnavailable or
//     domain.ErrStoreOperationFailed.
type RecordStore interface {
	// Upsert inserts data or, when a row with the same conflictKey value exists,
	// updates it. The returning columns of the resulting row are returned.
	Upsert(ctx context.Context, table string, data domain.Record, conflictKey string, returning []string) (domain.Record, error)

	// Select returns the rows matching the query.
	Select(ctx context.Context, query domain.SelectQuery) ([]domain.Record, error)

	// Insert appends a row and returns it as stored.
	Insert(ctx context.Context, table string, data domain.Record) (domain.Record, error)
}
