package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// VersionSync appends version rows for crawled documents whose content changed.
type VersionSync interface {
	// Process syncs every document and returns the input unchanged,
	// so the call can sit inside a larger pipeline.
	Process(ctx context.Context, docs []domain.DocumentSnapshot) ([]domain.DocumentSnapshot, error)

	// ProcessWithReport syncs every document and returns the per-document outcomes.
	ProcessWithReport(ctx context.Context, docs []domain.DocumentSnapshot) (*domain.SyncReport, error)
}

// VersionHistory reads the stored version history of a URL.
type VersionHistory interface {
	// History returns every version of url, newest first.
	History(ctx context.Context, url string) ([]domain.VersionRecord, error)

	// Diff returns the descriptive columns that differ between two versions of url.
	Diff(ctx context.Context, url string, from, to int) ([]string, error)
}
