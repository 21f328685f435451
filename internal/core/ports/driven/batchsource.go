package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// BatchSource reads batches of crawled document records.
type BatchSource interface {
	// ReadBatch loads every record of the batch at path.
	ReadBatch(ctx context.Context, path string) ([]domain.DocumentSnapshot, error)

	// Watch emits the path of every batch that appears under dir until ctx is done.
	Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error)
}

// SnapshotNormaliser prepares crawled records before they are synced.
type SnapshotNormaliser interface {
	// Normalise returns a copy of doc with dates and fingerprint normalised.
	Normalise(doc domain.DocumentSnapshot) domain.DocumentSnapshot
}
