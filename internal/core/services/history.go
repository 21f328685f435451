package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.VersionHistory = (*HistoryService)(nil)

// HistoryService reads version history back out of the record store.
type HistoryService struct {
	store driven.RecordStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.RecordStore) *HistoryService {
	return &HistoryService{store: store}
}

// History returns every version of url, newest first.
// Returns domain.ErrNotFound when url was never synced.
func (s *HistoryService) History(ctx context.Context, url string) ([]domain.VersionRecord, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	urls, err := s.store.Select(ctx, domain.SelectQuery{
		Table:   domain.TableURLs,
		Columns: []string{domain.ColID},
		Filters: map[string]any{domain.ColURL: url},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup url: %w", asStoreError(err))
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("url %s: %w", url, domain.ErrNotFound)
	}

	rows, err := s.store.Select(ctx, domain.SelectQuery{
		Table:   domain.TableVersions,
		Filters: map[string]any{domain.ColURLID: urls[0].ID()},
		OrderBy: []domain.OrderBy{{Column: domain.ColVersion, Order: domain.Descending}},
	})
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", asStoreError(err))
	}

	versions := make([]domain.VersionRecord, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, versionFromRecord(row))
	}
	return versions, nil
}

// Diff returns the columns that differ between versions from and to of url.
func (s *HistoryService) Diff(ctx context.Context, url string, from, to int) ([]string, error) {
	versions, err := s.History(ctx, url)
	if err != nil {
		return nil, err
	}

	var a, b *domain.VersionRecord
	for i := range versions {
		if versions[i].Version == from {
			a = &versions[i]
		}
		if versions[i].Version == to {
			b = &versions[i]
		}
	}
	if a == nil {
		return nil, fmt.Errorf("version %d of %s: %w", from, url, domain.ErrNotFound)
	}
	if b == nil {
		return nil, fmt.Errorf("version %d of %s: %w", to, url, domain.ErrNotFound)
	}

	return changedFields(a, b), nil
}

// changedFields lists descriptive columns, then raw_data, whose values differ.
func changedFields(a, b *domain.VersionRecord) []string {
	fa, fb := a.DescriptiveFields(), b.DescriptiveFields()

	var changed []string
	for _, col := range domain.DescriptiveColumns {
		if fa[col] != fb[col] {
			changed = append(changed, col)
		}
	}
	if a.RawData != b.RawData {
		changed = append(changed, domain.ColRawData)
	}
	return changed
}

// versionFromRecord maps a version row onto the domain type.
func versionFromRecord(row domain.Record) domain.VersionRecord {
	v := domain.VersionRecord{
		ID:             row.ID(),
		URLID:          row.String(domain.ColURLID),
		Version:        row.Int(domain.ColVersion),
		ContentHash:    row.String(domain.ColContentHash),
		DocumentNumber: row.String(domain.ColDocumentNumber),
		Category:       row.String(domain.ColCategory),
		Field:          row.String(domain.ColField),
		IssuingBody:    row.String(domain.ColIssuingBody),
		Signer:         row.String(domain.ColSigner),
		IssuedDate:     row.String(domain.ColIssuedDate),
		EffectiveDate:  row.String(domain.ColEffectiveDate),
		Status:         row.String(domain.ColStatus),
		RawData:        row.String(domain.ColRawData),
		CreatedAt:      row.String(domain.ColCreatedAt),
	}
	if updatedAt, ok := row.OptString(domain.ColUpdatedAt); ok {
		v.UpdatedAt = &updatedAt
	}
	return v
}
