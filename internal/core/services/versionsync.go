package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure VersionSyncService implements the interface.
var _ driving.VersionSync = (*VersionSyncService)(nil)

// maxErrorMessageRunes caps the crawler error stored on a failed URL.
const maxErrorMessageRunes = 500

// SyncOptions controls batch behaviour of the version sync.
type SyncOptions struct {
	// ContinueOnError logs and records per-document store errors instead of
	// aborting the batch on the first one.
	ContinueOnError bool

	// TrackSessions records a crawl session row around every batch.
	TrackSessions bool
}

// VersionSyncService appends a version row for every crawled document whose
// content changed since the latest stored version of its URL.
//
// Documents are processed one after another; nothing is carried from one
// document to the next. Uniqueness of URL records relies on the store's
// upsert-on-conflict (see driven.RecordStore).
type VersionSyncService struct {
	store driven.RecordStore
	opts  SyncOptions
	now   func() time.Time
}

// NewVersionSyncService creates a new version sync service.
func NewVersionSyncService(store driven.RecordStore, opts SyncOptions) *VersionSyncService {
	return &VersionSyncService{
		store: store,
		opts:  opts,
		now:   time.Now,
	}
}

// Process syncs every document and returns docs unchanged.
// The slice is returned even when an error aborts the batch.
func (s *VersionSyncService) Process(
	ctx context.Context,
	docs []domain.DocumentSnapshot,
) ([]domain.DocumentSnapshot, error) {
	if _, err := s.ProcessWithReport(ctx, docs); err != nil {
		return docs, err
	}
	return docs, nil
}

// ProcessWithReport syncs every document and reports what happened to each.
// On abort the report holds the results up to and including the failing document.
func (s *VersionSyncService) ProcessWithReport(
	ctx context.Context,
	docs []domain.DocumentSnapshot,
) (*domain.SyncReport, error) {
	report := &domain.SyncReport{
		StartedAt: s.now(),
		Results:   make([]domain.DocumentResult, 0, len(docs)),
	}

	if s.opts.TrackSessions {
		sessionID, err := s.startSession(ctx, report.StartedAt)
		if err != nil {
			return report, fmt.Errorf("start session: %w", err)
		}
		report.SessionID = sessionID
		logger.Debug("Started crawl session %s", sessionID)
	}

	logger.Section("Version Sync")
	logger.Info("Processing %d documents", len(docs))

	var batchErr error
	for i := range docs {
		if err := ctx.Err(); err != nil {
			batchErr = err
			break
		}

		result, err := s.processOne(ctx, &docs[i])
		if err != nil {
			if !s.opts.ContinueOnError {
				result.Outcome = domain.OutcomeError
				result.Err = err
				report.Results = append(report.Results, result)
				batchErr = fmt.Errorf("process %s: %w", docs[i].URL, err)
				break
			}
			logger.Warn("Failed to process %s: %v", docs[i].URL, err)
			result.Outcome = domain.OutcomeError
			result.Err = err
		}
		report.Results = append(report.Results, result)
	}

	report.Duration = s.now().Sub(report.StartedAt)
	logger.Info("Sync complete: %d inserted, %d skipped, %d failed, %d errors",
		report.Count(domain.OutcomeInserted), report.Count(domain.OutcomeSkipped),
		report.Count(domain.OutcomeFailed), report.Count(domain.OutcomeError))

	if s.opts.TrackSessions {
		if err := s.completeSession(ctx, report, len(docs), batchErr); err != nil {
			return report, errors.Join(batchErr, fmt.Errorf("complete session: %w", err))
		}
	}

	return report, batchErr
}

// processOne runs the four sequential steps for a single document.
func (s *VersionSyncService) processOne(
	ctx context.Context,
	doc *domain.DocumentSnapshot,
) (domain.DocumentResult, error) {
	result := domain.DocumentResult{URL: doc.URL}

	if doc.URL == "" {
		return result, fmt.Errorf("%w: document has no url", domain.ErrInvalidInput)
	}

	if doc.Failed() {
		urlID, err := s.upsertURL(ctx, doc.URL, domain.URLStatusFailed, truncateRunes(doc.Error, maxErrorMessageRunes))
		if err != nil {
			return result, fmt.Errorf("mark url failed: %w", err)
		}
		result.URLID = urlID
		result.Outcome = domain.OutcomeFailed
		result.Reason = domain.ReasonCrawlerReported
		logger.Info("Marked failed %s", doc.URL)
		return result, nil
	}

	// 1. UPSERT URL REGISTRY
	urlID, err := s.upsertURL(ctx, doc.URL, domain.URLStatusCrawled, "")
	if err != nil {
		return result, fmt.Errorf("upsert url: %w", err)
	}
	result.URLID = urlID

	// 2. FETCH LATEST VERSION
	latest, err := s.latestVersion(ctx, urlID)
	if err != nil {
		return result, fmt.Errorf("fetch latest version: %w", err)
	}

	// 3. DECIDE
	decision := Decide(latest, doc)
	result.Reason = decision.Reason
	if !decision.Insert {
		result.Outcome = domain.OutcomeSkipped
		logger.Info("Skipped (unchanged) %s", doc.URL)
		return result, nil
	}

	// 4. INSERT NEW VERSION
	row, err := s.store.Insert(ctx, domain.TableVersions, versionRow(urlID, doc))
	if err != nil {
		return result, fmt.Errorf("insert version: %w", asStoreError(err))
	}
	result.Outcome = domain.OutcomeInserted
	result.Version = row.Int(domain.ColVersion)
	logger.Info("Inserted version %d for %s (%s)", result.Version, doc.URL, decision.Reason)

	return result, nil
}

// upsertURL registers url with the given status and returns its identifier.
func (s *VersionSyncService) upsertURL(
	ctx context.Context,
	url string,
	status domain.URLStatus,
	errorMessage string,
) (string, error) {
	data := domain.Record{
		domain.ColURL:       url,
		domain.ColURLStatus: string(status),
	}
	if status == domain.URLStatusFailed {
		data[domain.ColErrorMessage] = errorMessage
	}

	row, err := s.store.Upsert(ctx, domain.TableURLs, data, domain.ColURL, []string{domain.ColID})
	if err != nil {
		return "", asStoreError(err)
	}

	id := row.ID()
	if id == "" {
		return "", fmt.Errorf("%w: upsert of %s returned no id", domain.ErrStoreOperationFailed, url)
	}
	return id, nil
}

// latestVersion returns the newest version summary for urlID, or nil when none exists.
func (s *VersionSyncService) latestVersion(ctx context.Context, urlID string) (*domain.VersionSummary, error) {
	rows, err := s.store.Select(ctx, domain.SelectQuery{
		Table:   domain.TableVersions,
		Columns: []string{domain.ColVersion, domain.ColContentHash, domain.ColUpdatedAt},
		Filters: map[string]any{domain.ColURLID: urlID},
		OrderBy: []domain.OrderBy{{Column: domain.ColVersion, Order: domain.Descending}},
		Limit:   1,
	})
	if err != nil {
		return nil, asStoreError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	summary := &domain.VersionSummary{
		Version:     rows[0].Int(domain.ColVersion),
		ContentHash: rows[0].String(domain.ColContentHash),
	}
	if updatedAt, ok := rows[0].OptString(domain.ColUpdatedAt); ok {
		summary.UpdatedAt = &updatedAt
	}
	return summary, nil
}

// versionRow builds the version row for doc.
func versionRow(urlID string, doc *domain.DocumentSnapshot) domain.Record {
	row := domain.Record{
		domain.ColURLID:       urlID,
		domain.ColContentHash: doc.ContentHash,
		domain.ColUpdatedAt:   nil,
		domain.ColRawData:     nil,
	}
	for col, val := range doc.DescriptiveFields() {
		row[col] = val
	}
	// Date columns hold NULL rather than "" when the source has no date.
	for _, col := range []string{domain.ColIssuedDate, domain.ColEffectiveDate} {
		if v := strings.TrimSpace(row[col].(string)); v == "" || v == domain.MissingValue {
			row[col] = nil
		}
	}
	if doc.HasUpdatedAt() {
		row[domain.ColUpdatedAt] = *doc.UpdatedAt
	}
	if len(doc.RawData) > 0 {
		row[domain.ColRawData] = string(doc.RawData)
	}
	return row
}

// asStoreError makes sure err carries one of the store sentinels.
func asStoreError(err error) error {
	if domain.IsStoreError(err) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreOperationFailed, err)
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
