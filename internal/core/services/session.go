package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/logger"
)

// startSession records a running crawl session and returns its identifier.
func (s *VersionSyncService) startSession(ctx context.Context, startedAt time.Time) (string, error) {
	row, err := s.store.Insert(ctx, domain.TableSessions, domain.Record{
		domain.ColSessionStatus: string(domain.SessionRunning),
		domain.ColStartedAt:     startedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", asStoreError(err)
	}

	id := row.ID()
	if id == "" {
		return "", fmt.Errorf("%w: session insert returned no id", domain.ErrStoreOperationFailed)
	}
	return id, nil
}

// completeSession stores the final counters of the session in report.
func (s *VersionSyncService) completeSession(
	ctx context.Context,
	report *domain.SyncReport,
	total int,
	batchErr error,
) error {
	session := sessionFromReport(report, total, batchErr)
	session.CompletedAt = s.now()

	_, err := s.store.Upsert(ctx, domain.TableSessions, domain.Record{
		domain.ColID:            session.ID,
		domain.ColSessionStatus: string(session.Status),
		domain.ColStartedAt:     session.StartedAt.UTC().Format(time.RFC3339),
		domain.ColCompletedAt:   session.CompletedAt.UTC().Format(time.RFC3339),
		domain.ColTotalDocs:     session.TotalDocs,
		domain.ColNewVersions:   session.NewVersions,
		domain.ColUnchangedDocs: session.UnchangedDocs,
		domain.ColFailedDocs:    session.FailedDocs,
	}, domain.ColID, []string{domain.ColID})
	if err != nil {
		return asStoreError(err)
	}

	logger.Debug("Crawl session %s %s: %d total, %d new, %d unchanged, %d failed",
		session.ID, session.Status, session.TotalDocs, session.NewVersions,
		session.UnchangedDocs, session.FailedDocs)
	return nil
}

// sessionFromReport derives session counters from a batch report.
func sessionFromReport(report *domain.SyncReport, total int, batchErr error) domain.CrawlSession {
	status := domain.SessionCompleted
	if batchErr != nil {
		status = domain.SessionFailed
	}
	return domain.CrawlSession{
		ID:            report.SessionID,
		Status:        status,
		StartedAt:     report.StartedAt,
		TotalDocs:     total,
		NewVersions:   report.Count(domain.OutcomeInserted),
		UnchangedDocs: report.Count(domain.OutcomeSkipped),
		FailedDocs:    report.Count(domain.OutcomeFailed) + report.Count(domain.OutcomeError),
	}
}
