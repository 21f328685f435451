package domain

import "time"

// SessionStatus is the lifecycle state of a crawl session.
type SessionStatus string

// Session states.
const (
	SessionRunning   SessionStatus = "RUNNING"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionFailed    SessionStatus = "FAILED"
)

// CrawlSession records one processed batch and its counters.
type CrawlSession struct {
	ID          string
	Status      SessionStatus
	StartedAt   time.Time
	CompletedAt time.Time

	TotalDocs     int
	NewVersions   int
	UnchangedDocs int
	FailedDocs    int
}
