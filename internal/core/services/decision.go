package services

import "github.com/custodia-labs/docsync/internal/core/domain"

// Decide applies the change-detection rule to one incoming snapshot.
//
// A new version is appended when there is no prior version, when the
// fingerprint differs, or when the incoming update timestamp is strictly
// newer than the stored one. The two change triggers are a plain OR: a changed
// hash wins regardless of timestamps, and a missing incoming timestamp never
// triggers on its own.
func Decide(latest *domain.VersionSummary, incoming *domain.DocumentSnapshot) domain.Decision {
	if latest == nil {
		return domain.Decision{Insert: true, Reason: domain.ReasonFirstVersion}
	}

	if incoming.ContentHash != latest.ContentHash {
		return domain.Decision{Insert: true, Reason: domain.ReasonHashChanged}
	}

	if incoming.HasUpdatedAt() && latest.UpdatedAt != nil &&
		domain.TimestampAfter(*incoming.UpdatedAt, *latest.UpdatedAt) {
		return domain.Decision{Insert: true, Reason: domain.ReasonNewerTimestamp}
	}

	return domain.Decision{Insert: false, Reason: domain.ReasonUnchanged}
}

// DecideInsert reports whether incoming warrants a new version row.
func DecideInsert(latest *domain.VersionSummary, incoming *domain.DocumentSnapshot) bool {
	return Decide(latest, incoming).Insert
}
