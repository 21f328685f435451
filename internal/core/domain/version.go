package domain

import "time"

// URLStatus is the crawl status recorded in the URL registry.
type URLStatus string

// Known URL statuses.
const (
	// URLStatusCrawled marks a URL whose snapshot reached the store.
	URLStatusCrawled URLStatus = "crawled"

	// URLStatusFailed marks a URL the crawler could not fetch.
	URLStatusFailed URLStatus = "failed"
)

// URLRecord is an entry of the URL registry.
type URLRecord struct {
	// ID is the opaque store-assigned identifier.
	ID string

	// URL is globally unique.
	URL string

	// Status is the last reported crawl status.
	Status URLStatus

	// ErrorMessage holds the crawler error for failed URLs.
	ErrorMessage string
}

// VersionRecord is one append-only historical snapshot of a document.
type VersionRecord struct {
	ID          string  `json:"id"`
	URLID       string  `json:"doc_url_id"`
	Version     int     `json:"version"`
	ContentHash string  `json:"content_hash"`
	UpdatedAt   *string `json:"ngay_cap_nhat"`

	DocumentNumber string `json:"so_hieu"`
	Category       string `json:"loai_van_ban"`
	Field          string `json:"linh_vuc"`
	IssuingBody    string `json:"noi_ban_hanh"`
	Signer         string `json:"nguoi_ky"`
	IssuedDate     string `json:"ngay_ban_hanh"`
	EffectiveDate  string `json:"ngay_hieu_luc"`
	Status         string `json:"tinh_trang"`
	RawData        string `json:"raw_data,omitempty"`

	CreatedAt string `json:"created_at"`
}

// DescriptiveFields returns the descriptive metadata keyed by column name.
func (v *VersionRecord) DescriptiveFields() map[string]string {
	return map[string]string{
		ColDocumentNumber: v.DocumentNumber,
		ColCategory:       v.Category,
		ColField:          v.Field,
		ColIssuingBody:    v.IssuingBody,
		ColSigner:         v.Signer,
		ColIssuedDate:     v.IssuedDate,
		ColEffectiveDate:  v.EffectiveDate,
		ColStatus:         v.Status,
	}
}

// VersionSummary is the slice of the latest version the change-detection rule needs.
type VersionSummary struct {
	Version     int
	ContentHash string
	UpdatedAt   *string
}

// DecisionReason explains why a snapshot was or was not appended.
type DecisionReason string

// Decision reasons.
const (
	ReasonFirstVersion    DecisionReason = "first_version"
	ReasonHashChanged     DecisionReason = "hash_changed"
	ReasonNewerTimestamp  DecisionReason = "newer_timestamp"
	ReasonUnchanged       DecisionReason = "unchanged"
	ReasonCrawlerReported DecisionReason = "crawler_error"
)

// Decision is the outcome of the change-detection rule for one snapshot.
type Decision struct {
	Insert bool
	Reason DecisionReason
}

// Outcome is what happened to one document during a sync.
type Outcome string

// Document outcomes.
const (
	OutcomeInserted Outcome = "inserted"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
	OutcomeError    Outcome = "error"
)

// DocumentResult reports the outcome for a single document.
type DocumentResult struct {
	URL     string         `json:"url"`
	URLID   string         `json:"url_id,omitempty"`
	Outcome Outcome        `json:"outcome"`
	Reason  DecisionReason `json:"reason,omitempty"`

	// Version is the version number of the inserted row when the store reports it.
	Version int `json:"version,omitempty"`

	// Err is set for OutcomeError when errors are collected instead of aborting.
	Err error `json:"-"`
}

// SyncReport summarises one processed batch.
type SyncReport struct {
	SessionID string           `json:"session_id,omitempty"`
	Results   []DocumentResult `json:"results"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
}

// Count returns the number of results with the given outcome.
func (r *SyncReport) Count(outcome Outcome) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Outcome == outcome {
			n++
		}
	}
	return n
}
