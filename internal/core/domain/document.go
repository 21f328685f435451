package domain

import "encoding/json"

// MissingValue is what the source publishes when a field has no value yet.
const MissingValue = "Dữ liệu đang cập nhật"

// DocumentSnapshot is one crawled document record as handed over by the crawler.
// JSON field names follow the crawler output so batch files decode directly.
type DocumentSnapshot struct {
	// URL is the crawl target and the key of the URL registry.
	URL string `json:"url"`

	// ContentHash is the upstream content fingerprint.
	ContentHash string `json:"content_hash"`

	// UpdatedAt is the source's own "last updated" date (ngay_cap_nhat).
	// Nil when the page did not publish one.
	UpdatedAt *string `json:"ngay_cap_nhat,omitempty"`

	// DocumentNumber is the official document number (so_hieu).
	DocumentNumber string `json:"so_hieu"`

	// Category is the document type (loai_van_ban).
	Category string `json:"loai_van_ban"`

	// Field is the legal domain the document belongs to (linh_vuc).
	Field string `json:"linh_vuc"`

	// IssuingBody is the authority that issued the document (noi_ban_hanh).
	IssuingBody string `json:"noi_ban_hanh"`

	// Signer is the person who signed the document (nguoi_ky).
	Signer string `json:"nguoi_ky"`

	// IssuedDate is the issuance date (ngay_ban_hanh).
	IssuedDate string `json:"ngay_ban_hanh"`

	// EffectiveDate is the date the document takes effect (ngay_hieu_luc).
	EffectiveDate string `json:"ngay_hieu_luc"`

	// Status is the validity status (tinh_trang).
	Status string `json:"tinh_trang"`

	// RawData is the raw crawled payload, stored verbatim.
	RawData json.RawMessage `json:"raw_data,omitempty"`

	// Error is set by the crawler when fetching this URL failed.
	Error string `json:"error,omitempty"`
}

// HasUpdatedAt reports whether the snapshot carries an update timestamp.
func (d *DocumentSnapshot) HasUpdatedAt() bool {
	return d.UpdatedAt != nil && *d.UpdatedAt != ""
}

// Failed reports whether the crawler marked this record as failed.
func (d *DocumentSnapshot) Failed() bool {
	return d.Error != ""
}

// DescriptiveFields returns the descriptive metadata keyed by column name.
// The map is what gets fingerprinted and copied into a version row.
func (d *DocumentSnapshot) DescriptiveFields() map[string]string {
	return map[string]string{
		ColDocumentNumber: d.DocumentNumber,
		ColCategory:       d.Category,
		ColField:          d.Field,
		ColIssuingBody:    d.IssuingBody,
		ColSigner:         d.Signer,
		ColIssuedDate:     d.IssuedDate,
		ColEffectiveDate:  d.EffectiveDate,
		ColStatus:         d.Status,
	}
}
