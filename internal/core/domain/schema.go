package domain

// Table names used against the record store.
const (
	TableURLs     = "doc_urls"
	TableVersions = "doc_metadata"
	TableSessions = "crawl_sessions"
)

// Column names shared by the tables above.
const (
	ColID           = "id"
	ColURL          = "url"
	ColURLStatus    = "status"
	ColErrorMessage = "error_message"

	ColURLID       = "doc_url_id"
	ColVersion     = "version"
	ColContentHash = "content_hash"
	ColUpdatedAt   = "ngay_cap_nhat"
	ColRawData     = "raw_data"
	ColCreatedAt   = "created_at"

	ColDocumentNumber = "so_hieu"
	ColCategory       = "loai_van_ban"
	ColField          = "linh_vuc"
	ColIssuingBody    = "noi_ban_hanh"
	ColSigner         = "nguoi_ky"
	ColIssuedDate     = "ngay_ban_hanh"
	ColEffectiveDate  = "ngay_hieu_luc"
	ColStatus         = "tinh_trang"

	ColSessionStatus = "status"
	ColStartedAt     = "started_at"
	ColCompletedAt   = "completed_at"
	ColTotalDocs     = "total_docs"
	ColNewVersions   = "new_versions"
	ColUnchangedDocs = "unchanged_docs"
	ColFailedDocs    = "failed_docs"
)

// DescriptiveColumns lists the descriptive columns of a version row in display order.
var DescriptiveColumns = []string{
	ColDocumentNumber,
	ColCategory,
	ColField,
	ColIssuingBody,
	ColSigner,
	ColIssuedDate,
	ColEffectiveDate,
	ColStatus,
}
