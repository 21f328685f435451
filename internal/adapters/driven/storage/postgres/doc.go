// Package postgres provides the PostgreSQL record store (lib/pq via sqlx).
//
// The schema is owned by the database administrators and is not migrated here.
// The store expects:
//
//	CREATE TABLE doc_urls (
//	    id            BIGSERIAL PRIMARY KEY,
//	    url           TEXT NOT NULL UNIQUE,
//	    status        TEXT NOT NULL DEFAULT 'crawled',
//	    error_message TEXT,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE doc_metadata (
//	    id            BIGSERIAL PRIMARY KEY,
//	    doc_url_id    BIGINT NOT NULL REFERENCES doc_urls(id) ON DELETE CASCADE,
//	    version       INTEGER NOT NULL,
//	    content_hash  TEXT,
//	    ngay_cap_nhat DATE,
//	    so_hieu TEXT, loai_van_ban TEXT, linh_vuc TEXT, noi_ban_hanh TEXT,
//	    nguoi_ky TEXT, ngay_ban_hanh DATE, ngay_hieu_luc DATE, tinh_trang TEXT,
//	    raw_data      JSONB,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    UNIQUE (doc_url_id, version)
//	);
//
//	CREATE TABLE crawl_sessions (
//	    id             BIGSERIAL PRIMARY KEY,
//	    status         TEXT NOT NULL,
//	    started_at     TIMESTAMPTZ NOT NULL,
//	    completed_at   TIMESTAMPTZ,
//	    total_docs     INTEGER NOT NULL DEFAULT 0,
//	    new_versions   INTEGER NOT NULL DEFAULT 0,
//	    unchanged_docs INTEGER NOT NULL DEFAULT 0,
//	    failed_docs    INTEGER NOT NULL DEFAULT 0
//	);
//
// plus a BEFORE INSERT trigger on doc_metadata that sets version to one more
// than the highest existing version of the same doc_url_id.
package postgres
