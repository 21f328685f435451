// Package sqlite provides the local SQLite record store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Queries are built by the shared sqlstore package; this package owns the
// connection, the schema and the mapping of SQLite result codes to store errors.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory.
// Each migration is a pair of .up.sql and .down.sql files; applied versions are
// recorded in schema_migrations.
//
//   - doc_urls: the URL registry, unique on url
//   - doc_metadata: append-only versions; a trigger numbers them per doc_url_id
//   - crawl_sessions: one row per processed batch
//
// # Data Location
//
// By default, the database is stored at ~/.docsync/data/docsync.db
package sqlite
