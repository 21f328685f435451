// Package domain defines the core business entities for docsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentSnapshot: A crawled document record as delivered by the crawler
//   - URLRecord: An entry of the URL registry
//   - VersionRecord: An append-only historical snapshot of a document
//   - Record: A row exchanged with the record store
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
