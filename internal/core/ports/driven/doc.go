// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - RecordStore: Generic table store (SQLite, PostgreSQL, in-memory)
//   - ConfigStore: Application configuration
//   - BatchSource: Reads and watches crawler batch files
//   - SnapshotNormaliser: Cleans crawled records before sync
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
