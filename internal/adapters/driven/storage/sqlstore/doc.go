// Package sqlstore implements driven.RecordStore on top of sqlx.
//
// Statements are written with ? placeholders and rebound for the driver, so the
// same code serves SQLite and PostgreSQL. Table and column names are checked
// against a strict identifier pattern before they reach SQL text; values are
// always bound as parameters.
//
// Driver errors are mapped to domain.ErrStoreUnavailable for connection-level
// failures and domain.ErrStoreOperationFailed for the rest. Dialect packages
// can refine this with WithClassifier.
package sqlstore
