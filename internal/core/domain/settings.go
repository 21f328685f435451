package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// StoreDriver selects the record store backend.
type StoreDriver string

// Available store drivers.
const (
	// StoreSQLite is a local SQLite database file.
	StoreSQLite StoreDriver = "sqlite"

	// StorePostgres is a PostgreSQL server.
	StorePostgres StoreDriver = "postgres"

	// StoreMemory keeps everything in process memory. Nothing survives the run.
	StoreMemory StoreDriver = "memory"
)

// IsValid returns true if the store driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreSQLite, StorePostgres, StoreMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// Description returns a human-readable description of the driver.
func (d StoreDriver) Description() string {
	switch d {
	case StoreSQLite:
		return "SQLite (local file)"
	case StorePostgres:
		return "PostgreSQL"
	case StoreMemory:
		return "In-memory (not persisted)"
	default:
		return "Unknown"
	}
}

// PostgresSettings holds PostgreSQL connection settings.
type PostgresSettings struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // connection setting, never printed
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq key/value connection string.
// Empty values are left out so the driver defaults apply. Values with
// spaces, quotes or backslashes are single-quoted.
func (p PostgresSettings) DSN() string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteDSNValue(value))
		}
	}

	add("host", p.Host)
	if p.Port != 0 {
		add("port", strconv.Itoa(p.Port))
	}
	add("user", p.User)
	add("password", p.Password)
	add("dbname", p.DBName)
	add("sslmode", p.SSLMode)
	return strings.Join(parts, " ")
}

// dsnEscaper escapes a value for use inside single quotes.
var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

// SyncSettings controls batch processing behaviour.
type SyncSettings struct {
	// ContinueOnError logs and counts per-document store errors instead of aborting the batch.
	ContinueOnError bool

	// TrackSessions records a crawl_sessions row per batch.
	TrackSessions bool

	// FillMissingHash computes a content hash for records that arrive without one.
	FillMissingHash bool
}

// Settings is the resolved application configuration.
type Settings struct {
	Driver   StoreDriver
	DataDir  string
	Postgres PostgresSettings
	Sync     SyncSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Driver: StoreSQLite,
		Postgres: PostgresSettings{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "docsync",
			SSLMode: "disable",
		},
		Sync: SyncSettings{
			TrackSessions:   true,
			FillMissingHash: true,
		},
	}
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	if !s.Driver.IsValid() {
		return fmt.Errorf("%w: store driver %q", ErrUnsupportedType, s.Driver)
	}
	if s.Driver == StorePostgres {
		if s.Postgres.Host == "" {
			return fmt.Errorf("%w: postgres host is required", ErrInvalidInput)
		}
		if s.Postgres.Port < 1 || s.Postgres.Port > 65535 {
			return fmt.Errorf("%w: postgres port %s out of range", ErrInvalidInput, strconv.Itoa(s.Postgres.Port))
		}
		if s.Postgres.DBName == "" {
			return fmt.Errorf("%w: postgres dbname is required", ErrInvalidInput)
		}
	}
	return nil
}
