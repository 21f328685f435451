package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // PostgreSQL driver

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/logger"
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5

	// DefaultConnMaxLifetime is the default maximum lifetime of a connection
	DefaultConnMaxLifetime = 5 * time.Minute

	// DefaultPingTimeout is the default timeout for pinging the database
	DefaultPingTimeout = 5 * time.Second
)

// Store is the PostgreSQL-backed record store.
type Store struct {
	*sqlstore.Store
}

// Connect opens a pooled connection to PostgreSQL and verifies it.
func Connect(ctx context.Context, cfg domain.PostgresSettings) (*Store, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pinging %s:%d: %w", domain.ErrStoreUnavailable, cfg.Host, cfg.Port, err)
	}

	logger.Debug("Connected to PostgreSQL at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return NewStore(db), nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{Store: sqlstore.New(db, sqlstore.WithClassifier(classify))}
}

// classify maps SQLSTATE codes: connection exceptions (class 08), operator
// intervention (57P0x) and too_many_connections (53300) are unavailable.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	code := string(pqErr.Code)
	switch {
	case strings.HasPrefix(code, "08"),
		strings.HasPrefix(code, "57P0"),
		code == "53300":
		return domain.ErrStoreUnavailable
	default:
		return domain.ErrStoreOperationFailed
	}
}
