package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestStore_UpsertURL(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`INSERT INTO doc_urls \(status, url\) VALUES \(\$1, \$2\) ON CONFLICT \(url\)`).
		WithArgs("crawled", "https://thuvienphapluat.vn/a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	row, err := store.Upsert(context.Background(), domain.TableURLs, domain.Record{
		domain.ColURL:       "https://thuvienphapluat.vn/a",
		domain.ColURLStatus: "crawled",
	}, domain.ColURL, []string{domain.ColID})
	require.NoError(t, err)
	assert.Equal(t, "42", row.ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Select_DateColumnAsString(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`SELECT version, content_hash, ngay_cap_nhat FROM doc_metadata WHERE doc_url_id = \$1`).
		WithArgs("42", 1).
		WillReturnRows(sqlmock.NewRows([]string{"version", "content_hash", "ngay_cap_nhat"}).
			AddRow(int64(2), "h2", mustDate(t, "2024-03-15")))

	rows, err := store.Select(context.Background(), domain.SelectQuery{
		Table:   domain.TableVersions,
		Columns: []string{domain.ColVersion, domain.ColContentHash, domain.ColUpdatedAt},
		Filters: map[string]any{domain.ColURLID: "42"},
		OrderBy: []domain.OrderBy{{Column: domain.ColVersion, Order: domain.Descending}},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-15", rows[0].String(domain.ColUpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"08006", domain.ErrStoreUnavailable}, // connection_failure
		{"08001", domain.ErrStoreUnavailable}, // sqlclient_unable_to_establish_sqlconnection
		{"57P01", domain.ErrStoreUnavailable}, // admin_shutdown
		{"53300", domain.ErrStoreUnavailable}, // too_many_connections
		{"23505", domain.ErrStoreOperationFailed},
		{"42P01", domain.ErrStoreOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			store, mock := setupMockStore(t)
			mock.ExpectQuery(`SELECT \* FROM doc_urls`).WillReturnError(&pq.Error{Code: pq.ErrorCode(tt.code)})

			_, err := store.Select(context.Background(), domain.SelectQuery{Table: domain.TableURLs})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClassify_NonPQError(t *testing.T) {
	assert.Nil(t, classify(assert.AnError))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

func TestDSN_ParsedByDriver(t *testing.T) {
	tests := []struct {
		name     string
		password string
		contains []string
		absent   string
	}{
		{"default empty password", "", []string{"dbname:docsync", "user:postgres"}, "password:"},
		{"password with space", "two words", []string{"dbname:docsync", "password:two words"}, ""},
		{"password with quote", "it's", []string{"dbname:docsync", "password:it's"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultSettings().Postgres
			cfg.Password = tt.password

			connector, err := pq.NewConnector(cfg.DSN())
			require.NoError(t, err)

			// The connector keeps the parsed options; its printed form lists them.
			parsed := fmt.Sprintf("%+v", connector)
			for _, want := range tt.contains {
				assert.Contains(t, parsed, want)
			}
			if tt.absent != "" {
				assert.NotContains(t, parsed, tt.absent)
			}
		})
	}
}
