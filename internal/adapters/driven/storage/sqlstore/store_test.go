package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func setupMock(t *testing.T, driverName string, opts ...Option) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(sqlx.NewDb(db, driverName), opts...), mock
}

func TestStore_Upsert_PostgresPlaceholders(t *testing.T) {
	store, mock := setupMock(t, "postgres")

	mock.ExpectQuery("INSERT INTO doc_urls (status, url) VALUES ($1, $2) " +
		"ON CONFLICT (url) DO UPDATE SET status = excluded.status RETURNING id").
		WithArgs("crawled", "https://a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	row, err := store.Upsert(context.Background(), domain.TableURLs,
		domain.Record{domain.ColURL: "https://a", domain.ColURLStatus: "crawled"},
		domain.ColURL, []string{domain.ColID})
	require.NoError(t, err)
	assert.Equal(t, "7", row.ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Upsert_OnlyConflictKeyTouchesKey(t *testing.T) {
	store, mock := setupMock(t, "sqlite3")

	mock.ExpectQuery("INSERT INTO doc_urls (url) VALUES (?) " +
		"ON CONFLICT (url) DO UPDATE SET url = excluded.url RETURNING *").
		WithArgs("https://a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "url"}).AddRow(int64(1), []byte("https://a")))

	row, err := store.Upsert(context.Background(), domain.TableURLs,
		domain.Record{domain.ColURL: "https://a"}, domain.ColURL, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://a", row[domain.ColURL], "byte slices are returned as strings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Upsert_NeverUpdatesID(t *testing.T) {
	store, mock := setupMock(t, "postgres")

	mock.ExpectQuery("INSERT INTO crawl_sessions (id, status) VALUES ($1, $2) " +
		"ON CONFLICT (id) DO UPDATE SET status = excluded.status RETURNING id").
		WithArgs("3", "COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3"))

	_, err := store.Upsert(context.Background(), domain.TableSessions,
		domain.Record{domain.ColID: "3", domain.ColSessionStatus: "COMPLETED"},
		domain.ColID, []string{domain.ColID})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Upsert_MissingConflictValue(t *testing.T) {
	store, _ := setupMock(t, "postgres")

	_, err := store.Upsert(context.Background(), domain.TableURLs,
		domain.Record{domain.ColURLStatus: "crawled"}, domain.ColURL, nil)
	assert.ErrorIs(t, err, domain.ErrStoreOperationFailed)
}

func TestStore_Upsert_NoRowReturned(t *testing.T) {
	store, mock := setupMock(t, "postgres")

	mock.ExpectQuery("INSERT INTO doc_urls (url) VALUES ($1) " +
		"ON CONFLICT (url) DO UPDATE SET url = excluded.url RETURNING id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Upsert(context.Background(), domain.TableURLs,
		domain.Record{domain.ColURL: "https://a"}, domain.ColURL, []string{domain.ColID})
	assert.ErrorIs(t, err, domain.ErrStoreOperationFailed)
}

func TestStore_Select_BuildsQuery(t *testing.T) {
	store, mock := setupMock(t, "postgres")

	mock.ExpectQuery("SELECT version, content_hash, ngay_cap_nhat FROM doc_metadata " +
		"WHERE doc_url_id = $1 ORDER BY version DESC LIMIT $2").
		WithArgs("7", 1).
		WillReturnRows(sqlmock.NewRows([]string{"version", "content_hash", "ngay_cap_nhat"}).
			AddRow(int64(3), "h3", nil))

	rows, err := store.Select(context.Background(), domain.SelectQuery{
		Table:   domain.TableVersions,
		Columns: []string{domain.ColVersion, domain.ColContentHash, domain.ColUpdatedAt},
		Filters: map[string]any{domain.ColURLID: "7"},
		OrderBy: []domain.OrderBy{{Column: domain.ColVersion, Order: domain.Descending}},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Int(domain.ColVersion))
	assert.Nil(t, rows[0][domain.ColUpdatedAt])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Select_FiltersSortedAndDefaultOrder(t *testing.T) {
	store, mock := setupMock(t, "sqlite3")

	mock.ExpectQuery("SELECT * FROM doc_urls WHERE status = ? AND url = ? ORDER BY id ASC").
		WithArgs("failed", "https://a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := store.Select(context.Background(), domain.SelectQuery{
		Table:   domain.TableURLs,
		Filters: map[string]any{domain.ColURL: "https://a", domain.ColURLStatus: "failed"},
		OrderBy: []domain.OrderBy{{Column: domain.ColID}},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Select_RejectsInjection(t *testing.T) {
	store, _ := setupMock(t, "postgres")

	tests := []domain.SelectQuery{
		{Table: "doc_urls; DROP TABLE doc_urls"},
		{Table: domain.TableURLs, Columns: []string{"id, (SELECT 1)"}},
		{Table: domain.TableURLs, Filters: map[string]any{"1=1 OR url": "x"}},
		{Table: domain.TableURLs, OrderBy: []domain.OrderBy{{Column: "id; --"}}},
	}
	for _, q := range tests {
		_, err := store.Select(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrStoreOperationFailed)
	}
}

func TestStore_Insert_ReadsBackRow(t *testing.T) {
	store, mock := setupMock(t, "postgres")

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO doc_metadata (content_hash, doc_url_id) VALUES ($1, $2) RETURNING id").
		WithArgs("h1", "7").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery("SELECT * FROM doc_metadata WHERE id = $1").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "doc_url_id", "version", "content_hash"}).
			AddRow(int64(11), int64(7), int64(2), "h1"))
	mock.ExpectCommit()

	row, err := store.Insert(context.Background(), domain.TableVersions, domain.Record{
		domain.ColURLID:       "7",
		domain.ColContentHash: "h1",
	})
	require.NoError(t, err)
	assert.Equal(t, "11", row.ID())
	assert.Equal(t, 2, row.Int(domain.ColVersion))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert_RollsBackOnError(t *testing.T) {
	store, mock := setupMock(t, "postgres")

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO doc_metadata (doc_url_id) VALUES ($1) RETURNING id").
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	_, err := store.Insert(context.Background(), domain.TableVersions, domain.Record{domain.ColURLID: "99"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreOperationFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert_Empty(t *testing.T) {
	store, _ := setupMock(t, "postgres")

	_, err := store.Insert(context.Background(), domain.TableVersions, domain.Record{})
	assert.ErrorIs(t, err, domain.ErrStoreOperationFailed)
}

func TestStore_ErrorClassification(t *testing.T) {
	unavailable := errors.New("custom unavailable")

	tests := []struct {
		name       string
		driverErr  error
		classifier Classifier
		want       error
	}{
		{"connection done", sql.ErrConnDone, nil, domain.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, nil, domain.ErrStoreUnavailable},
		{"syntax", errors.New("syntax error at or near"), nil, domain.ErrStoreOperationFailed},
		{
			"classifier",
			unavailable,
			func(err error) error {
				if errors.Is(err, unavailable) {
					return domain.ErrStoreUnavailable
				}
				return nil
			},
			domain.ErrStoreUnavailable,
		},
		{
			"classifier declines",
			errors.New("other"),
			func(error) error { return nil },
			domain.ErrStoreOperationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.classifier != nil {
				opts = append(opts, WithClassifier(tt.classifier))
			}
			store, mock := setupMock(t, "postgres", opts...)
			mock.ExpectQuery("SELECT * FROM doc_urls").WillReturnError(tt.driverErr)

			_, err := store.Select(context.Background(), domain.SelectQuery{Table: domain.TableURLs})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.driverErr)
		})
	}
}
