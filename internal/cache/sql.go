package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pokedex/internal/database"
)

// SQLBackend stores entries in the cache_entries table of the main database.
// expires_at holds unix milliseconds.
type SQLBackend struct {
	db      *sqlx.DB
	dialect database.Dialect
	now     func() time.Time
}

func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{
		db:      db,
		dialect: database.DialectOf(db),
		now:     time.Now,
	}
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var row struct {
		Value     []byte `db:"value"`
		ExpiresAt int64  `db:"expires_at"`
	}
	query := b.db.Rebind("SELECT value, expires_at FROM cache_entries WHERE cache_key = ?")
	if err := b.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("db.GetContext > %w", err)
	}
	if row.ExpiresAt <= b.now().UnixMilli() {
		// expired rows are dropped lazily
		_ = b.Delete(ctx, key)
		return nil, ErrMiss
	}
	return row.Value, nil
}

func (b *SQLBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var query string
	switch b.dialect {
	case database.DialectMySQL:
		query = `INSERT INTO cache_entries (cache_key, value, expires_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value), expires_at = VALUES(expires_at)`
	default:
		query = `INSERT INTO cache_entries (cache_key, value, expires_at) VALUES (?, ?, ?)
ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`
	}
	expiresAt := b.now().Add(ttl).UnixMilli()
	if _, err := b.db.ExecContext(ctx, b.db.Rebind(query), key, value, expiresAt); err != nil {
		return fmt.Errorf("db.ExecContext > %w", err)
	}
	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	query := b.db.Rebind("DELETE FROM cache_entries WHERE cache_key = ?")
	if _, err := b.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("db.ExecContext > %w", err)
	}
	return nil
}

func (b *SQLBackend) DeletePrefix(ctx context.Context, prefix string) error {
	var (
		query string
		args  []any
	)
	switch b.dialect {
	case database.DialectMySQL:
		query = "DELETE FROM cache_entries WHERE LEFT(cache_key, CHAR_LENGTH(?)) = ?"
		args = []any{prefix, prefix}
	case database.DialectPostgres:
		query = "DELETE FROM cache_entries WHERE starts_with(cache_key, ?)"
		args = []any{prefix}
	default:
		query = "DELETE FROM cache_entries WHERE substr(cache_key, 1, length(?)) = ?"
		args = []any{prefix, prefix}
	}
	if _, err := b.db.ExecContext(ctx, b.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("db.ExecContext > %w", err)
	}
	return nil
}

// DeleteExpired removes every expired row and returns how many were removed.
func (b *SQLBackend) DeleteExpired(ctx context.Context) (int, error) {
	query := b.db.Rebind("DELETE FROM cache_entries WHERE expires_at <= ?")
	result, err := b.db.ExecContext(ctx, query, b.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext > %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected > %w", err)
	}
	return int(n), nil
}
