package cache

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pokedex/internal/testutil"
)

// clock is a manually advanced time source.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type backendFixture struct {
	backend Backend
	// advance moves the backend's notion of time forward
	advance func(time.Duration)
}

func newFixtures(t *testing.T) map[string]backendFixture {
	t.Helper()

	memClock := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	memory := NewMemoryBackend(MemoryConfig{Capacity: 100, NumShards: 2, TTL: time.Hour, EvictionPercentage: 10})
	memory.now = memClock.Now

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sqlClock := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	sqlBackend := NewSQLBackend(testutil.NewSQLiteDB(t))
	sqlBackend.now = sqlClock.Now

	return map[string]backendFixture{
		"memory": {backend: memory, advance: memClock.Advance},
		"redis":  {backend: NewRedisBackend(client), advance: mr.FastForward},
		"sql":    {backend: sqlBackend, advance: sqlClock.Advance},
	}
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for name, fixture := range newFixtures(t) {
		b := fixture.backend
		t.Run(name, func(t *testing.T) {
			t.Run("miss", func(t *testing.T) {
				_, err := b.Get(ctx, "absent")
				assert.ErrorIs(t, err, ErrMiss)
			})

			t.Run("set overwrites", func(t *testing.T) {
				require.NoError(t, b.Set(ctx, "k", []byte("v1"), time.Minute))
				require.NoError(t, b.Set(ctx, "k", []byte("v2"), time.Minute))
				got, err := b.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, []byte("v2"), got)

				require.NoError(t, b.Delete(ctx, "k"))
				_, err = b.Get(ctx, "k")
				assert.ErrorIs(t, err, ErrMiss)
			})

			t.Run("expiry", func(t *testing.T) {
				require.NoError(t, b.Set(ctx, "short", []byte("x"), time.Second))
				require.NoError(t, b.Set(ctx, "long", []byte("y"), time.Minute))
				fixture.advance(2 * time.Second)

				_, err := b.Get(ctx, "short")
				assert.ErrorIs(t, err, ErrMiss)
				got, err := b.Get(ctx, "long")
				require.NoError(t, err)
				assert.Equal(t, []byte("y"), got)
			})

			t.Run("delete prefix", func(t *testing.T) {
				keys := []string{
					"list|sort=id|user=|q=|type=|page=1|per=20",
					"list|sort=favorites_first|user=ash|q=|type=|page=1|per=20",
					"list|sort=favorites_first|user=ash2|q=|type=|page=1|per=20",
					"list|sort=favorites_first|user=misty|q=|type=|page=1|per=20",
					"other|%_*?[x]",
				}
				for _, key := range keys {
					require.NoError(t, b.Set(ctx, key, []byte(key), time.Minute))
				}

				require.NoError(t, b.DeletePrefix(ctx, "list|sort=favorites_first|user=ash|"))
				assert.Equal(t, []string{keys[0], keys[2], keys[3], keys[4]}, present(t, b, keys))

				require.NoError(t, b.DeletePrefix(ctx, "other|%_"))
				assert.Equal(t, []string{keys[0], keys[2], keys[3]}, present(t, b, keys))

				require.NoError(t, b.DeletePrefix(ctx, "list|"))
				assert.Empty(t, present(t, b, keys))
			})

			t.Run("empty prefix clears everything", func(t *testing.T) {
				require.NoError(t, b.Set(ctx, "a", []byte("1"), time.Minute))
				require.NoError(t, b.Set(ctx, "b", []byte("2"), time.Minute))
				require.NoError(t, b.DeletePrefix(ctx, ""))
				assert.Empty(t, present(t, b, []string{"a", "b"}))
			})
		})
	}
}

func present(t *testing.T, b Backend, keys []string) []string {
	t.Helper()
	var found []string
	for _, key := range keys {
		_, err := b.Get(context.Background(), key)
		if err == nil {
			found = append(found, key)
			continue
		}
		require.ErrorIs(t, err, ErrMiss)
	}
	return found
}

func TestRedisBackend_DeletePrefixBatches(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	b := NewRedisBackend(client)

	for i := 0; i < redisScanCount*2+5; i++ {
		require.NoError(t, b.Set(ctx, fmt.Sprintf("list|%d", i), []byte("x"), time.Minute))
	}
	require.NoError(t, b.Set(ctx, "keep", []byte("x"), time.Minute))

	require.NoError(t, b.DeletePrefix(ctx, "list|"))
	assert.Equal(t, []string{"keep"}, mr.Keys())
}

func TestRedisBackend_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedisBackend(client).Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestSQLBackend_MySQLQueries(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	b := NewSQLBackend(sqlx.NewDb(mockDB, "mysql"))
	b.now = func() time.Time { return time.UnixMilli(1000) }

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE value = VALUES(value)")).
		WithArgs("k", []byte("v"), int64(61000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cache_entries WHERE LEFT(cache_key, CHAR_LENGTH(?)) = ?")).
		WithArgs("list|", "list|").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cache_entries WHERE expires_at <= ?")).
		WithArgs(int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, b.DeletePrefix(ctx, "list|"))
	n, err := b.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBackend_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewSQLBackend(testutil.NewSQLiteDB(t))
	b.now = func() time.Time { return now }

	require.NoError(t, b.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, b.Set(ctx, "b", []byte("2"), time.Hour))
	now = now.Add(time.Minute)

	n, err := b.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := b.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestBackends_DeleteExpired(t *testing.T) {
	ctx := context.Background()

	for name, fixture := range newFixtures(t) {
		purger, ok := fixture.backend.(Purger)
		if !ok {
			continue
		}
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fixture.backend.Set(ctx, "short", []byte("1"), time.Second))
			require.NoError(t, fixture.backend.Set(ctx, "long", []byte("2"), time.Hour))
			fixture.advance(time.Minute)

			n, err := purger.DeleteExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			n, err = purger.DeleteExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			got, err := fixture.backend.Get(ctx, "long")
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), got)
		})
	}
}
