package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pokedex/internal/config"
	"github.com/at-ishikawa/pokedex/internal/query"
	"github.com/at-ishikawa/pokedex/internal/testutil"
)

func newApp(t *testing.T, backend string, opts ...testutil.ConfigOption) (*App, *testutil.FakePokeAPI) {
	t.Helper()
	fake := testutil.NewFakePokeAPI(t)
	dir := t.TempDir()
	opts = append([]testutil.ConfigOption{testutil.WithCacheBackend(backend)}, opts...)
	cfg, err := config.Load(testutil.SetupTestConfig(t, dir, fake.URL(), opts...))
	require.NoError(t, err)

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Migrate(context.Background()))
	return a, fake
}

func TestNew_EndToEnd(t *testing.T) {
	for _, backend := range []string{"memory", "sql", "none"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			a, fake := newApp(t, backend)
			assert.Equal(t, backend == "none", a.Cache == nil)

			fake.AddRange(1, 12, "grass")
			fake.AddPokemon(4, testutil.PokemonJSON(4, "charmander", "fire"))

			summary, err := a.Seeder.SeedRange(ctx, 1, 12, 5)
			require.NoError(t, err)
			assert.Equal(t, 12, summary.Succeeded)

			result, err := a.Engine.Query(ctx, query.Params{Sort: query.SortFavoritesFirst, UserID: "ash", PerPage: 3})
			require.NoError(t, err)
			assert.Equal(t, 1, result.Records[0].ExternalID)

			_, err = a.Favorites.Add(ctx, "ash", 4)
			require.NoError(t, err)

			result, err = a.Engine.Query(ctx, query.Params{Sort: query.SortFavoritesFirst, UserID: "ash", PerPage: 3})
			require.NoError(t, err)
			assert.Equal(t, "charmander", result.Records[0].Name)

			result, err = a.Engine.Query(ctx, query.Params{Type: "fire"})
			require.NoError(t, err)
			assert.Equal(t, 1, result.Pagination.Total)

			cleared, err := a.Seeder.Clear(ctx)
			require.NoError(t, err)
			assert.Equal(t, 12, cleared.Deleted)

			result, err = a.Engine.Query(ctx, query.Params{Sort: query.SortFavoritesFirst, UserID: "ash"})
			require.NoError(t, err)
			assert.Empty(t, result.Records)
		})
	}
}

func TestNew_GenerationFromUpstream(t *testing.T) {
	ctx := context.Background()
	a, fake := newApp(t, "memory")
	fake.AddGeneration("generation-vi", 650, 651)
	fake.AddRange(650, 651)

	summary, err := a.Seeder.SeedGeneration(ctx, "generation-vi")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	// one generation lookup and two species
	assert.Equal(t, int64(3), a.Client.Metrics().Successes)
}

func TestNew_PayloadCache(t *testing.T) {
	tests := []struct {
		backend      string
		payloadTTL   string
		wantRequests int
	}{
		{backend: "memory", payloadTTL: "24h", wantRequests: 1},
		{backend: "sql", payloadTTL: "24h", wantRequests: 1},
		{backend: "memory", payloadTTL: "0s", wantRequests: 2},
		{backend: "none", payloadTTL: "24h", wantRequests: 2},
	}
	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.payloadTTL, func(t *testing.T) {
			ctx := context.Background()
			a, fake := newApp(t, tt.backend, testutil.WithPayloadTTL(tt.payloadTTL))
			fake.AddRange(1, 2, "grass")

			for range 2 {
				summary, err := a.Seeder.SeedRange(ctx, 1, 2, 2)
				require.NoError(t, err)
				assert.Equal(t, 2, summary.Succeeded)
			}
			assert.Equal(t, tt.wantRequests, fake.Requests("/pokemon/1"))

			// update always reaches upstream
			summary, err := a.Seeder.Update(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Succeeded)
			assert.Equal(t, tt.wantRequests+1, fake.Requests("/pokemon/1"))
		})
	}
}
