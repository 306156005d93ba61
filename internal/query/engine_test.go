package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/pokedex/internal/cache"
	"github.com/at-ishikawa/pokedex/internal/favorites"
	mock_favorites "github.com/at-ishikawa/pokedex/internal/mocks/favorites"
	mock_species "github.com/at-ishikawa/pokedex/internal/mocks/species"
	"github.com/at-ishikawa/pokedex/internal/species"
	"github.com/at-ishikawa/pokedex/internal/testutil"
)

type store struct {
	db        *sqlx.DB
	species   *species.DBRepository
	favorites *favorites.DBRepository
}

func newStore(t *testing.T) *store {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return &store{
		db:        db,
		species:   species.NewDBRepository(db),
		favorites: favorites.NewDBRepository(db),
	}
}

func (s *store) add(t *testing.T, id int, name string, types ...string) {
	t.Helper()
	if len(types) == 0 {
		types = []string{"normal"}
	}
	require.NoError(t, s.species.Upsert(context.Background(), &species.Record{
		ExternalID: id,
		Name:       name,
		Types:      types,
		Abilities:  species.Abilities{"run-away"},
		Stats:      species.Stats{"hp": 10},
		Sprites:    species.Sprites{},
	}))
}

func (s *store) addRange(t *testing.T, start, end int) {
	t.Helper()
	for id := start; id <= end; id++ {
		s.add(t, id, fmt.Sprintf("species-%03d", id))
	}
}

func (s *store) favorite(t *testing.T, userID string, ids ...int) {
	t.Helper()
	for _, id := range ids {
		_, err := s.favorites.Add(context.Background(), userID, id)
		require.NoError(t, err)
	}
}

func ids(records []species.Record) []int {
	got := make([]int, 0, len(records))
	for _, r := range records {
		got = append(got, r.ExternalID)
	}
	return got
}

func names(records []species.Record) []string {
	got := make([]string, 0, len(records))
	for _, r := range records {
		got = append(got, r.Name)
	}
	return got
}

func newMemoryLayer() *cache.Layer {
	return cache.NewLayer(cache.NewMemoryBackend(cache.MemoryConfig{
		Capacity:           1000,
		NumShards:          4,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}), time.Second, nil)
}

func TestEngine_SearchAndFilter(t *testing.T) {
	s := newStore(t)
	s.add(t, 1, "bulbasaur", "grass", "poison")
	s.add(t, 4, "charmander", "fire")
	s.add(t, 5, "charmeleon", "fire")
	s.add(t, 6, "charizard", "fire", "flying")
	s.add(t, 25, "pikachu", "electric")
	s.add(t, 109, "koffing", "poison")

	engine := NewEngine(s.species, s.favorites, nil, Options{})

	tests := []struct {
		name      string
		params    Params
		wantNames []string
		wantTotal int
	}{
		{
			name:      "substring search",
			params:    Params{Search: "char"},
			wantNames: []string{"charmander", "charmeleon", "charizard"},
			wantTotal: 3,
		},
		{
			name:      "search is case-insensitive",
			params:    Params{Search: "  CHAR "},
			wantNames: []string{"charmander", "charmeleon", "charizard"},
			wantTotal: 3,
		},
		{
			name:      "empty search matches all",
			params:    Params{},
			wantNames: []string{"bulbasaur", "charmander", "charmeleon", "charizard", "pikachu", "koffing"},
			wantTotal: 6,
		},
		{
			name:      "secondary type matches",
			params:    Params{Type: "poison"},
			wantNames: []string{"bulbasaur", "koffing"},
			wantTotal: 2,
		},
		{
			name:      "primary type matches",
			params:    Params{Type: "Grass"},
			wantNames: []string{"bulbasaur"},
			wantTotal: 1,
		},
		{
			name:      "search and type combined",
			params:    Params{Search: "char", Type: "flying"},
			wantNames: []string{"charizard"},
			wantTotal: 1,
		},
		{
			name:      "name sort",
			params:    Params{Search: "char", Sort: SortName},
			wantNames: []string{"charizard", "charmander", "charmeleon"},
			wantTotal: 3,
		},
		{
			name:      "no match",
			params:    Params{Search: "mew"},
			wantNames: []string{},
			wantTotal: 0,
		},
		{
			name:      "wildcards are literal",
			params:    Params{Search: "%"},
			wantNames: []string{},
			wantTotal: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Query(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names(got.Records))
			assert.Equal(t, tt.wantTotal, got.Pagination.Total)
		})
	}
}

func TestEngine_FavoritesFirst(t *testing.T) {
	s := newStore(t)
	s.addRange(t, 1, 20)
	s.favorite(t, "ash", 9, 7, 8)

	engine := NewEngine(s.species, s.favorites, nil, Options{})

	tests := []struct {
		name     string
		params   Params
		wantIDs  []int
		wantPage Pagination
	}{
		{
			name:     "first page starts with favorites",
			params:   Params{Sort: SortFavoritesFirst, UserID: "ash", Page: 1, PerPage: 5},
			wantIDs:  []int{7, 8, 9, 1, 2},
			wantPage: Pagination{Page: 1, PerPage: 5, Total: 20, Pages: 4, HasNext: true},
		},
		{
			name:     "second page continues with the rest",
			params:   Params{Sort: SortFavoritesFirst, UserID: "ash", Page: 2, PerPage: 5},
			wantIDs:  []int{3, 4, 5, 6, 10},
			wantPage: Pagination{Page: 2, PerPage: 5, Total: 20, Pages: 4, HasNext: true, HasPrev: true},
		},
		{
			name:     "filter applies before the partition",
			params:   Params{Sort: SortFavoritesFirst, UserID: "ash", Search: "species-00", PerPage: 5},
			wantIDs:  []int{7, 8, 9, 1, 2},
			wantPage: Pagination{Page: 1, PerPage: 5, Total: 9, Pages: 2, HasNext: true},
		},
		{
			name:     "user without favorites gets id order",
			params:   Params{Sort: SortFavoritesFirst, UserID: "misty", PerPage: 5},
			wantIDs:  []int{1, 2, 3, 4, 5},
			wantPage: Pagination{Page: 1, PerPage: 5, Total: 20, Pages: 4, HasNext: true},
		},
		{
			name:     "no user gets id order",
			params:   Params{Sort: SortFavoritesFirst, PerPage: 5},
			wantIDs:  []int{1, 2, 3, 4, 5},
			wantPage: Pagination{Page: 1, PerPage: 5, Total: 20, Pages: 4, HasNext: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Query(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got.Records))
			assert.Equal(t, tt.wantPage, got.Pagination)
		})
	}
}

func TestEngine_Pagination(t *testing.T) {
	s := newStore(t)
	s.addRange(t, 1, 20)
	engine := NewEngine(s.species, s.favorites, nil, Options{DefaultPerPage: 20, MaxPerPage: 100})

	tests := []struct {
		name     string
		params   Params
		wantIDs  []int
		wantPage Pagination
	}{
		{
			name:     "last page",
			params:   Params{Page: 4, PerPage: 5},
			wantIDs:  []int{16, 17, 18, 19, 20},
			wantPage: Pagination{Page: 4, PerPage: 5, Total: 20, Pages: 4, HasPrev: true},
		},
		{
			name:     "past the last page",
			params:   Params{Page: 5, PerPage: 5},
			wantIDs:  []int{},
			wantPage: Pagination{Page: 5, PerPage: 5, Total: 20, Pages: 4, HasPrev: true},
		},
		{
			name:     "defaults",
			params:   Params{Page: 0, PerPage: 0},
			wantIDs:  ids(seq(1, 20)),
			wantPage: Pagination{Page: 1, PerPage: 20, Total: 20, Pages: 1},
		},
		{
			name:     "per_page is capped",
			params:   Params{PerPage: 1000},
			wantIDs:  ids(seq(1, 20)),
			wantPage: Pagination{Page: 1, PerPage: 100, Total: 20, Pages: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Query(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got.Records))
			assert.Equal(t, tt.wantPage, got.Pagination)
		})
	}

	t.Run("favorites-first past the last page", func(t *testing.T) {
		s.favorite(t, "ash", 20)
		got, err := engine.Query(context.Background(), Params{Sort: SortFavoritesFirst, UserID: "ash", Page: 3, PerPage: 10})
		require.NoError(t, err)
		assert.Empty(t, got.Records)
		assert.Equal(t, 20, got.Pagination.Total)
	})
}

func seq(start, end int) []species.Record {
	var records []species.Record
	for id := start; id <= end; id++ {
		records = append(records, species.Record{ExternalID: id})
	}
	return records
}

func TestEngine_InvalidSort(t *testing.T) {
	engine := NewEngine(nil, nil, nil, Options{})
	_, err := engine.Query(context.Background(), Params{Sort: "weight"})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestEngine_CacheIsolation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.addRange(t, 1, 20)
	s.favorite(t, "ash", 7)
	s.favorite(t, "misty", 9)

	layer := newMemoryLayer()
	engine := NewEngine(s.species, s.favorites, layer, Options{})
	direct := NewEngine(s.species, s.favorites, nil, Options{})
	invalidator := NewInvalidator(layer)
	service := favorites.NewService(s.favorites, s.species, invalidator)

	query := func(user string) []int {
		t.Helper()
		params := Params{Sort: SortFavoritesFirst, UserID: user, PerPage: 3}
		got, err := engine.Query(ctx, params)
		require.NoError(t, err)
		want, err := direct.Query(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		return ids(got.Records)
	}

	assert.Equal(t, []int{7, 1, 2}, query("ash"))
	assert.Equal(t, []int{9, 1, 2}, query("misty"))
	// served from the cache, still per user
	assert.Equal(t, []int{7, 1, 2}, query("ash"))
	assert.Equal(t, []int{9, 1, 2}, query("misty"))
	assert.Equal(t, int64(2), layer.Stats().Hits)

	_, err := service.Add(ctx, "ash", 3)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 7, 1}, query("ash"))
	assert.Equal(t, []int{9, 1, 2}, query("misty"))
	// ash recomputed, misty still cached
	assert.Equal(t, int64(3), layer.Stats().Hits)

	var cached Result
	hit, err := layer.Get(ctx, CacheKey(Params{Sort: SortFavoritesFirst, UserID: "misty", Page: 1, PerPage: 3}), &cached)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestEngine_CacheInvalidationOnUpsert(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.addRange(t, 1, 3)

	layer := newMemoryLayer()
	engine := NewEngine(s.species, s.favorites, layer, Options{})
	invalidator := NewInvalidator(layer)

	got, err := engine.Query(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Pagination.Total)

	s.add(t, 4, "species-004")
	got, err = engine.Query(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Pagination.Total, "stale until invalidated")

	invalidator.OnRecordUpserted(ctx, 4)
	got, err = engine.Query(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Pagination.Total)

	_, err = s.species.DeleteAll(ctx)
	require.NoError(t, err)
	invalidator.OnRecordsCleared(ctx)
	got, err = engine.Query(ctx, Params{})
	require.NoError(t, err)
	assert.Empty(t, got.Records)
}

type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Get(context.Context, string) ([]byte, error) { return nil, errBackendDown }

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}

func (failingBackend) Delete(context.Context, string) error { return errBackendDown }

func (failingBackend) DeletePrefix(context.Context, string) error { return errBackendDown }

func TestEngine_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.addRange(t, 1, 20)
	s.favorite(t, "ash", 7, 8, 9)

	direct := NewEngine(s.species, s.favorites, nil, Options{})
	broken := cache.NewLayer(failingBackend{}, time.Second, nil)
	degraded := NewEngine(s.species, s.favorites, broken, Options{})

	for _, params := range []Params{
		{},
		{Search: "species-01", Sort: SortName, PerPage: 3},
		{Sort: SortFavoritesFirst, UserID: "ash", Page: 2, PerPage: 5},
	} {
		want, err := direct.Query(ctx, params)
		require.NoError(t, err)
		got, err := degraded.Query(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, int64(6), broken.Stats().Errors)

	NewInvalidator(broken).OnFavoriteAdded(ctx, "ash", 1)
}

func TestEngine_StoreErrors(t *testing.T) {
	storeErr := errors.New("database is locked")

	tests := []struct {
		name       string
		params     Params
		setupMocks func(s *mock_species.MockRepository, f *mock_favorites.MockRepository)
	}{
		{
			name:   "list fails",
			params: Params{},
			setupMocks: func(s *mock_species.MockRepository, f *mock_favorites.MockRepository) {
				s.EXPECT().List(gomock.Any(), species.Filter{}, species.OrderByID, 20, 0).Return(nil, 0, storeErr)
			},
		},
		{
			name:   "favorites fail",
			params: Params{Sort: SortFavoritesFirst, UserID: "ash"},
			setupMocks: func(s *mock_species.MockRepository, f *mock_favorites.MockRepository) {
				f.EXPECT().ListIDs(gomock.Any(), "ash").Return(nil, storeErr)
			},
		},
		{
			name:   "search fails",
			params: Params{Sort: SortFavoritesFirst, UserID: "ash", Type: "Fire"},
			setupMocks: func(s *mock_species.MockRepository, f *mock_favorites.MockRepository) {
				f.EXPECT().ListIDs(gomock.Any(), "ash").Return([]int{4}, nil)
				s.EXPECT().Search(gomock.Any(), species.Filter{Type: "fire"}).Return(nil, storeErr)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			speciesRepo := mock_species.NewMockRepository(ctrl)
			favoriteRepo := mock_favorites.NewMockRepository(ctrl)
			tt.setupMocks(speciesRepo, favoriteRepo)

			_, err := NewEngine(speciesRepo, favoriteRepo, nil, Options{}).Query(context.Background(), tt.params)
			assert.ErrorIs(t, err, storeErr)
		})
	}
}

func TestEngine_PaginationOverThreeRecords(t *testing.T) {
	s := newStore(t)
	s.add(t, 1, "bulbasaur", "grass", "poison")
	s.add(t, 2, "ivysaur", "grass", "poison")
	s.add(t, 3, "venusaur", "grass", "poison")
	engine := NewEngine(s.species, s.favorites, newMemoryLayer(), Options{})

	for _, sort := range Sorts {
		t.Run(string(sort), func(t *testing.T) {
			first, err := engine.Query(context.Background(), Params{Sort: sort, UserID: "ash", Page: 1, PerPage: 2})
			require.NoError(t, err)
			assert.Len(t, first.Records, 2)
			assert.True(t, first.Pagination.HasNext)
			assert.False(t, first.Pagination.HasPrev)

			second, err := engine.Query(context.Background(), Params{Sort: sort, UserID: "ash", Page: 2, PerPage: 2})
			require.NoError(t, err)
			assert.Len(t, second.Records, 1)
			assert.False(t, second.Pagination.HasNext)
			assert.True(t, second.Pagination.HasPrev)
		})
	}
}

func TestEngine_CachedResultMatchesDirect(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("JST", 9*60*60)
	t.Cleanup(func() { time.Local = local })

	ctx := context.Background()
	s := newStore(t)
	s.addRange(t, 1, 6)
	s.favorite(t, "ash", 5)

	layer := newMemoryLayer()
	cached := NewEngine(s.species, s.favorites, layer, Options{})
	direct := NewEngine(s.species, s.favorites, nil, Options{})

	for _, params := range []Params{
		{PerPage: 4},
		{Sort: SortName, Page: 2, PerPage: 4},
		{Sort: SortFavoritesFirst, UserID: "ash", PerPage: 3},
		{Search: "nothing-matches"},
	} {
		want, err := direct.Query(ctx, params)
		require.NoError(t, err)

		miss, err := cached.Query(ctx, params)
		require.NoError(t, err)
		hit, err := cached.Query(ctx, params)
		require.NoError(t, err)

		assert.Equal(t, want, miss)
		assert.Equal(t, want, hit)
		for _, r := range hit.Records {
			assert.Equal(t, time.UTC, r.CreatedAt.Location())
			assert.Equal(t, time.UTC, r.UpdatedAt.Location())
		}
	}
	assert.Equal(t, int64(4), layer.Stats().Hits)
}

// racingReader runs during after the first List call read the store.
type racingReader struct {
	SpeciesReader
	during func()
}

func (r *racingReader) List(ctx context.Context, filter species.Filter, order species.Order, limit, offset int) ([]species.Record, int, error) {
	records, total, err := r.SpeciesReader.List(ctx, filter, order, limit, offset)
	if r.during != nil {
		r.during()
		r.during = nil
	}
	return records, total, err
}

func TestEngine_InvalidationDuringComputeIsNotCached(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.addRange(t, 1, 3)

	layer := newMemoryLayer()
	invalidator := NewInvalidator(layer)
	reader := &racingReader{SpeciesReader: s.species}
	engine := NewEngine(reader, s.favorites, layer, Options{})

	// the write lands after the engine read the store but before it caches
	reader.during = func() {
		s.add(t, 4, "species-004")
		invalidator.OnRecordUpserted(ctx, 4)
	}
	got, err := engine.Query(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Pagination.Total)

	var cached Result
	hit, err := layer.Get(ctx, CacheKey(Params{Sort: SortID, Page: 1, PerPage: 20}), &cached)
	require.NoError(t, err)
	assert.False(t, hit)

	got, err = engine.Query(ctx, Params{})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Pagination.Total)
	hit, err = layer.Get(ctx, CacheKey(Params{Sort: SortID, Page: 1, PerPage: 20}), &cached)
	require.NoError(t, err)
	assert.True(t, hit)
}
