package query

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/at-ishikawa/pokedex/internal/cache"
	"github.com/at-ishikawa/pokedex/internal/species"
)

// SpeciesReader is the read side of the species store.
type SpeciesReader interface {
	Search(ctx context.Context, filter species.Filter) ([]species.Record, error)
	List(ctx context.Context, filter species.Filter, order species.Order, limit, offset int) ([]species.Record, int, error)
}

// FavoriteReader lists the favorite species ids of a user.
type FavoriteReader interface {
	ListIDs(ctx context.Context, userID string) ([]int, error)
}

type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	// TTL of cached results.
	TTL time.Duration
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
	defaultTTL     = 5 * time.Minute
)

type Engine struct {
	species   SpeciesReader
	favorites FavoriteReader
	cache     *cache.Layer
	opts      Options
	logger    *slog.Logger
}

// NewEngine creates an Engine. layer may be nil to disable caching.
func NewEngine(speciesReader SpeciesReader, favorites FavoriteReader, layer *cache.Layer, opts Options) *Engine {
	if opts.MaxPerPage < 1 {
		opts.MaxPerPage = maxPerPage
	}
	if opts.DefaultPerPage < 1 {
		opts.DefaultPerPage = min(defaultPerPage, opts.MaxPerPage)
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	return &Engine{
		species:   speciesReader,
		favorites: favorites,
		cache:     layer,
		opts:      opts,
		logger:    slog.Default(),
	}
}

// Query returns one page of records. Cache failures are logged and the
// result is computed from the store.
func (e *Engine) Query(ctx context.Context, params Params) (*Result, error) {
	p, err := e.normalize(params)
	if err != nil {
		return nil, err
	}

	key := CacheKey(p)
	var gen uint64
	if e.cache != nil {
		// read before computing so an invalidation during compute is seen
		gen = e.cache.Generation()
		var cached Result
		hit, err := e.cache.Get(ctx, key, &cached)
		if err != nil {
			e.logger.Warn("cache unavailable", "key", key, "error", err)
		} else if hit {
			if cached.Records == nil {
				cached.Records = []species.Record{}
			}
			species.NormalizeTimes(cached.Records)
			return &cached, nil
		}
	}

	result, err := e.compute(ctx, p)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if _, err := e.cache.SetIfCurrent(ctx, key, result, e.opts.TTL, gen); err != nil {
			e.logger.Warn("cache unavailable", "key", key, "error", err)
		}
	}
	return result, nil
}

func (e *Engine) normalize(p Params) (Params, error) {
	sort, err := ParseSort(string(p.Sort))
	if err != nil {
		return Params{}, err
	}
	p.Sort = sort
	p.Search = strings.ToLower(strings.TrimSpace(p.Search))
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.UserID = strings.TrimSpace(p.UserID)

	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = e.opts.DefaultPerPage
	}
	if p.PerPage > e.opts.MaxPerPage {
		p.PerPage = e.opts.MaxPerPage
	}

	// favorites-first without a user is the id order
	if p.Sort == SortFavoritesFirst && p.UserID == "" {
		p.Sort = SortID
	}
	if p.Sort != SortFavoritesFirst {
		p.UserID = ""
	}
	return p, nil
}

func (e *Engine) compute(ctx context.Context, p Params) (*Result, error) {
	if p.Sort == SortFavoritesFirst {
		favoriteIDs, err := e.favorites.ListIDs(ctx, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("list favorites of %s: %w", p.UserID, err)
		}
		if len(favoriteIDs) > 0 {
			return e.favoritesFirst(ctx, p, favoriteIDs)
		}
		p.Sort = SortID
	}

	order := species.OrderByID
	if p.Sort == SortName {
		order = species.OrderByName
	}
	records, total, err := e.species.List(ctx, p.filter(), order, p.PerPage, (p.Page-1)*p.PerPage)
	if err != nil {
		return nil, fmt.Errorf("list species: %w", err)
	}
	if records == nil {
		records = []species.Record{}
	}
	return &Result{
		Records:    records,
		Pagination: newPagination(p.Page, p.PerPage, total),
	}, nil
}

// favoritesFirst partitions every matching record by the favorite set, orders
// each part by external id and pages over favorites followed by the rest.
func (e *Engine) favoritesFirst(ctx context.Context, p Params, favoriteIDs []int) (*Result, error) {
	matching, err := e.species.Search(ctx, p.filter())
	if err != nil {
		return nil, fmt.Errorf("search species: %w", err)
	}

	favoriteSet := make(map[int]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favoriteSet[id] = struct{}{}
	}

	favorites := make([]species.Record, 0, len(favoriteIDs))
	rest := make([]species.Record, 0, len(matching))
	for _, record := range matching {
		if _, ok := favoriteSet[record.ExternalID]; ok {
			favorites = append(favorites, record)
		} else {
			rest = append(rest, record)
		}
	}
	byID := func(a, b species.Record) int {
		return cmp.Compare(a.ExternalID, b.ExternalID)
	}
	slices.SortStableFunc(favorites, byID)
	slices.SortStableFunc(rest, byID)
	ordered := append(favorites, rest...)

	total := len(ordered)
	start := min((p.Page-1)*p.PerPage, total)
	end := min(start+p.PerPage, total)
	return &Result{
		Records:    append([]species.Record{}, ordered[start:end]...),
		Pagination: newPagination(p.Page, p.PerPage, total),
	}, nil
}
