package pokeapi

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/at-ishikawa/pokedex/internal/cache"
)

// PayloadNamespace prefixes every cached upstream payload. It never overlaps
// the listing keys, so listing invalidation keeps payloads.
const PayloadNamespace = "pokeapi"

// PayloadKey is the cache key of the payload of one species.
func PayloadKey(id int) string {
	return PayloadNamespace + "|pokemon|" + strconv.Itoa(id)
}

// PokemonFetcher fetches the raw payload of one species.
type PokemonFetcher interface {
	FetchPokemon(ctx context.Context, id int) (Payload, error)
}

// CachingFetcher reads payloads through a cache layer. Failures of the layer
// are logged and the payload is fetched upstream.
type CachingFetcher struct {
	next   PokemonFetcher
	cache  *cache.Layer
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachingFetcher(next PokemonFetcher, layer *cache.Layer, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next:   next,
		cache:  layer,
		ttl:    ttl,
		logger: slog.Default(),
	}
}

func (f *CachingFetcher) FetchPokemon(ctx context.Context, id int) (Payload, error) {
	key := PayloadKey(id)
	var cached []byte
	hit, err := f.cache.Get(ctx, key, &cached)
	if err != nil {
		f.logger.Warn("cache unavailable", "key", key, "error", err)
	} else if hit {
		return Payload(cached), nil
	}
	return f.RefreshPokemon(ctx, id)
}

// RefreshPokemon always fetches upstream and replaces the cached payload.
func (f *CachingFetcher) RefreshPokemon(ctx context.Context, id int) (Payload, error) {
	payload, err := f.next.FetchPokemon(ctx, id)
	if err != nil {
		return nil, err
	}
	key := PayloadKey(id)
	if err := f.cache.Set(ctx, key, []byte(payload), f.ttl); err != nil {
		f.logger.Warn("cache unavailable", "key", key, "error", err)
	}
	return payload, nil
}
