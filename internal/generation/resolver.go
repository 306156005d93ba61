package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/pokedex/internal/pokeapi"
)

// Upstream resolves generations the local catalog does not know.
type Upstream interface {
	FetchGenerationSpeciesIDs(ctx context.Context, name string) ([]int, error)
}

// Resolver resolves a generation name from the catalog first and the
// upstream second.
type Resolver struct {
	catalog  *Catalog
	upstream Upstream
	logger   *slog.Logger
}

// NewResolver creates a Resolver. upstream may be nil.
func NewResolver(catalog *Catalog, upstream Upstream) *Resolver {
	return &Resolver{
		catalog:  catalog,
		upstream: upstream,
		logger:   slog.Default(),
	}
}

// Resolve returns the species ids of the named generation in ascending order.
func (r *Resolver) Resolve(ctx context.Context, name string) ([]int, error) {
	if g, ok := r.catalog.Lookup(name); ok {
		return g.IDs(), nil
	}
	if r.upstream == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	r.logger.Info("resolving generation upstream", "generation", name)
	ids, err := r.upstream.FetchGenerationSpeciesIDs(ctx, normalize(name))
	if err != nil {
		if pokeapi.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
		}
		return nil, fmt.Errorf("resolve generation %q: %w", name, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %q has no species", ErrUnknown, name)
	}
	return ids, nil
}
