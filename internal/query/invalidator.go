package query

import (
	"context"
	"log/slog"

	"github.com/at-ishikawa/pokedex/internal/cache"
)

// Invalidator drops cached listings after writes. Species writes drop every
// listing; favorite writes drop only the favorites-first listings of that
// user. Failures are logged, never returned.
type Invalidator struct {
	cache  *cache.Layer
	logger *slog.Logger
}

// NewInvalidator creates an Invalidator. layer may be nil.
func NewInvalidator(layer *cache.Layer) *Invalidator {
	return &Invalidator{
		cache:  layer,
		logger: slog.Default(),
	}
}

func (i *Invalidator) OnFavoriteAdded(ctx context.Context, userID string, externalID int) {
	i.invalidate(ctx, UserPrefix(userID))
}

func (i *Invalidator) OnFavoriteRemoved(ctx context.Context, userID string, externalID int) {
	i.invalidate(ctx, UserPrefix(userID))
}

func (i *Invalidator) OnRecordUpserted(ctx context.Context, externalID int) {
	i.invalidate(ctx, NamespacePrefix())
}

func (i *Invalidator) OnRecordsCleared(ctx context.Context) {
	i.invalidate(ctx, NamespacePrefix())
}

func (i *Invalidator) invalidate(ctx context.Context, prefix string) {
	if i.cache == nil {
		return
	}
	if err := i.cache.InvalidatePrefix(ctx, prefix); err != nil {
		i.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
