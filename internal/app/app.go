// Package app wires the pokedex components from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/at-ishikawa/pokedex/internal/cache"
	"github.com/at-ishikawa/pokedex/internal/config"
	"github.com/at-ishikawa/pokedex/internal/database"
	"github.com/at-ishikawa/pokedex/internal/favorites"
	"github.com/at-ishikawa/pokedex/internal/generation"
	"github.com/at-ishikawa/pokedex/internal/pokeapi"
	"github.com/at-ishikawa/pokedex/internal/query"
	"github.com/at-ishikawa/pokedex/internal/seeder"
	"github.com/at-ishikawa/pokedex/internal/species"
)

// App holds one instance of every component. The limiter and the cache are
// created once here and shared by everything that needs them.
type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Registry *prometheus.Registry

	Client      *pokeapi.Client
	Cache       *cache.Layer
	Species     *species.DBRepository
	Favorites   *favorites.Service
	Invalidator *query.Invalidator
	Engine      *query.Engine
	Seeder      *seeder.Seeder

	closers []io.Closer
}

func New(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open > %w", err)
	}
	a := &App{
		Config:   cfg,
		DB:       db,
		Registry: prometheus.NewRegistry(),
		closers:  []io.Closer{db},
	}

	backend, err := cache.NewBackend(cfg.Cache, db)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("cache.NewBackend > %w", err)
	}
	if backend != nil {
		if closer, ok := backend.(io.Closer); ok {
			a.closers = append(a.closers, closer)
		}
		a.Cache = cache.NewLayer(backend, cfg.Cache.OpTimeout, a.Registry)
	}

	catalog, err := generation.LoadCatalog(cfg.Seeding.GenerationsFile)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("generation.LoadCatalog > %w", err)
	}

	limiter := pokeapi.NewLimiter(cfg.PokeAPI.MinInterval)
	a.Client = pokeapi.NewClient(pokeapi.Config{
		BaseURL:        cfg.PokeAPI.BaseURL,
		UserAgent:      cfg.PokeAPI.UserAgent,
		Timeout:        cfg.PokeAPI.Timeout,
		MaxRetries:     cfg.PokeAPI.MaxRetries,
		RetryBaseDelay: cfg.PokeAPI.RetryBaseDelay,
		RetryMaxDelay:  cfg.PokeAPI.RetryMaxDelay,
	}, limiter, pokeapi.NewMetrics(a.Registry))

	a.Species = species.NewDBRepository(db)
	a.Invalidator = query.NewInvalidator(a.Cache)

	favoriteRepo := favorites.NewDBRepository(db)
	a.Favorites = favorites.NewService(favoriteRepo, a.Species, a.Invalidator)
	a.Engine = query.NewEngine(a.Species, favoriteRepo, a.Cache, query.Options{
		DefaultPerPage: cfg.Query.DefaultPerPage,
		MaxPerPage:     cfg.Query.MaxPerPage,
		TTL:            cfg.Cache.TTL,
	})
	var fetcher seeder.Fetcher = a.Client
	if a.Cache != nil && cfg.Cache.PayloadTTL > 0 {
		fetcher = pokeapi.NewCachingFetcher(a.Client, a.Cache, cfg.Cache.PayloadTTL)
	}
	a.Seeder = seeder.NewSeeder(
		fetcher,
		generation.NewResolver(catalog, a.Client),
		a.Species,
		a.Invalidator,
		seeder.Options{BatchSize: cfg.Seeding.BatchSize},
	)
	return a, nil
}

// Migrate applies the embedded schema.
func (a *App) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, a.DB)
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
