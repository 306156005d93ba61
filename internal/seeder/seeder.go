// Package seeder fills the species store from the upstream API.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/at-ishikawa/pokedex/internal/pokeapi"
	"github.com/at-ishikawa/pokedex/internal/species"
)

//go:generate mockgen -source=seeder.go -destination=../mocks/seeder/mock_seeder.go -package=mock_seeder

// ErrInvalidRange is returned for requests that can never succeed, such as
// start > end or a non-positive id.
var ErrInvalidRange = errors.New("invalid seeding range")

// Fetcher fetches the raw upstream payload of one species.
type Fetcher interface {
	FetchPokemon(ctx context.Context, id int) (pokeapi.Payload, error)
}

// Refresher fetches a payload past any cache in front of upstream.
type Refresher interface {
	RefreshPokemon(ctx context.Context, id int) (pokeapi.Payload, error)
}

// GenerationResolver resolves a generation name to species ids.
type GenerationResolver interface {
	Resolve(ctx context.Context, name string) ([]int, error)
}

// Invalidator is notified after species writes.
type Invalidator interface {
	OnRecordUpserted(ctx context.Context, externalID int)
	OnRecordsCleared(ctx context.Context)
}

type Options struct {
	// BatchSize of generation runs. Batches only group log checkpoints.
	BatchSize int
}

type Seeder struct {
	fetcher     Fetcher
	resolver    GenerationResolver
	store       species.Repository
	invalidator Invalidator
	batchSize   int
	logger      *slog.Logger
	now         func() time.Time
}

func NewSeeder(fetcher Fetcher, resolver GenerationResolver, store species.Repository, invalidator Invalidator, opts Options) *Seeder {
	if opts.BatchSize < 1 {
		opts.BatchSize = 10
	}
	return &Seeder{
		fetcher:     fetcher,
		resolver:    resolver,
		store:       store,
		invalidator: invalidator,
		batchSize:   opts.BatchSize,
		logger:      slog.Default(),
		now:         time.Now,
	}
}

// SeedRange fetches, transforms and upserts every id in [start, end].
// Per-id failures are recorded in the summary and never stop the run.
func (s *Seeder) SeedRange(ctx context.Context, start, end, batchSize int) (*Summary, error) {
	if start < 1 || end < start || batchSize < 1 {
		return nil, fmt.Errorf("%w: start=%d end=%d batch_size=%d", ErrInvalidRange, start, end, batchSize)
	}
	ids := make([]int, 0, end-start+1)
	for id := start; id <= end; id++ {
		ids = append(ids, id)
	}
	summary := newSummary(OperationRange, fmt.Sprintf("%d-%d", start, end), s.now())
	return s.run(ctx, summary, ids, batchSize, s.fetcher.FetchPokemon)
}

// SeedGeneration seeds every species of the named generation.
func (s *Seeder) SeedGeneration(ctx context.Context, name string) (*Summary, error) {
	ids, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve generation: %w", err)
	}
	summary := newSummary(OperationGeneration, name, s.now())
	return s.run(ctx, summary, ids, s.batchSize, s.fetcher.FetchPokemon)
}

// Update re-fetches one stored species from upstream, bypassing a payload
// cache when the fetcher is a Refresher. A species that is not stored is
// skipped without calling upstream.
func (s *Seeder) Update(ctx context.Context, id int) (*Summary, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: id=%d", ErrInvalidRange, id)
	}
	summary := newSummary(OperationUpdate, strconv.Itoa(id), s.now())

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		summary.Attempted = 1
		summary.recordFailure(id, err)
		return s.finish(ctx, summary), nil
	}
	if !exists {
		s.logger.Info("species is not stored, skipping update", "id", id)
		summary.Attempted = 1
		summary.Skipped = 1
		return s.finish(ctx, summary), nil
	}
	return s.run(ctx, summary, []int{id}, 1, s.refresh)
}

// Clear deletes every species with its favorites.
func (s *Seeder) Clear(ctx context.Context) (*Summary, error) {
	summary := newSummary(OperationClear, "all", s.now())
	summary.RecordsBefore = s.count(ctx)

	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear species: %w", err)
	}
	summary.Deleted = deleted
	if s.invalidator != nil {
		s.invalidator.OnRecordsCleared(ctx)
	}
	s.logger.Info("cleared species", "run_id", summary.RunID, "deleted", deleted)
	return s.finish(ctx, summary), nil
}

type fetchFunc func(ctx context.Context, id int) (pokeapi.Payload, error)

func (s *Seeder) refresh(ctx context.Context, id int) (pokeapi.Payload, error) {
	if r, ok := s.fetcher.(Refresher); ok {
		return r.RefreshPokemon(ctx, id)
	}
	return s.fetcher.FetchPokemon(ctx, id)
}

func (s *Seeder) run(ctx context.Context, summary *Summary, ids []int, batchSize int, fetch fetchFunc) (*Summary, error) {
	summary.RecordsBefore = s.count(ctx)
	summary.Attempted = len(ids)
	s.logger.Info("seeding started",
		"run_id", summary.RunID,
		"operation", summary.Operation,
		"target", summary.Target,
		"ids", len(ids),
	)

	for i, id := range ids {
		if ctx.Err() != nil {
			summary.Canceled = true
			summary.Skipped += len(ids) - i
			s.logger.Warn("seeding canceled", "run_id", summary.RunID, "remaining", len(ids)-i)
			break
		}

		// the current item completes even when ctx is canceled meanwhile
		if err := s.seedOne(context.WithoutCancel(ctx), id, fetch); err != nil {
			summary.recordFailure(id, err)
			s.logger.Warn("seeding species failed", "run_id", summary.RunID, "id", id, "error", err)
		} else {
			summary.Succeeded++
		}

		if (i+1)%batchSize == 0 || i == len(ids)-1 {
			s.logger.Info("batch done",
				"run_id", summary.RunID,
				"processed", i+1,
				"total", len(ids),
				"succeeded", summary.Succeeded,
				"failed", summary.Failed,
			)
		}
	}
	return s.finish(ctx, summary), nil
}

func (s *Seeder) seedOne(ctx context.Context, id int, fetch fetchFunc) error {
	payload, err := fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	record, err := species.Transform(payload)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if record.ExternalID != id {
		return &species.ValidationError{Reason: fmt.Sprintf("payload id %d does not match requested id %d", record.ExternalID, id)}
	}
	if err := s.store.Upsert(ctx, &record); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.OnRecordUpserted(ctx, id)
	}
	return nil
}

func (s *Seeder) finish(ctx context.Context, summary *Summary) *Summary {
	summary.RecordsAfter = s.count(context.WithoutCancel(ctx))
	summary.Duration = s.now().Sub(summary.StartedAt)
	s.logger.Info("seeding finished", "run_id", summary.RunID, "summary", summary.String())
	return summary
}

// count is informational; a failure is logged and reported as -1.
func (s *Seeder) count(ctx context.Context) int {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("counting species failed", "error", err)
		return -1
	}
	return n
}
