package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

//go:generate mockgen -source=service.go -destination=../mocks/favorites/mock_service.go -package=mock_favorites

var (
	ErrInvalidFavorite = errors.New("favorite needs a user id and a positive species id")
	ErrUnknownSpecies  = errors.New("species is not stored")
)

// SpeciesLookup reports whether a species record is stored.
type SpeciesLookup interface {
	Exists(ctx context.Context, externalID int) (bool, error)
}

// Hooks is notified after every favorite mutation.
type Hooks interface {
	OnFavoriteAdded(ctx context.Context, userID string, externalID int)
	OnFavoriteRemoved(ctx context.Context, userID string, externalID int)
}

// Service mutates favorite edges and notifies Hooks afterwards.
type Service struct {
	repo    Repository
	species SpeciesLookup
	hooks   Hooks
	logger  *slog.Logger
}

func NewService(repo Repository, species SpeciesLookup, hooks Hooks) *Service {
	return &Service{
		repo:    repo,
		species: species,
		hooks:   hooks,
		logger:  slog.Default(),
	}
}

// Add marks externalID as a favorite of userID. Adding an existing favorite
// is a no-op that returns false.
func (s *Service) Add(ctx context.Context, userID string, externalID int) (bool, error) {
	userID, err := validate(userID, externalID)
	if err != nil {
		return false, err
	}

	exists, err := s.species.Exists(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("s.species.Exists > %w", err)
	}
	if !exists {
		return false, fmt.Errorf("favorite %d: %w", externalID, ErrUnknownSpecies)
	}

	added, err := s.repo.Add(ctx, userID, externalID)
	if err != nil {
		return false, err
	}
	s.logger.Debug("favorite added", "user", userID, "external_id", externalID, "changed", added)
	s.hooks.OnFavoriteAdded(ctx, userID, externalID)
	return added, nil
}

// Remove unmarks externalID. Removing a missing favorite is a no-op that
// returns false.
func (s *Service) Remove(ctx context.Context, userID string, externalID int) (bool, error) {
	userID, err := validate(userID, externalID)
	if err != nil {
		return false, err
	}

	removed, err := s.repo.Remove(ctx, userID, externalID)
	if err != nil {
		return false, err
	}
	s.logger.Debug("favorite removed", "user", userID, "external_id", externalID, "changed", removed)
	s.hooks.OnFavoriteRemoved(ctx, userID, externalID)
	return removed, nil
}

// List returns the favorite ids of userID in ascending order.
func (s *Service) List(ctx context.Context, userID string) ([]int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidFavorite
	}
	return s.repo.ListIDs(ctx, userID)
}

func validate(userID string, externalID int) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || externalID < 1 {
		return "", ErrInvalidFavorite
	}
	return userID, nil
}
