// Package favorites manages per-user favorite edges to species records.
package favorites

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pokedex/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/favorites/mock_repository.go -package=mock_favorites

// Edge marks one species as a favorite of one user.
type Edge struct {
	UserID     string    `db:"user_id"`
	ExternalID int       `db:"external_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Repository defines operations for managing favorite edges.
type Repository interface {
	// Add inserts the edge unless it exists and reports whether it was inserted.
	Add(ctx context.Context, userID string, externalID int) (bool, error)
	// Remove deletes the edge if present and reports whether it existed.
	Remove(ctx context.Context, userID string, externalID int) (bool, error)
	// ListIDs returns the user's favorite external ids in ascending order.
	ListIDs(ctx context.Context, userID string) ([]int, error)
}

// DBRepository implements Repository on a relational store.
type DBRepository struct {
	db      *sqlx.DB
	dialect database.Dialect
	now     func() time.Time
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{
		db:      db,
		dialect: database.DialectOf(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *DBRepository) insertQuery() string {
	if r.dialect == database.DialectMySQL {
		return "INSERT IGNORE INTO favorite_edges (user_id, external_id, created_at) VALUES (?, ?, ?)"
	}
	return r.db.Rebind("INSERT INTO favorite_edges (user_id, external_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, external_id) DO NOTHING")
}

func (r *DBRepository) Add(ctx context.Context, userID string, externalID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.insertQuery(), userID, externalID, r.now())
	if err != nil {
		return false, fmt.Errorf("add favorite %s/%d: %w", userID, externalID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add favorite %s/%d: %w", userID, externalID, err)
	}
	return n > 0, nil
}

func (r *DBRepository) Remove(ctx context.Context, userID string, externalID int) (bool, error) {
	query := r.db.Rebind("DELETE FROM favorite_edges WHERE user_id = ? AND external_id = ?")
	res, err := r.db.ExecContext(ctx, query, userID, externalID)
	if err != nil {
		return false, fmt.Errorf("remove favorite %s/%d: %w", userID, externalID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove favorite %s/%d: %w", userID, externalID, err)
	}
	return n > 0, nil
}

func (r *DBRepository) ListIDs(ctx context.Context, userID string) ([]int, error) {
	ids := []int{}
	query := r.db.Rebind("SELECT external_id FROM favorite_edges WHERE user_id = ? ORDER BY external_id")
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites of %s: %w", userID, err)
	}
	return ids, nil
}
