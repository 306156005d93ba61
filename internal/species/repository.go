package species

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pokedex/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/species/mock_repository.go -package=mock_species

// ErrNotFound is returned when no record has the requested external id.
var ErrNotFound = errors.New("species not found")

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	// Search is a case-insensitive substring of the name.
	Search string
	// Type must be one of the record's types.
	Type string
}

// Order is the SQL ordering of a listing.
type Order string

const (
	OrderByID   Order = "id"
	OrderByName Order = "name"
)

// Repository defines operations for managing species records.
type Repository interface {
	Upsert(ctx context.Context, record *Record) error
	FindByExternalID(ctx context.Context, externalID int) (*Record, error)
	Exists(ctx context.Context, externalID int) (bool, error)
	Count(ctx context.Context) (int, error)
	// Search returns every record matching filter ordered by external id.
	Search(ctx context.Context, filter Filter) ([]Record, error)
	// List returns one page of matching records and the total match count.
	List(ctx context.Context, filter Filter, order Order, limit, offset int) ([]Record, int, error)
	// DeleteAll removes every record with its favorite edges and returns the
	// number of records removed.
	DeleteAll(ctx context.Context) (int, error)
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

const insertSpecies = `INSERT INTO species
(external_id, name, height, weight, base_experience, types, abilities, stats, sprites, created_at, updated_at)
VALUES (:external_id, :name, :height, :weight, :base_experience, :types, :abilities, :stats, :sprites, :created_at, :updated_at)`

var upsertColumns = []string{"name", "height", "weight", "base_experience", "types", "abilities", "stats", "sprites", "updated_at"}

func (r *DBRepository) upsertQuery() string {
	sets := make([]string, 0, len(upsertColumns))
	if r.dialect == database.DialectMySQL {
		for _, c := range upsertColumns {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
		return insertSpecies + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	for _, c := range upsertColumns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return insertSpecies + " ON CONFLICT (external_id) DO UPDATE SET " + strings.Join(sets, ", ")
}

// Upsert inserts record or replaces every mutable field of the stored one.
// created_at of an existing record is kept.
func (r *DBRepository) Upsert(ctx context.Context, record *Record) error {
	now := r.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, r.upsertQuery(), record); err != nil {
		return fmt.Errorf("upsert species %d: %w", record.ExternalID, err)
	}
	return nil
}

// FindByExternalID returns ErrNotFound when no record matches.
func (r *DBRepository) FindByExternalID(ctx context.Context, externalID int) (*Record, error) {
	var record Record
	query := r.db.Rebind("SELECT * FROM species WHERE external_id = ?")
	if err := r.db.GetContext(ctx, &record, query, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find species %d: %w", externalID, err)
	}
	record.normalizeTimes()
	return &record, nil
}

func (r *DBRepository) Exists(ctx context.Context, externalID int) (bool, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM species WHERE external_id = ?")
	if err := r.db.GetContext(ctx, &count, query, externalID); err != nil {
		return false, fmt.Errorf("check species %d: %w", externalID, err)
	}
	return count > 0, nil
}

func (r *DBRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM species"); err != nil {
		return 0, fmt.Errorf("count species: %w", err)
	}
	return count, nil
}

func (r *DBRepository) Search(ctx context.Context, filter Filter) ([]Record, error) {
	where, args := filter.where()
	query := r.db.Rebind("SELECT * FROM species" + where + " ORDER BY external_id")

	records := []Record{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("search species: %w", err)
	}
	NormalizeTimes(records)
	return records, nil
}

func (r *DBRepository) List(ctx context.Context, filter Filter, order Order, limit, offset int) ([]Record, int, error) {
	orderBy, err := order.clause()
	if err != nil {
		return nil, 0, err
	}
	where, args := filter.where()

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM species"+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count matching species: %w", err)
	}

	records := []Record{}
	if total == 0 || offset >= total {
		return records, total, nil
	}

	query := r.db.Rebind("SELECT * FROM species" + where + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?")
	if err := r.db.SelectContext(ctx, &records, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("list species: %w", err)
	}
	NormalizeTimes(records)
	return records, total, nil
}

func (r *DBRepository) DeleteAll(ctx context.Context) (int, error) {
	var deleted int64
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM favorite_edges"); err != nil {
			return fmt.Errorf("delete favorite edges: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM species")
		if err != nil {
			return fmt.Errorf("delete species: %w", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count deleted species: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		conds = append(conds, "LOWER(name) LIKE ? ESCAPE '"+database.LikeEscape+"'")
		args = append(args, "%"+database.EscapeLike(search)+"%")
	}
	if typ := strings.ToLower(strings.TrimSpace(f.Type)); typ != "" {
		// types is a JSON array; match the quoted element
		conds = append(conds, "types LIKE ? ESCAPE '"+database.LikeEscape+"'")
		args = append(args, "%"+database.EscapeLike(`"`+typ+`"`)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (o Order) clause() (string, error) {
	switch o {
	case "", OrderByID:
		return "external_id", nil
	case OrderByName:
		return "name, external_id", nil
	default:
		return "", fmt.Errorf("unsupported species order %q", o)
	}
}
