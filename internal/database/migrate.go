package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pokedex/schemas"
)

// Migrate applies the embedded schema files for the connection's dialect.
// Every statement is idempotent, so Migrate can run on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return migrateFS(ctx, db, schemas.Migrations)
}

func migrateFS(ctx context.Context, db *sqlx.DB, fsys fs.FS) error {
	dir := path.Join("migrations", string(DialectOf(db)))
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		contents, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(contents)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		slog.Debug("applied migration", "file", name, "dialect", DialectOf(db))
	}
	return nil
}

// splitStatements splits a schema file on semicolons. Schema files never
// contain semicolons inside literals.
func splitStatements(contents string) []string {
	var stmts []string
	for _, part := range strings.Split(contents, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
