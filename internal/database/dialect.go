package database

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect identifies the SQL flavour spoken by a connection.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectOf derives the dialect from the driver the connection was opened with.
func DialectOf(db *sqlx.DB) Dialect {
	switch db.DriverName() {
	case "sqlite", "sqlite3":
		return DialectSQLite
	case "pgx", "postgres":
		return DialectPostgres
	default:
		return DialectMySQL
	}
}

// LikeEscape is the escape character used in every LIKE pattern built by
// EscapeLike.
const LikeEscape = "!"

// EscapeLike escapes the LIKE metacharacters in s so it matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return r.Replace(s)
}
