// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL migration files, one directory per dialect
// (mysql, sqlite, postgres). Files are applied in lexical order.
//
//go:embed migrations
var Migrations embed.FS
