package migrations

import (
	"embed"
	"io/fs"
)

// FS holds the versioned schema for every supported backend, one directory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// SQLite returns the migrations for the modernc.org/sqlite backend.
func SQLite() (fs.FS, error) {
	return fs.Sub(FS, "sqlite")
}

// Postgres returns the migrations for the lib/pq backend.
func Postgres() (fs.FS, error) {
	return fs.Sub(FS, "postgres")
}
