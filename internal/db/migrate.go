package db

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/joestump/joe-reader/internal/db/migrations"
)

//go:embed migrations
var Migrations embed.FS

// Migrate brings the schema up to date and returns the resulting version.
// Go migrations pick their DDL by driver, so the dialect is set on both
// goose and the migrations package first. It must run before the HTTP server
// starts accepting requests.
func Migrate(db *sqlx.DB, driver string) (int64, error) {
	switch driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return 0, fmt.Errorf("unknown driver for goose dialect: %q", driver)
	}
	if err := goose.SetDialect(driver); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	migrations.SetDialect(driver)

	sub, err := fs.Sub(Migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("sub migrations fs: %w", err)
	}
	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)

	if err := goose.Up(db.DB, "."); err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}
	v, err := goose.GetDBVersion(db.DB)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
