package migrations

// Feeds, their items, and per-link status. item_status is keyed by link and
// has no foreign key to items, so read and favorite flags survive a feed
// being removed and re-added.

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateReaderTables, downCreateReaderTables)
}

var createReaderTables = stmts{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS feeds (
    id         TEXT PRIMARY KEY,
    url        TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    feed_id        TEXT NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
    link           TEXT NOT NULL UNIQUE,
    title          TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    published_text TEXT NOT NULL DEFAULT '',
    published_at   TIMESTAMPTZ NOT NULL,
    fetched_at     TIMESTAMPTZ NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS item_status (
    link        TEXT PRIMARY KEY,
    is_read     BOOLEAN NOT NULL DEFAULT FALSE,
    is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at  TIMESTAMPTZ NOT NULL
)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS feeds (
    id         VARCHAR(36) PRIMARY KEY,
    url        VARCHAR(768) NOT NULL UNIQUE,
    title      TEXT NOT NULL,
    created_at DATETIME(6) NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS items (
    id             VARCHAR(36) PRIMARY KEY,
    feed_id        VARCHAR(36) NOT NULL,
    link           VARCHAR(768) NOT NULL UNIQUE,
    title          TEXT NOT NULL,
    description    MEDIUMTEXT NOT NULL,
    published_text VARCHAR(255) NOT NULL DEFAULT '',
    published_at   DATETIME(6) NOT NULL,
    fetched_at     DATETIME(6) NOT NULL,
    CONSTRAINT fk_items_feed FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS item_status (
    link        VARCHAR(768) PRIMARY KEY,
    is_read     BOOLEAN NOT NULL DEFAULT FALSE,
    is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at  DATETIME(6) NOT NULL
)`,
	},
	"": {
		`CREATE TABLE IF NOT EXISTS feeds (
    id         TEXT PRIMARY KEY,
    url        TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    feed_id        TEXT NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
    link           TEXT NOT NULL UNIQUE,
    title          TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    published_text TEXT NOT NULL DEFAULT '',
    published_at   TIMESTAMP NOT NULL,
    fetched_at     TIMESTAMP NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS item_status (
    link        TEXT PRIMARY KEY,
    is_read     BOOLEAN NOT NULL DEFAULT FALSE,
    is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at  TIMESTAMP NOT NULL
)`,
	},
}

func upCreateReaderTables(ctx context.Context, tx *sql.Tx) error {
	return createReaderTables.exec(ctx, tx)
}

func downCreateReaderTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"item_status", "items", "feeds"} {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
	}
	return nil
}
