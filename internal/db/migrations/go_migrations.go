// Package migrations holds the reader's schema. Most steps are Go migrations
// because column types for ids, links and timestamps differ per database.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// stmts maps a dialect to the statements it runs; the "" entry is the
// sqlite3 default and is used for any dialect without its own entry.
type stmts map[string][]string

func (s stmts) exec(ctx context.Context, tx *sql.Tx) error {
	list, ok := s[dialect]
	if !ok {
		list = s[""]
	}
	for _, stmt := range list {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
