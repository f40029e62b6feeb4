package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Item is one article of a feed joined with its feed and its read/favorite status.
type Item struct {
	ID            string    `db:"id"`
	FeedID        string    `db:"feed_id"`
	Link          string    `db:"link"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	PublishedText string    `db:"published_text"`
	PublishedAt   time.Time `db:"published_at"`
	FetchedAt     time.Time `db:"fetched_at"`
	FeedTitle     string    `db:"feed_title"`
	FeedURL       string    `db:"feed_url"`
	Read          bool      `db:"is_read"`
	Favorite      bool      `db:"is_favorite"`
}

// ItemInput is an item as parsed from a feed, before it is stored.
type ItemInput struct {
	Link          string
	Title         string
	Description   string
	PublishedText string
	PublishedAt   time.Time
}

// ItemFilter narrows ItemStore.List. Status is one of the Filter* constants
// ("" means all); FeedURL restricts to one feed when non-empty.
type ItemFilter struct {
	Status  string
	FeedURL string
}

// ItemStore is the sqlx-backed store for feed items and their status.
type ItemStore struct {
	db *sqlx.DB
}

// NewItemStore creates a new ItemStore.
func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *ItemStore) q(query string) string { return s.db.Rebind(query) }

// Upsert stores items for feedID, updating rows whose link already exists.
// Items without a link are skipped since the link is the status key.
// It returns the number of newly inserted items.
func (s *ItemStore) Upsert(ctx context.Context, feedID string, items []ItemInput) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	inserted := 0
	for _, it := range items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		var n int
		if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM items WHERE link = ?`), link); err != nil {
			return 0, fmt.Errorf("lookup item %s: %w", link, err)
		}
		if n > 0 {
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				UPDATE items SET feed_id = ?, title = ?, description = ?, published_text = ?, published_at = ?, fetched_at = ?
				WHERE link = ?
			`), feedID, it.Title, it.Description, it.PublishedText, it.PublishedAt.UTC(), now, link)
		} else {
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO items (id, feed_id, link, title, description, published_text, published_at, fetched_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`), uuid.New().String(), feedID, link, it.Title, it.Description, it.PublishedText, it.PublishedAt.UTC(), now)
			inserted++
		}
		if err != nil {
			return 0, fmt.Errorf("store item %s: %w", link, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit items: %w", err)
	}
	return inserted, nil
}

const itemColumns = `
	i.id, i.feed_id, i.link, i.title, i.description, i.published_text, i.published_at, i.fetched_at,
	f.title AS feed_title, f.url AS feed_url,
	COALESCE(s.is_read, FALSE) AS is_read,
	COALESCE(s.is_favorite, FALSE) AS is_favorite
	FROM items i
	JOIN feeds f ON f.id = i.feed_id
	LEFT JOIN item_status s ON s.link = i.link`

// List returns items matching f, newest first.
func (s *ItemStore) List(ctx context.Context, f ItemFilter) ([]*Item, error) {
	status, err := NormalizeFilter(f.Status)
	if err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	if f.FeedURL != "" {
		conds = append(conds, "f.url = ?")
		args = append(args, f.FeedURL)
	}
	switch status {
	case FilterUnread:
		conds = append(conds, "(s.is_read IS NULL OR s.is_read = FALSE)")
	case FilterFavorites:
		conds = append(conds, "s.is_favorite = TRUE")
	}

	query := "SELECT " + itemColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY i.published_at DESC, i.title ASC"

	var items []*Item
	if err := s.db.SelectContext(ctx, &items, s.q(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByLink returns the item stored under link, or ErrNotFound.
func (s *ItemStore) GetByLink(ctx context.Context, link string) (*Item, error) {
	var it Item
	err := s.db.GetContext(ctx, &it, s.q("SELECT "+itemColumns+" WHERE i.link = ?"), link)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ToggleRead flips the read flag of the item at link and returns the new value.
func (s *ItemStore) ToggleRead(ctx context.Context, link string) (bool, error) {
	return s.updateStatus(ctx, link, colRead, func(cur bool) bool { return !cur })
}

// SetRead sets the read flag of the item at link. Setting the current value is a no-op.
func (s *ItemStore) SetRead(ctx context.Context, link string, read bool) error {
	_, err := s.updateStatus(ctx, link, colRead, func(bool) bool { return read })
	return err
}

// ToggleFavorite flips the favorite flag of the item at link and returns the new value.
func (s *ItemStore) ToggleFavorite(ctx context.Context, link string) (bool, error) {
	return s.updateStatus(ctx, link, colFavorite, func(cur bool) bool { return !cur })
}

// MarkAllRead marks every unread item read, limited to one feed when
// feedURL is non-empty, and returns how many items changed.
func (s *ItemStore) MarkAllRead(ctx context.Context, feedURL string) (int64, error) {
	unread, err := s.List(ctx, ItemFilter{Status: FilterUnread, FeedURL: feedURL})
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, it := range unread {
		if err := writeStatus(ctx, tx, it.Link, colRead, true, now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mark all read: %w", err)
	}
	return int64(len(unread)), nil
}

type statusColumn string

const (
	colRead     statusColumn = "is_read"
	colFavorite statusColumn = "is_favorite"
)

func (s *ItemStore) updateStatus(ctx context.Context, link string, col statusColumn, next func(bool) bool) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM items WHERE link = ?`), link); err != nil {
		return false, fmt.Errorf("lookup item: %w", err)
	}
	if n == 0 {
		return false, ErrNotFound
	}

	var cur bool
	err = tx.GetContext(ctx, &cur, tx.Rebind(fmt.Sprintf(`SELECT %s FROM item_status WHERE link = ?`, col)), link)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read status: %w", err)
	}

	val := next(cur)
	if err := writeStatus(ctx, tx, link, col, val, time.Now().UTC()); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit status: %w", err)
	}
	return val, nil
}

// writeStatus sets one status column for link, inserting the row if needed.
// A plain SELECT then UPDATE/INSERT keeps the statement portable across
// sqlite, mysql and postgres upsert dialects.
func writeStatus(ctx context.Context, tx *sqlx.Tx, link string, col statusColumn, val bool, now time.Time) error {
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM item_status WHERE link = ?`), link); err != nil {
		return fmt.Errorf("lookup status: %w", err)
	}
	if n > 0 {
		_, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`UPDATE item_status SET %s = ?, updated_at = ? WHERE link = ?`, col)), val, now, link)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	}
	read, fav := false, false
	switch col {
	case colRead:
		read = val
	case colFavorite:
		fav = val
	}
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO item_status (link, is_read, is_favorite, updated_at) VALUES (?, ?, ?, ?)
	`), link, read, fav, now)
	if err != nil {
		return fmt.Errorf("insert status: %w", err)
	}
	return nil
}
