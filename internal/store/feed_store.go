package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Feed is a subscribed RSS/Atom feed. UnreadCount is only populated by
// ListWithUnread.
type Feed struct {
	ID          string    `db:"id"`
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	CreatedAt   time.Time `db:"created_at"`
	UnreadCount int       `db:"unread_count"`
}

// DisplayTitle falls back to the URL for feeds that never reported a title.
func (f *Feed) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL
}

// FeedStore is the sqlx-backed store for feed subscriptions.
type FeedStore struct {
	db *sqlx.DB
}

// NewFeedStore creates a new FeedStore.
func NewFeedStore(db *sqlx.DB) *FeedStore {
	return &FeedStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *FeedStore) q(query string) string { return s.db.Rebind(query) }

// Create subscribes to url. It returns ErrFeedExists when url is already stored.
func (s *FeedStore) Create(ctx context.Context, url, title string) (*Feed, error) {
	if _, err := s.GetByURL(ctx, url); err == nil {
		return nil, ErrFeedExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	f := &Feed{
		ID:        uuid.New().String(),
		URL:       url,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO feeds (id, url, title, created_at) VALUES (?, ?, ?, ?)
	`), f.ID, f.URL, f.Title, f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert feed: %w", err)
	}
	return f, nil
}

// GetByURL returns the feed subscribed at url, or ErrNotFound.
func (s *FeedStore) GetByURL(ctx context.Context, url string) (*Feed, error) {
	var f Feed
	err := s.db.GetContext(ctx, &f, s.q(`SELECT id, url, title, created_at FROM feeds WHERE url = ?`), url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListAll returns every feed ordered by creation time.
func (s *FeedStore) ListAll(ctx context.Context) ([]*Feed, error) {
	var feeds []*Feed
	err := s.db.SelectContext(ctx, &feeds, `SELECT id, url, title, created_at FROM feeds ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return feeds, nil
}

// ListWithUnread returns every feed with the number of its unread items.
func (s *FeedStore) ListWithUnread(ctx context.Context) ([]*Feed, error) {
	var feeds []*Feed
	err := s.db.SelectContext(ctx, &feeds, `
		SELECT f.id, f.url, f.title, f.created_at,
		       COALESCE(SUM(CASE
		           WHEN i.id IS NULL THEN 0
		           WHEN s.is_read IS NULL OR s.is_read = FALSE THEN 1
		           ELSE 0 END), 0) AS unread_count
		FROM feeds f
		LEFT JOIN items i ON i.feed_id = f.id
		LEFT JOIN item_status s ON s.link = i.link
		GROUP BY f.id, f.url, f.title, f.created_at
		ORDER BY f.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return feeds, nil
}

// UpdateTitle stores the title reported by the feed itself.
func (s *FeedStore) UpdateTitle(ctx context.Context, id, title string) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE feeds SET title = ? WHERE id = ?`), title, id)
	return err
}

// DeleteByURL removes the feed and its items. Item statuses are kept.
func (s *FeedStore) DeleteByURL(ctx context.Context, url string) error {
	f, err := s.GetByURL(ctx, url)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM items WHERE feed_id = ?`), f.ID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM feeds WHERE id = ?`), f.ID); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return tx.Commit()
}
