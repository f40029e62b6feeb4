package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFeedExists is returned when subscribing to a feed URL twice.
	ErrFeedExists = errors.New("feed already exists")
)

// FeedStoreIface exposes all feed subscription operations.
// No handler MAY query the DB directly; all access goes through this interface.
type FeedStoreIface interface {
	Create(ctx context.Context, url, title string) (*Feed, error)
	GetByURL(ctx context.Context, url string) (*Feed, error)
	ListAll(ctx context.Context) ([]*Feed, error)
	ListWithUnread(ctx context.Context) ([]*Feed, error)
	UpdateTitle(ctx context.Context, id, title string) error
	DeleteByURL(ctx context.Context, url string) error
}

// ItemStoreIface exposes item ingestion, listing and status changes.
type ItemStoreIface interface {
	Upsert(ctx context.Context, feedID string, items []ItemInput) (int, error)
	List(ctx context.Context, f ItemFilter) ([]*Item, error)
	GetByLink(ctx context.Context, link string) (*Item, error)
	ToggleRead(ctx context.Context, link string) (bool, error)
	SetRead(ctx context.Context, link string, read bool) error
	ToggleFavorite(ctx context.Context, link string) (bool, error)
	MarkAllRead(ctx context.Context, feedURL string) (int64, error)
}

var (
	_ FeedStoreIface = (*FeedStore)(nil)
	_ ItemStoreIface = (*ItemStore)(nil)
)
