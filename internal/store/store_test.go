package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joestump/joe-reader/internal/store"
	"github.com/joestump/joe-reader/internal/testutil"
)

// newTestEnv creates feed and item stores sharing one migrated DB.
func newTestEnv(t *testing.T) (*store.FeedStore, *store.ItemStore) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return store.NewFeedStore(db), store.NewItemStore(db)
}

// seedFeed subscribes to url and stores items for it.
func seedFeed(t *testing.T, fs *store.FeedStore, is *store.ItemStore, url string, items ...store.ItemInput) *store.Feed {
	t.Helper()
	ctx := context.Background()
	f, err := fs.Create(ctx, url, "Feed "+url)
	if err != nil {
		t.Fatalf("seed feed %q: %v", url, err)
	}
	if _, err := is.Upsert(ctx, f.ID, items); err != nil {
		t.Fatalf("seed items for %q: %v", url, err)
	}
	return f
}

func item(link string, age time.Duration) store.ItemInput {
	return store.ItemInput{
		Link:        link,
		Title:       "Title " + link,
		PublishedAt: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC).Add(-age),
	}
}

func links(items []*store.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Link
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFeedStore_CreateDuplicate(t *testing.T) {
	fs, _ := newTestEnv(t)
	ctx := context.Background()

	f, err := fs.Create(ctx, "https://example.com/feed", "Example")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID == "" {
		t.Error("expected non-empty ID")
	}
	if _, err := fs.Create(ctx, "https://example.com/feed", "Again"); !errors.Is(err, store.ErrFeedExists) {
		t.Errorf("second Create error = %v, want ErrFeedExists", err)
	}
}

func TestFeedStore_GetByURLNotFound(t *testing.T) {
	fs, _ := newTestEnv(t)
	if _, err := fs.GetByURL(context.Background(), "https://nope.example"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByURL error = %v, want ErrNotFound", err)
	}
}

func TestItemStore_UpsertAndList(t *testing.T) {
	fs, is := newTestEnv(t)
	ctx := context.Background()

	f := seedFeed(t, fs, is, "https://a.example/feed", item("/old", 2*time.Hour), item("/new", 0), store.ItemInput{Title: "no link"})

	items, err := is.List(ctx, store.ItemFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := links(items), []string{"/new", "/old"}; !equal(got, want) {
		t.Fatalf("links = %v, want %v", got, want)
	}
	if items[0].FeedURL != f.URL {
		t.Errorf("FeedURL = %q, want %q", items[0].FeedURL, f.URL)
	}
	if items[0].Read || items[0].Favorite {
		t.Error("new items should be unread and not favorite")
	}

	// Re-ingesting an existing link updates in place.
	updated := item("/new", 0)
	updated.Title = "Renamed"
	n, err := is.Upsert(ctx, f.ID, []store.ItemInput{updated})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}
	got, err := is.GetByLink(ctx, "/new")
	if err != nil {
		t.Fatalf("GetByLink: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want %q", got.Title, "Renamed")
	}
}

func TestItemStore_ToggleRead(t *testing.T) {
	fs, is := newTestEnv(t)
	ctx := context.Background()
	seedFeed(t, fs, is, "https://a.example/feed", item("/a", 0))

	read, err := is.ToggleRead(ctx, "/a")
	if err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	if !read {
		t.Error("first toggle should mark read")
	}
	read, err = is.ToggleRead(ctx, "/a")
	if err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	if read {
		t.Error("second toggle should mark unread")
	}

	if _, err := is.ToggleRead(ctx, "/missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ToggleRead(missing) error = %v, want ErrNotFound", err)
	}
}

func TestItemStore_SetReadIsIdempotent(t *testing.T) {
	fs, is := newTestEnv(t)
	ctx := context.Background()
	seedFeed(t, fs, is, "https://a.example/feed", item("/a", 0))

	for i := 0; i < 2; i++ {
		if err := is.SetRead(ctx, "/a", true); err != nil {
			t.Fatalf("SetRead #%d: %v", i, err)
		}
	}
	got, err := is.GetByLink(ctx, "/a")
	if err != nil {
		t.Fatalf("GetByLink: %v", err)
	}
	if !got.Read {
		t.Error("item should be read after SetRead(true) twice")
	}
}

func TestItemStore_Filters(t *testing.T) {
	fs, is := newTestEnv(t)
	ctx := context.Background()
	seedFeed(t, fs, is, "https://a.example/feed", item("/a1", 0), item("/a2", time.Hour))
	seedFeed(t, fs, is, "https://b.example/feed", item("/b1", 30*time.Minute))

	if err := is.SetRead(ctx, "/a1", true); err != nil {
		t.Fatalf("SetRead: %v", err)
	}
	if _, err := is.ToggleFavorite(ctx, "/b1"); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	tests := []struct {
		name   string
		filter store.ItemFilter
		want   []string
	}{
		{"all", store.ItemFilter{}, []string{"/a1", "/b1", "/a2"}},
		{"unread", store.ItemFilter{Status: store.FilterUnread}, []string{"/b1", "/a2"}},
		{"favorites", store.ItemFilter{Status: store.FilterFavorites}, []string{"/b1"}},
		{"feed", store.ItemFilter{FeedURL: "https://a.example/feed"}, []string{"/a1", "/a2"}},
		{"feed unread", store.ItemFilter{Status: store.FilterUnread, FeedURL: "https://a.example/feed"}, []string{"/a2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := is.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if got := links(items); !equal(got, tt.want) {
				t.Errorf("links = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := is.List(ctx, store.ItemFilter{Status: "bogus"}); !errors.Is(err, store.ErrFilterInvalid) {
		t.Errorf("List(bogus) error = %v, want ErrFilterInvalid", err)
	}
}

func TestItemStore_MarkAllRead(t *testing.T) {
	fs, is := newTestEnv(t)
	ctx := context.Background()
	seedFeed(t, fs, is, "https://a.example/feed", item("/a1", 0), item("/a2", time.Hour))
	seedFeed(t, fs, is, "https://b.example/feed", item("/b1", 0))

	n, err := is.MarkAllRead(ctx, "https://a.example/feed")
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n != 2 {
		t.Errorf("marked = %d, want 2", n)
	}

	unread, err := is.List(ctx, store.ItemFilter{Status: store.FilterUnread})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got, want := links(unread), []string{"/b1"}; !equal(got, want) {
		t.Errorf("unread = %v, want %v", got, want)
	}
}

func TestFeedStore_ListWithUnreadAndDelete(t *testing.T) {
	fs, is := newTestEnv(t)
	ctx := context.Background()
	seedFeed(t, fs, is, "https://a.example/feed", item("/a1", 0), item("/a2", time.Hour))
	seedFeed(t, fs, is, "https://b.example/feed")

	if err := is.SetRead(ctx, "/a1", true); err != nil {
		t.Fatalf("SetRead: %v", err)
	}

	feeds, err := fs.ListWithUnread(ctx)
	if err != nil {
		t.Fatalf("ListWithUnread: %v", err)
	}
	counts := map[string]int{}
	for _, f := range feeds {
		counts[f.URL] = f.UnreadCount
	}
	if counts["https://a.example/feed"] != 1 {
		t.Errorf("unread a = %d, want 1", counts["https://a.example/feed"])
	}
	if counts["https://b.example/feed"] != 0 {
		t.Errorf("unread b = %d, want 0", counts["https://b.example/feed"])
	}

	if err := fs.DeleteByURL(ctx, "https://a.example/feed"); err != nil {
		t.Fatalf("DeleteByURL: %v", err)
	}
	items, err := is.List(ctx, store.ItemFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items after delete = %v, want none", links(items))
	}

	// Status is keyed by link and survives re-subscription.
	seedFeed(t, fs, is, "https://a.example/feed", item("/a1", 0))
	got, err := is.GetByLink(ctx, "/a1")
	if err != nil {
		t.Fatalf("GetByLink: %v", err)
	}
	if !got.Read {
		t.Error("read status should survive feed removal")
	}

	if err := fs.DeleteByURL(ctx, "https://gone.example"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteByURL(missing) error = %v, want ErrNotFound", err)
	}
}
