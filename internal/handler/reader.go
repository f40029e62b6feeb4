package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/joe-reader/internal/feeds"
	"github.com/joestump/joe-reader/internal/metrics"
	"github.com/joestump/joe-reader/internal/store"
)

// IndexPage is the template data for the reading list.
type IndexPage struct {
	BasePage
	Feeds       []*store.Feed
	Items       []*store.Item
	Filter      string
	FeedURL     string
	CurrentFeed *store.Feed
	UnreadTotal int
	Flash       *Flash
}

// ReaderHandler serves the reading list and the form endpoints that change it.
type ReaderHandler struct {
	feeds    store.FeedStoreIface
	items    store.ItemStoreIface
	manager  *feeds.Manager
	sessions *scs.SessionManager
	log      *slog.Logger
}

// NewReaderHandler creates a new ReaderHandler.
func NewReaderHandler(fs store.FeedStoreIface, is store.ItemStoreIface, m *feeds.Manager, sm *scs.SessionManager, logger *slog.Logger) *ReaderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReaderHandler{feeds: fs, items: is, manager: m, sessions: sm, log: logger}
}

// Index renders the reading list. ?filter= selects all, unread or favorites
// (anything else shows all); ?feedURL= restricts the list to one feed.
func (h *ReaderHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := store.NormalizeFilter(r.URL.Query().Get("filter"))
	if err != nil {
		filter = store.FilterAll
	}
	feedURL := r.URL.Query().Get("feedURL")

	items, err := h.items.List(ctx, store.ItemFilter{Status: filter, FeedURL: feedURL})
	if err != nil {
		h.log.Error("list items", "err", err)
		http.Error(w, "could not load articles", http.StatusInternalServerError)
		return
	}
	feedList, err := h.feeds.ListWithUnread(ctx)
	if err != nil {
		h.log.Error("list feeds", "err", err)
		http.Error(w, "could not load feeds", http.StatusInternalServerError)
		return
	}

	data := IndexPage{
		BasePage: BasePage{Theme: themeFromRequest(r)},
		Feeds:    feedList,
		Items:    items,
		Filter:   filter,
		FeedURL:  feedURL,
		Flash:    popFlash(ctx, h.sessions),
	}
	for _, f := range feedList {
		data.UnreadTotal += f.UnreadCount
		if f.URL == feedURL {
			data.CurrentFeed = f
		}
	}
	render(w, "index.html", data)
}

// Add handles POST /add: subscribe to feed_url and go back to the list.
func (h *ReaderHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := strings.TrimSpace(r.PostFormValue("feed_url"))
	if raw == "" {
		putFlash(ctx, h.sessions, "error", "Feed URL cannot be empty")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	f, err := h.manager.Subscribe(ctx, raw)
	switch {
	case errors.Is(err, store.ErrFeedExists):
		// Already subscribed; nothing to report.
	case err != nil:
		h.log.Warn("subscribe", "feed", raw, "err", err)
		putFlash(ctx, h.sessions, "error", "Failed to parse feed: "+err.Error())
	default:
		putFlash(ctx, h.sessions, "success", "Subscribed to "+f.DisplayTitle())
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Remove handles POST /remove.
func (h *ReaderHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedURL := strings.TrimSpace(r.PostFormValue("feed_url"))
	if feedURL != "" {
		err := h.manager.Unsubscribe(ctx, feedURL)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			h.log.Error("unsubscribe", "feed", feedURL, "err", err)
			putFlash(ctx, h.sessions, "error", "Could not remove feed")
		default:
			putFlash(ctx, h.sessions, "success", "Feed removed")
		}
	}
	redirectBack(w, r)
}

// Refresh handles POST /refresh: fetch every feed now.
func (h *ReaderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rep, err := h.manager.RefreshAll(ctx)
	switch {
	case err != nil:
		h.log.Error("refresh", "err", err)
		putFlash(ctx, h.sessions, "error", "Refresh failed")
	case rep.Failed > 0:
		putFlash(ctx, h.sessions, "error", strconv.Itoa(rep.Failed)+" of "+strconv.Itoa(rep.Requested)+" feeds failed to refresh")
	}
	redirectBack(w, r)
}

// ToggleRead handles POST /toggle-read.
//
// With read=<bool> the status is set, so repeating the request is harmless.
// Without it the status is flipped. Script requests (X-Requested-With: fetch)
// get 204; form submissions get 303 back to the page they came from.
func (h *ReaderHandler) ToggleRead(w http.ResponseWriter, r *http.Request) {
	path := "form"
	if isBackground(r) {
		path = "background"
	}
	link := strings.TrimSpace(r.PostFormValue("link"))
	if link == "" {
		metrics.ReadStatusChangesTotal.WithLabelValues(path, "invalid").Inc()
		http.Error(w, "missing link", http.StatusBadRequest)
		return
	}

	var err error
	if v := r.PostFormValue("read"); v != "" {
		read, perr := strconv.ParseBool(v)
		if perr != nil {
			metrics.ReadStatusChangesTotal.WithLabelValues(path, "invalid").Inc()
			http.Error(w, "invalid read value", http.StatusBadRequest)
			return
		}
		err = h.items.SetRead(r.Context(), link, read)
	} else {
		_, err = h.items.ToggleRead(r.Context(), link)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.ReadStatusChangesTotal.WithLabelValues(path, "not_found").Inc()
		http.Error(w, "unknown article", http.StatusNotFound)
		return
	case err != nil:
		metrics.ReadStatusChangesTotal.WithLabelValues(path, "error").Inc()
		h.log.Error("change read status", "link", link, "err", err)
		http.Error(w, "could not update article", http.StatusInternalServerError)
		return
	}
	metrics.ReadStatusChangesTotal.WithLabelValues(path, "ok").Inc()

	if path == "background" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectBack(w, r)
}

// ToggleFavorite handles POST /toggle-favorite.
func (h *ReaderHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	link := strings.TrimSpace(r.PostFormValue("link"))
	if link == "" {
		http.Error(w, "missing link", http.StatusBadRequest)
		return
	}
	if _, err := h.items.ToggleFavorite(r.Context(), link); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "unknown article", http.StatusNotFound)
			return
		}
		h.log.Error("toggle favorite", "link", link, "err", err)
		http.Error(w, "could not update article", http.StatusInternalServerError)
		return
	}
	redirectBack(w, r)
}

// MarkAllRead handles POST /mark-all-read, limited to feed_url when given.
func (h *ReaderHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedURL := strings.TrimSpace(r.PostFormValue("feed_url"))
	n, err := h.items.MarkAllRead(ctx, feedURL)
	if err != nil {
		h.log.Error("mark all read", "feed", feedURL, "err", err)
		http.Error(w, "could not update articles", http.StatusInternalServerError)
		return
	}
	h.log.Info("marked all read", "feed", feedURL, "count", n)
	redirectBack(w, r)
}
