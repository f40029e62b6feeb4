package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joestump/joe-reader/internal/metrics"
	"github.com/joestump/joe-reader/internal/store"
)

// Options configures a Manager. Zero values get defaults.
type Options struct {
	Fetch       FetchFunc
	Timeout     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Report summarises one RefreshAll run.
type Report struct {
	Requested int
	Succeeded int
	Failed    int
	Inserted  int
}

// Manager subscribes to feeds and refreshes their items.
type Manager struct {
	feeds       store.FeedStoreIface
	items       store.ItemStoreIface
	fetch       FetchFunc
	timeout     time.Duration
	concurrency int
	log         *slog.Logger

	// refreshMu keeps the background loop and POST /refresh from
	// fetching the same feeds twice at once.
	refreshMu sync.Mutex
}

// NewManager creates a Manager over the given stores.
func NewManager(fs store.FeedStoreIface, is store.ItemStoreIface, opts Options) *Manager {
	if opts.Fetch == nil {
		opts.Fetch = NewFetcher(nil, "joe-reader/1.0")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		feeds:       fs,
		items:       is,
		fetch:       opts.Fetch,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		log:         opts.Logger,
	}
}

// Subscribe validates rawURL, fetches it and stores the feed with its items.
// It returns store.ErrFeedExists for a URL that is already subscribed.
func (m *Manager) Subscribe(ctx context.Context, rawURL string) (*store.Feed, error) {
	url, err := store.ValidateFeedURL(rawURL)
	if err != nil {
		return nil, err
	}
	if _, err := m.feeds.GetByURL(ctx, url); err == nil {
		return nil, store.ErrFeedExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	parsed, err := m.fetchOne(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	f, err := m.feeds.Create(ctx, url, parsed.Title)
	if err != nil {
		return nil, err
	}
	n, err := m.items.Upsert(ctx, f.ID, parsed.Items)
	if err != nil {
		return nil, fmt.Errorf("store items of %s: %w", url, err)
	}
	metrics.ItemsIngestedTotal.Add(float64(n))
	m.updateFeedGauge(ctx)
	m.log.Info("subscribed", "feed", url, "items", n)
	return f, nil
}

// Unsubscribe removes the feed at url and its items.
func (m *Manager) Unsubscribe(ctx context.Context, url string) error {
	if err := m.feeds.DeleteByURL(ctx, url); err != nil {
		return err
	}
	m.updateFeedGauge(ctx)
	m.log.Info("unsubscribed", "feed", url)
	return nil
}

// RefreshAll fetches every feed with bounded concurrency. A failing feed is
// logged and counted; it never aborts the others.
func (m *Manager) RefreshAll(ctx context.Context) (Report, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	start := time.Now()
	defer func() { metrics.FeedRefreshDuration.Observe(time.Since(start).Seconds()) }()

	feeds, err := m.feeds.ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list feeds: %w", err)
	}
	metrics.FeedsTotal.Set(float64(len(feeds)))

	var (
		mu     sync.Mutex
		report = Report{Requested: len(feeds)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, f := range feeds {
		g.Go(func() error {
			n, err := m.refreshOne(gctx, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				metrics.FeedRefreshesTotal.WithLabelValues("error").Inc()
				m.log.Warn("refresh feed failed", "feed", f.URL, "err", err)
				return nil
			}
			report.Succeeded++
			report.Inserted += n
			metrics.FeedRefreshesTotal.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	m.log.Info("refreshed feeds",
		"requested", report.Requested,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"new_items", report.Inserted,
		"took", time.Since(start).Round(time.Millisecond))
	return report, nil
}

// Run refreshes immediately and then every interval until ctx is done.
// A non-positive interval refreshes once.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if _, err := m.RefreshAll(ctx); err != nil {
		m.log.Error("refresh", "err", err)
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.RefreshAll(ctx); err != nil {
				m.log.Error("refresh", "err", err)
			}
		}
	}
}

func (m *Manager) refreshOne(ctx context.Context, f *store.Feed) (int, error) {
	parsed, err := m.fetchOne(ctx, f.URL)
	if err != nil {
		return 0, err
	}
	if parsed.Title != "" && parsed.Title != f.Title {
		if err := m.feeds.UpdateTitle(ctx, f.ID, parsed.Title); err != nil {
			return 0, fmt.Errorf("update title: %w", err)
		}
	}
	n, err := m.items.Upsert(ctx, f.ID, parsed.Items)
	if err != nil {
		return 0, err
	}
	metrics.ItemsIngestedTotal.Add(float64(n))
	return n, nil
}

func (m *Manager) fetchOne(ctx context.Context, url string) (*Parsed, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.fetch(ctx, url)
}

func (m *Manager) updateFeedGauge(ctx context.Context) {
	feeds, err := m.feeds.ListAll(ctx)
	if err != nil {
		return
	}
	metrics.FeedsTotal.Set(float64(len(feeds)))
}
