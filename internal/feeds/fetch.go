// Package feeds fetches RSS/Atom/JSON feeds and keeps the stored items fresh.
package feeds

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/joestump/joe-reader/internal/store"
)

const feedAcceptHeader = "application/atom+xml, application/rss+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

// DisplayLayout is how publication times are shown in the reading list.
const DisplayLayout = "Jan 2, 2006 15:04"

type acceptTransport struct {
	base http.RoundTripper
}

func (t acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", feedAcceptHeader)
	}
	return base.RoundTrip(clone)
}

// Parsed is a fetched feed reduced to what the store keeps.
type Parsed struct {
	Title string
	Items []store.ItemInput
}

// FetchFunc downloads and parses the feed at url.
type FetchFunc func(ctx context.Context, url string) (*Parsed, error)

// NewFetcher returns a FetchFunc backed by gofeed. A nil client uses
// http.DefaultTransport.
func NewFetcher(client *http.Client, userAgent string) FetchFunc {
	if client == nil {
		client = &http.Client{}
	}
	wrapped := *client
	wrapped.Transport = acceptTransport{base: client.Transport}

	return func(ctx context.Context, url string) (*Parsed, error) {
		url = strings.TrimSpace(url)
		if url == "" {
			return nil, errors.New("feed url is empty")
		}
		fp := gofeed.NewParser()
		fp.UserAgent = userAgent
		fp.Client = &wrapped
		feed, err := fp.ParseURLWithContext(url, ctx)
		if err != nil {
			return nil, err
		}
		return convert(feed), nil
	}
}

func convert(feed *gofeed.Feed) *Parsed {
	p := &Parsed{
		Title: strings.TrimSpace(feed.Title),
		Items: make([]store.ItemInput, 0, len(feed.Items)),
	}
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		published, text := publication(it)
		p.Items = append(p.Items, store.ItemInput{
			Link:          strings.TrimSpace(it.Link),
			Title:         strings.TrimSpace(it.Title),
			Description:   it.Description,
			PublishedText: text,
			PublishedAt:   published,
		})
	}
	return p
}

// publication picks the item's time: parsed published, parsed updated, then
// the raw strings through ParseDate. When nothing parses the raw string is
// still shown and the time stays zero, sorting the item last.
func publication(it *gofeed.Item) (time.Time, string) {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC(), it.PublishedParsed.Format(DisplayLayout)
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC(), it.UpdatedParsed.Format(DisplayLayout)
	}
	for _, raw := range []string{it.Published, it.Updated} {
		if raw == "" {
			continue
		}
		if t, ok := ParseDate(raw); ok {
			return t.UTC(), t.Format(DisplayLayout)
		}
		return time.Time{}, raw
	}
	return time.Time{}, ""
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate tries the date layouts common in RSS and Atom feeds.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
