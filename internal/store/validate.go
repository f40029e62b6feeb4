package store

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrFeedURLInvalid is returned when a feed URL is empty or not http(s).
	ErrFeedURLInvalid = errors.New("feed URL must be an absolute http or https URL")

	// ErrFilterInvalid is returned for a read-state filter other than all, unread, favorites.
	ErrFilterInvalid = errors.New("filter must be one of: all, unread, favorites")
)

// Read-state filters accepted by ItemStore.List.
const (
	FilterAll       = "all"
	FilterUnread    = "unread"
	FilterFavorites = "favorites"
)

// ValidateFeedURL trims raw and checks it is an absolute http(s) URL with a host.
func ValidateFeedURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrFeedURLInvalid
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFeedURLInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrFeedURLInvalid, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrFeedURLInvalid)
	}
	return trimmed, nil
}

// NormalizeFilter maps "" to FilterAll and rejects unknown values.
func NormalizeFilter(f string) (string, error) {
	switch f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterUnread, FilterFavorites:
		return f, nil
	default:
		return "", ErrFilterInvalid
	}
}
