// Package theme keeps the light/dark preference on the page root and in
// local storage.
package theme

import (
	"log/slog"

	"github.com/andybalholm/cascadia"

	"github.com/joestump/joe-reader/internal/ui/dom"
	"github.com/joestump/joe-reader/internal/ui/localstore"
)

const (
	// StorageKey is the local storage key of the preference.
	StorageKey = "theme"
	Light      = "light"
	Dark       = "dark"

	attrTheme = "data-theme"
)

var toggleSel = cascadia.MustCompile("#theme-toggle")

// Toggle mirrors the theme preference to <html data-theme>.
type Toggle struct {
	doc   *dom.Document
	store localstore.Storage
	log   *slog.Logger
}

// Attach applies the initial theme and subscribes to clicks on
// #theme-toggle. The initial theme is the stored preference, else the
// server-rendered attribute, else dark when systemDark is set.
func Attach(doc *dom.Document, store localstore.Storage, systemDark bool, logger *slog.Logger) *Toggle {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Toggle{doc: doc, store: store, log: logger}
	dom.SetAttr(doc.Root(), attrTheme, t.initial(systemDark))
	doc.AddEventListener(dom.EventClick, t.onClick)
	return t
}

func (t *Toggle) initial(systemDark bool) string {
	if v, ok, err := t.store.Get(StorageKey); err != nil {
		t.log.Warn("read theme preference", "err", err)
	} else if ok && valid(v) {
		return v
	}
	if v := dom.AttrOr(t.doc.Root(), attrTheme, ""); valid(v) {
		return v
	}
	if systemDark {
		return Dark
	}
	return Light
}

func (t *Toggle) onClick(ev *dom.Event) {
	if dom.Closest(ev.Target, toggleSel) == nil {
		return
	}
	// The button also sits in a form that sets the server cookie; the
	// client handles it without a reload.
	ev.PreventDefault()

	next := Dark
	if t.Current() == Dark {
		next = Light
	}
	dom.SetAttr(t.doc.Root(), attrTheme, next)
	if err := t.store.Set(StorageKey, next); err != nil {
		t.log.Warn("store theme preference", "err", err)
	}
}

// Current returns the theme on the page root.
func (t *Toggle) Current() string {
	if v := dom.AttrOr(t.doc.Root(), attrTheme, ""); valid(v) {
		return v
	}
	return Light
}

func valid(v string) bool {
	return v == Light || v == Dark
}
