package articles_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/joestump/joe-reader/internal/ui/articles"
	"github.com/joestump/joe-reader/internal/ui/dom"
)

var articleSel = cascadia.MustCompile(".article")

// harness hosts one page and records everything the controller causes.
type harness struct {
	t       *testing.T
	doc     *dom.Document
	ctrl    *articles.Controller
	sched   *manualScheduler
	logs    bytes.Buffer
	effects []string
}

func newHarness(t *testing.T, page string) *harness {
	t.Helper()
	h := &harness{t: t}
	h.sched = &manualScheduler{}
	doc, err := dom.ParseString(page, nil, h)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	h.doc = doc
	logger := slog.New(slog.NewTextHandler(&h.logs, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
	h.ctrl = articles.Attach(doc, h, h.sched, logger)
	return h
}

func (h *harness) Navigate(href string) {
	h.effects = append(h.effects, "navigate "+href)
}

func (h *harness) Submit(method, action string, values url.Values) {
	h.effects = append(h.effects, fmt.Sprintf("submit %s %s %s", method, action, values.Encode()))
}

func (h *harness) MarkRead(_ context.Context, link string) error {
	h.effects = append(h.effects, "request "+link)
	return nil
}

func (h *harness) article(link string) *html.Node {
	for _, n := range h.doc.All(articleSel) {
		if dom.AttrOr(n, "data-link", "") == link {
			return n
		}
	}
	return nil
}

// checkInvariants fails the test when more than one article is selected or
// the marked article is not the controller's selection.
func (h *harness) checkInvariants() {
	h.t.Helper()
	var marked []*html.Node
	for _, n := range h.doc.All(articleSel) {
		if dom.HasClass(n, "selected") {
			marked = append(marked, n)
		}
		if v, ok := dom.Attr(n, "data-read"); ok && (v == "true") != dom.HasClass(n, "read") {
			h.t.Errorf("article %q: data-read=%s but classes %q", dom.AttrOr(n, "data-link", ""), v, dom.AttrOr(n, "class", ""))
		}
	}
	link, ok := h.ctrl.Selected()
	switch {
	case len(marked) > 1:
		h.t.Errorf("%d articles marked selected", len(marked))
	case len(marked) == 1 && (!ok || dom.AttrOr(marked[0], "data-link", "") != link):
		h.t.Errorf("marked article %q is not the selection %q", dom.AttrOr(marked[0], "data-link", ""), link)
	case len(marked) == 0 && ok:
		h.t.Errorf("controller selected %q but nothing is marked", link)
	}
}

func (h *harness) render() string {
	h.checkInvariants()
	var b strings.Builder
	for _, n := range h.doc.All(articleSel) {
		state := "unread"
		if dom.HasClass(n, "read") {
			state = "read"
		}
		fmt.Fprintf(&b, "%s %s", orNoLink(dom.AttrOr(n, "data-link", "")), state)
		if dom.HasClass(n, "selected") {
			b.WriteString(" selected")
		}
		b.WriteString("\n")
	}

	switch btn := h.doc.ByID(articles.ToggleButtonID); {
	case btn == nil:
		b.WriteString("button: none\n")
	case dom.Hidden(btn):
		b.WriteString("button: hidden\n")
	default:
		fmt.Fprintf(&b, "button: %q\n", dom.Text(btn))
	}

	if link, ok := h.ctrl.Selected(); ok {
		fmt.Fprintf(&b, "selected: %s\n", orNoLink(link))
	} else {
		b.WriteString("selected: none\n")
	}

	for _, e := range h.effects {
		b.WriteString(e + "\n")
	}
	h.effects = nil
	for _, line := range strings.Split(strings.TrimSpace(h.logs.String()), "\n") {
		if line != "" {
			b.WriteString("log: " + line + "\n")
		}
	}
	h.logs.Reset()
	return b.String()
}

func orNoLink(link string) string {
	if link == "" {
		return "(no link)"
	}
	return link
}

// manualScheduler issues work immediately but holds completions until the
// test delivers them, so responses can interleave with later clicks.
type manualScheduler struct {
	pending []func(error)
}

func (s *manualScheduler) Go(work func(ctx context.Context) error, done func(error)) {
	_ = work(context.Background())
	s.pending = append(s.pending, done)
}

func (s *manualScheduler) respond(err error) bool {
	if len(s.pending) == 0 {
		return false
	}
	done := s.pending[0]
	s.pending = s.pending[1:]
	done(err)
	return true
}

var errUnavailable = errors.New("status 503")
