package tui

import (
	"context"
	"net/url"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joestump/joe-reader/internal/readerclient"
)

// Client is what the terminal reader needs from the server.
type Client interface {
	Load(ctx context.Context, u *url.URL) (*readerclient.Page, error)
	Submit(ctx context.Context, method, action string, values url.Values, referer *url.URL) (*readerclient.Page, error)
	MarkRead(ctx context.Context, link string) error
	Resolve(ref string, from *url.URL) (*url.URL, error)
	SameOrigin(u *url.URL) bool
}

type pageMsg struct {
	page *readerclient.Page
	err  error
}

// asyncDoneMsg carries a background completion back onto the event loop.
type asyncDoneMsg struct {
	done func(error)
	err  error
}

type openedMsg struct {
	url string
	err error
}

type copiedMsg struct {
	link string
	err  error
}

var clipboardWriteAll = clipboard.WriteAll

func copyCmd(link string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{link: link, err: clipboardWriteAll(link)}
	}
}

// host is the page's browser: it turns navigations, form submissions and
// background work into bubbletea commands. Commands queue up while a key is
// handled and are returned together from Update.
type host struct {
	m     *Model
	queue []tea.Cmd
}

func (h *host) flush() tea.Cmd {
	cmds := h.queue
	h.queue = nil
	return tea.Batch(cmds...)
}

// Navigate loads same-origin pages and hands everything else to the
// system browser.
func (h *host) Navigate(href string) {
	m := h.m
	u, err := m.client.Resolve(href, m.location)
	if err != nil {
		m.log.Warn("bad link", "href", href, "err", err)
		return
	}
	if !m.client.SameOrigin(u) {
		h.queue = append(h.queue, openCmd(u.String(), m.openURL))
		return
	}
	m.loading = true
	h.queue = append(h.queue, loadCmd(m.ctx, m.client, u))
}

func (h *host) Submit(method, action string, values url.Values) {
	m := h.m
	m.loading = true
	h.queue = append(h.queue, submitCmd(m.ctx, m.client, method, action, values, m.location))
}

// Go runs work in a command; done runs later inside Update.
func (h *host) Go(work func(ctx context.Context) error, done func(error)) {
	ctx := h.m.ctx
	h.queue = append(h.queue, func() tea.Msg {
		return asyncDoneMsg{done: done, err: work(ctx)}
	})
}

func loadCmd(ctx context.Context, c Client, u *url.URL) tea.Cmd {
	return func() tea.Msg {
		p, err := c.Load(ctx, u)
		return pageMsg{page: p, err: err}
	}
}

func submitCmd(ctx context.Context, c Client, method, action string, values url.Values, referer *url.URL) tea.Cmd {
	return func() tea.Msg {
		p, err := c.Submit(ctx, method, action, values, referer)
		return pageMsg{page: p, err: err}
	}
}

func openCmd(u string, open func(string) error) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{url: u, err: open(u)}
	}
}
