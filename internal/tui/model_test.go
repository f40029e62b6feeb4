package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joestump/joe-reader/internal/readerclient"
	"github.com/joestump/joe-reader/internal/ui/dom"
	"github.com/joestump/joe-reader/internal/ui/localstore"
)

const testPage = `<!doctype html>
<html data-theme="light"><body>
<header>
  <form method="post" action="/theme"><input type="hidden" name="theme" value="dark"><button id="theme-toggle" type="submit">theme</button></form>
  <button id="sidebar-toggle" type="button">feeds</button>
  <select id="filter-dropdown" name="filter">
    <option value="all" %s>All</option>
    <option value="unread" %s>Unread</option>
    <option value="favorites">Favorites</option>
  </select>
  <button id="global-toggle-read-button" style="display: none">Mark as Read</button>
</header>
<nav id="sidebar">
  <a class="feed-link active" href="/?feedURL=https%%3A%%2F%%2Fblog.example%%2Ffeed"><span class="feed-title">Example Blog</span> <span class="unread-count">1</span></a>
  <form id="add-feed-form" method="post" action="/add"><input type="url" id="feed-url-input" name="feed_url"><button id="add-feed-button" type="submit">Add</button></form>
  <form method="post" action="/refresh"><button id="refresh-button" type="submit">Refresh</button></form>
</nav>
<main id="article-list">
  <div class="flash">Feed added</div>
  <div class="article unread" data-link="https://blog.example/a" data-read="false">
    <a class="article-title" href="https://blog.example/a">Alpha</a>
    <span class="article-feed">Example Blog</span><span class="article-date">Jan 2, 2025 10:00</span>
    <form method="post" action="/toggle-favorite"><input type="hidden" name="link" value="https://blog.example/a"><button class="favorite-button" type="submit">fav</button></form>
  </div>
  <div class="article read favorite" data-link="https://blog.example/b" data-read="true">
    <a class="article-title" href="https://blog.example/b">Beta</a>
    <span class="article-feed">Example Blog</span>
  </div>
  <form method="post" action="/mark-all-read"><button id="mark-all-read-button" type="submit">Mark all read</button></form>
</main>
</body></html>`

func renderPage(filter string) string {
	all, unread := "selected", ""
	if filter == "unread" {
		all, unread = "", "selected"
	}
	return fmt.Sprintf(testPage, all, unread)
}

type fakeClient struct {
	base    *url.URL
	loads   []string
	submits []string
	marks   []string
	markErr error
}

func newFakeClient() *fakeClient {
	base, _ := url.Parse("http://reader.test/")
	return &fakeClient{base: base}
}

func (c *fakeClient) page(u *url.URL) *readerclient.Page {
	return &readerclient.Page{URL: u, Body: []byte(renderPage(u.Query().Get("filter")))}
}

func (c *fakeClient) Load(_ context.Context, u *url.URL) (*readerclient.Page, error) {
	c.loads = append(c.loads, u.RequestURI())
	return c.page(u), nil
}

func (c *fakeClient) Submit(_ context.Context, method, action string, values url.Values, referer *url.URL) (*readerclient.Page, error) {
	c.submits = append(c.submits, fmt.Sprintf("%s %s %s", method, action, values.Encode()))
	return c.page(referer), nil
}

func (c *fakeClient) MarkRead(_ context.Context, link string) error {
	c.marks = append(c.marks, link)
	return c.markErr
}

func (c *fakeClient) Resolve(ref string, from *url.URL) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if from == nil {
		from = c.base
	}
	return from.ResolveReference(r), nil
}

func (c *fakeClient) SameOrigin(u *url.URL) bool { return u.Host == c.base.Host }

type testEnv struct {
	m      *Model
	client *fakeClient
	store  *localstore.Memory
	opened []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{client: newFakeClient(), store: localstore.NewMemory()}
	env.m = New(context.Background(), env.client, Options{
		StartURL:          env.client.base,
		Storage:           env.store,
		SidebarBreakpoint: 100,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		OpenURL: func(u string) error {
			env.opened = append(env.opened, u)
			return nil
		},
	})
	env.run(env.m.Init())
	if env.m.doc == nil {
		t.Fatalf("page not loaded: %v", env.m.err)
	}
	return env
}

// run executes cmd and feeds every resulting message back into the model,
// the way the bubbletea program loop would.
func (e *testEnv) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			e.run(c)
		}
		return
	}
	if msg == nil {
		return
	}
	_, next := e.m.Update(msg)
	e.run(next)
}

func (e *testEnv) press(keys ...tea.KeyMsg) {
	for _, k := range keys {
		_, cmd := e.m.Update(k)
		e.run(cmd)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestModel_InitialView(t *testing.T) {
	env := newTestEnv(t)

	view := env.m.View()
	for _, want := range []string{"Alpha", "Beta", "Example Blog", "Feed added", "filter: all", "theme: light"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Mark as Read") {
		t.Errorf("toggle button shown before any selection:\n%s", view)
	}
	if got := env.client.loads; len(got) != 1 || got[0] != "/" {
		t.Errorf("loads = %v, want [/]", got)
	}
}

func TestModel_SelectAndOpenMarksRead(t *testing.T) {
	env := newTestEnv(t)

	env.press(space)
	if link, ok := env.m.articles.Selected(); !ok || link != "https://blog.example/a" {
		t.Fatalf("Selected = %q, %v", link, ok)
	}
	if !strings.Contains(env.m.View(), "Mark as Read") {
		t.Errorf("toggle button not shown after selection")
	}

	env.press(enter)
	if got := env.client.marks; len(got) != 1 || got[0] != "https://blog.example/a" {
		t.Errorf("marks = %v", got)
	}
	if got := env.opened; len(got) != 1 || got[0] != "https://blog.example/a" {
		t.Errorf("opened = %v", got)
	}
	a := env.m.rows[0]
	if !dom.HasClass(a, "read") || dom.AttrOr(a, "data-read", "") != "true" {
		t.Errorf("article not marked read: %s", dom.AttrOr(a, "class", ""))
	}
	if !strings.Contains(env.m.View(), "Mark as Unread") {
		t.Errorf("label not refreshed after read mark:\n%s", env.m.View())
	}
	if len(env.client.loads) != 1 {
		t.Errorf("external link reloaded the page: %v", env.client.loads)
	}
}

func TestModel_ToggleButtonSubmitsAndReloads(t *testing.T) {
	env := newTestEnv(t)

	env.press(runes("j"), space, runes("t"))

	want := "POST /toggle-read link=https%3A%2F%2Fblog.example%2Fb"
	if got := env.client.submits; len(got) != 1 || got[0] != want {
		t.Fatalf("submits = %v, want [%s]", got, want)
	}
	if _, ok := env.m.articles.Selected(); ok {
		t.Error("selection survived the reload")
	}
	if env.m.cursor != 1 {
		t.Errorf("cursor = %d, want it kept on the same article", env.m.cursor)
	}
}

func TestModel_FilterCycleNavigates(t *testing.T) {
	env := newTestEnv(t)

	env.press(runes("f"))

	if got := env.client.loads; len(got) != 2 || got[1] != "/?filter=unread" {
		t.Fatalf("loads = %v", got)
	}
	if !strings.Contains(env.m.View(), "filter: unread") {
		t.Errorf("view does not show new filter")
	}
}

func TestModel_SidebarOpensAndClosesOnNarrowScreens(t *testing.T) {
	env := newTestEnv(t)
	env.m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	env.press(runes("s"))
	if !env.m.sidebar.Open() {
		t.Fatal("sidebar not open")
	}
	if !strings.Contains(env.m.View(), "(1)") {
		t.Errorf("sidebar unread count missing:\n%s", env.m.View())
	}

	env.press(esc)
	if env.m.sidebar.Open() {
		t.Error("outside click did not close the sidebar")
	}
}

func TestModel_ThemeToggleIsLocal(t *testing.T) {
	env := newTestEnv(t)

	env.press(runes("T"))

	if env.m.theme.Current() != "dark" {
		t.Errorf("theme = %q, want dark", env.m.theme.Current())
	}
	if v, _, _ := env.store.Get("theme"); v != "dark" {
		t.Errorf("stored theme = %q, want dark", v)
	}
	if len(env.client.submits) != 0 {
		t.Errorf("theme toggle submitted the form: %v", env.client.submits)
	}
}

func TestModel_AddFeed(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.m.Update(runes("a"))
	if !env.m.adding {
		t.Fatal("add input not opened")
	}
	for _, r := range "https://new.example/rss" {
		_, _ = env.m.Update(runes(string(r)))
	}
	env.press(enter)

	want := "POST /add feed_url=https%3A%2F%2Fnew.example%2Frss"
	if got := env.client.submits; len(got) != 1 || got[0] != want {
		t.Errorf("submits = %v, want [%s]", got, want)
	}
	if env.m.adding {
		t.Error("input still open")
	}
}

func TestModel_FavoriteAndMarkAllRead(t *testing.T) {
	env := newTestEnv(t)

	env.press(runes("*"))
	env.press(runes("A"))

	want := []string{
		"POST /toggle-favorite link=https%3A%2F%2Fblog.example%2Fa",
		"POST /mark-all-read ",
	}
	if got := env.client.submits; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("submits = %q, want %q", got, want)
	}
	if _, ok := env.m.articles.Selected(); ok {
		t.Error("favorite button changed the selection")
	}
}

func TestModel_Quit(t *testing.T) {
	env := newTestEnv(t)
	_, cmd := env.m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModel_CopyLink(t *testing.T) {
	var copied []string
	orig := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = orig })

	env := newTestEnv(t)
	env.press(runes("j"), runes("y"))

	if len(copied) != 1 || copied[0] != "https://blog.example/b" {
		t.Errorf("copied = %v", copied)
	}
	if !strings.Contains(env.m.View(), "Copied https://blog.example/b") {
		t.Error("status does not confirm the copy")
	}
}

func TestModel_TruncatesLongTitles(t *testing.T) {
	env := newTestEnv(t)
	env.m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	dom.SetText(dom.Query(env.m.rows[0], titleLinkSel), strings.Repeat("x", 80))

	if strings.Contains(env.m.View(), strings.Repeat("x", 21)) {
		t.Error("title not truncated to the window")
	}
}
