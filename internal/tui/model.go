// Package tui is a terminal host for the reading list. It loads the
// server-rendered page into a dom.Document, attaches the same page
// components a browser would run, and turns keys into clicks and changes on
// that document.
package tui

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/andybalholm/cascadia"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/net/html"

	"github.com/joestump/joe-reader/internal/readerclient"
	"github.com/joestump/joe-reader/internal/ui/articles"
	"github.com/joestump/joe-reader/internal/ui/dom"
	"github.com/joestump/joe-reader/internal/ui/filters"
	"github.com/joestump/joe-reader/internal/ui/localstore"
	"github.com/joestump/joe-reader/internal/ui/sidebar"
	"github.com/joestump/joe-reader/internal/ui/theme"
)

// Element ids and classes of the reading list page the keys act on.
const (
	idArticleList    = "article-list"
	idThemeToggle    = "theme-toggle"
	idMarkAllRead    = "mark-all-read-button"
	idRefresh        = "refresh-button"
	idFeedURLInput   = "feed-url-input"
	idAddFeedButton  = "add-feed-button"
	classFlash       = "flash"
	classFavorite    = "favorite"
	classActiveFeed  = "active"
	defaultViewWidth = 120
)

var (
	articleSel   = cascadia.MustCompile(".article")
	titleLinkSel = cascadia.MustCompile("a.article-title")
	feedSel      = cascadia.MustCompile(".article-feed")
	dateSel      = cascadia.MustCompile(".article-date")
	favButtonSel = cascadia.MustCompile(".favorite-button")
	flashSel     = cascadia.MustCompile(".flash")
	feedLinkSel  = cascadia.MustCompile("#sidebar .feed-link")
	feedTitleSel = cascadia.MustCompile(".feed-title")
	unreadSel    = cascadia.MustCompile(".unread-count")
)

// Options configures the terminal reader.
type Options struct {
	StartURL          *url.URL
	Storage           localstore.Storage
	SidebarBreakpoint int
	SystemDark        bool
	Logger            *slog.Logger
	OpenURL           func(string) error
}

type Model struct {
	ctx    context.Context
	client Client
	store  localstore.Storage
	log    *slog.Logger
	start  *url.URL

	breakpoint int
	systemDark bool
	openURL    func(string) error

	keys     KeyMap
	help     help.Model
	input    textinput.Model
	adding   bool
	showHelp bool

	host     *host
	location *url.URL
	doc      *dom.Document
	articles *articles.Controller
	theme    *theme.Toggle
	sidebar  *sidebar.Sidebar
	filter   *filters.Filter
	rows     []*html.Node
	cursor   int

	loading bool
	status  string
	err     error
	width   int
	height  int
}

// New creates the model. Nothing is loaded until Init runs.
func New(ctx context.Context, client Client, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Storage == nil {
		opts.Storage = localstore.NewMemory()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = openURLInBrowser
	}
	ti := textinput.New()
	ti.Placeholder = "https://example.com/feed.xml"
	ti.CharLimit = 2048
	ti.Width = 60

	m := &Model{
		ctx:        ctx,
		client:     client,
		store:      opts.Storage,
		log:        opts.Logger,
		start:      opts.StartURL,
		breakpoint: opts.SidebarBreakpoint,
		systemDark: opts.SystemDark,
		openURL:    opts.OpenURL,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		input:      ti,
		location:   opts.StartURL,
		loading:    true,
	}
	m.host = &host{m: m}
	return m
}

func (m *Model) Init() tea.Cmd {
	return loadCmd(m.ctx, m.client, m.start)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pageMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.log.Error("load page", "err", msg.err)
			return m, nil
		}
		m.err = nil
		if err := m.attach(msg.page); err != nil {
			m.err = err
			m.log.Error("parse page", "url", msg.page.URL.String(), "err", err)
		}
		return m, nil

	case asyncDoneMsg:
		msg.done(msg.err)
		return m, m.host.flush()

	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.log.Warn("open in browser", "url", msg.url, "err", msg.err)
			return m, nil
		}
		m.status = "Opened " + msg.url
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.log.Warn("copy link", "link", msg.link, "err", msg.err)
			return m, nil
		}
		m.status = "Copied " + msg.link
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.host.Navigate(m.location.String())
		return m, m.host.flush()
	}
	if m.doc == nil {
		return m, nil
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.doc.Click(m.current())
	case key.Matches(msg, m.keys.Open):
		m.doc.Click(dom.Query(m.current(), titleLinkSel))
	case key.Matches(msg, m.keys.ToggleRead):
		m.doc.Click(m.doc.ByID(articles.ToggleButtonID))
	case key.Matches(msg, m.keys.Favorite):
		m.doc.Click(dom.Query(m.current(), favButtonSel))
	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter()
	case key.Matches(msg, m.keys.Sidebar):
		m.doc.Click(m.doc.ByID(sidebar.ToggleID))
	case key.Matches(msg, m.keys.Dismiss):
		if list := m.doc.ByID(idArticleList); list != nil {
			m.doc.Click(list)
		} else {
			m.doc.Click(m.doc.Body())
		}
	case key.Matches(msg, m.keys.Theme):
		m.doc.Click(m.doc.ByID(idThemeToggle))
	case key.Matches(msg, m.keys.MarkAllRead):
		m.doc.Click(m.doc.ByID(idMarkAllRead))
	case key.Matches(msg, m.keys.Refresh):
		m.status = "Refreshing feeds..."
		m.doc.Click(m.doc.ByID(idRefresh))
	case key.Matches(msg, m.keys.CopyLink):
		if link := dom.AttrOr(m.current(), "data-link", ""); link != "" {
			return m, copyCmd(link)
		}
	case key.Matches(msg, m.keys.AddFeed):
		if m.doc.ByID(idFeedURLInput) == nil {
			return m, nil
		}
		m.adding = true
		return m, m.input.Focus()
	}
	return m, m.host.flush()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		dom.SetValue(m.doc.ByID(idFeedURLInput), m.input.Value())
		m.closeInput()
		m.doc.Click(m.doc.ByID(idAddFeedButton))
		return m, m.host.flush()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.input.Blur()
	m.input.Reset()
}

// attach makes page the current document and wires the page components to
// it. The cursor stays on the same article when it is still listed.
func (m *Model) attach(page *readerclient.Page) error {
	doc, err := dom.Parse(page.Reader(), page.URL, m.host)
	if err != nil {
		return err
	}
	prev := dom.AttrOr(m.current(), "data-link", "")

	m.doc = doc
	m.location = page.URL
	m.articles = articles.Attach(doc, m.client, m.host, m.log)
	m.theme = theme.Attach(doc, m.store, m.systemDark, m.log)
	m.sidebar = sidebar.Attach(doc, m.viewportWidth, m.breakpoint)
	m.filter = filters.Attach(doc)
	m.rows = doc.All(articleSel)

	m.cursor = 0
	for i, n := range m.rows {
		if prev != "" && dom.AttrOr(n, "data-link", "") == prev {
			m.cursor = i
			break
		}
	}
	return nil
}

func (m *Model) cycleFilter() {
	sel := m.doc.ByID(filters.DropdownID)
	opts := m.filter.Options()
	if sel == nil || len(opts) == 0 {
		return
	}
	next := opts[0]
	cur := m.filter.Current()
	for i, o := range opts {
		if o == cur {
			next = opts[(i+1)%len(opts)]
			break
		}
	}
	dom.SetSelectValue(sel, next)
	m.doc.Change(sel)
}

func (m *Model) current() *html.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *Model) viewportWidth() int {
	if m.width == 0 {
		return defaultViewWidth
	}
	return m.width
}
