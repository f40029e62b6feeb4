package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/joestump/joe-reader/internal/ui/articles"
	"github.com/joestump/joe-reader/internal/ui/dom"
	"github.com/joestump/joe-reader/internal/ui/theme"
)

func (m *Model) View() string {
	st := StylesFor(m.currentTheme())

	var b strings.Builder
	b.WriteString(m.headerView(st))
	b.WriteString("\n")
	if line := m.statusView(st); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := m.listView(st)
	if m.sidebar != nil && m.sidebar.Open() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(st), body)
	}
	b.WriteString(body)
	b.WriteString("\n")

	if m.adding {
		b.WriteString("\n")
		b.WriteString(st.InputBox.Render(
			"Add feed\n" + m.input.View() + "\n" +
				st.InputHint.Render("enter to subscribe, esc to cancel"),
		))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) currentTheme() string {
	if m.theme == nil {
		return theme.Light
	}
	return m.theme.Current()
}

func (m *Model) headerView(st Styles) string {
	parts := []string{st.Header.Render("joe-reader")}
	if m.doc == nil {
		return parts[0]
	}
	parts = append(parts, st.Badge.Render("theme: "+m.currentTheme()))
	if f := m.filter.Current(); f != "" {
		parts = append(parts, st.Badge.Render("filter: "+f))
	}
	if btn := m.doc.ByID(articles.ToggleButtonID); btn != nil && !dom.Hidden(btn) {
		parts = append(parts, st.Button.Render(strings.TrimSpace(dom.Text(btn))))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) statusView(st Styles) string {
	switch {
	case m.err != nil:
		return st.Error.Render("Error: " + m.err.Error())
	case m.loading:
		return st.Muted.Render("Loading...")
	case m.status != "":
		return st.Muted.Render(m.status)
	}
	if m.doc == nil {
		return ""
	}
	if flash := m.doc.First(flashSel); flash != nil {
		return st.Flash.Render(strings.TrimSpace(dom.Text(flash)))
	}
	return ""
}

func (m *Model) listView(st Styles) string {
	if m.doc == nil {
		return st.Muted.Render("No page loaded.")
	}
	if len(m.rows) == 0 {
		return st.Muted.Render("No articles.")
	}
	var b strings.Builder
	for i, n := range m.rows {
		b.WriteString(m.rowView(st, i, n))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) rowView(st Styles, i int, n *html.Node) string {
	cursor := "  "
	if i == m.cursor {
		cursor = st.Cursor.Render("> ")
	}
	mark := "  "
	if dom.HasClass(n, "selected") {
		mark = st.Selected.Render("● ")
	}
	fav := "  "
	if dom.HasClass(n, classFavorite) {
		fav = st.Favorite.Render("★ ")
	}

	title := strings.TrimSpace(dom.Text(dom.Query(n, titleLinkSel)))
	if title == "" {
		title = dom.AttrOr(n, "data-link", "(untitled)")
	}
	if m.width > 0 {
		title = runewidth.Truncate(title, max(m.width-40, 20), "…")
	}
	titleStyle := st.Unread
	if dom.HasClass(n, "read") {
		titleStyle = st.Read
	}

	var meta []string
	if feed := strings.TrimSpace(dom.Text(dom.Query(n, feedSel))); feed != "" {
		meta = append(meta, feed)
	}
	if date := strings.TrimSpace(dom.Text(dom.Query(n, dateSel))); date != "" {
		meta = append(meta, date)
	}
	line := cursor + mark + fav + titleStyle.Render(title)
	if len(meta) > 0 {
		line += st.Muted.Render("  " + strings.Join(meta, " · "))
	}
	return line
}

func (m *Model) sidebarView(st Styles) string {
	var lines []string
	for _, f := range m.doc.All(feedLinkSel) {
		title := strings.TrimSpace(dom.Text(dom.Query(f, feedTitleSel)))
		if title == "" {
			title = strings.TrimSpace(dom.Text(f))
		}
		count := strings.TrimSpace(dom.Text(dom.Query(f, unreadSel)))
		style := st.FeedItem
		if dom.HasClass(f, classActiveFeed) {
			style = st.FeedLive
		}
		line := style.Render(title)
		if count != "" && count != "0" {
			line += st.Muted.Render(fmt.Sprintf(" (%s)", count))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, st.Muted.Render("No feeds yet."))
	}
	return st.Sidebar.Render(strings.Join(lines, "\n"))
}
