package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for one page theme.
type Styles struct {
	Header    lipgloss.Style
	Badge     lipgloss.Style
	Button    lipgloss.Style
	Flash     lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Sidebar   lipgloss.Style
	FeedItem  lipgloss.Style
	FeedLive  lipgloss.Style
	Unread    lipgloss.Style
	Read      lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style
	Favorite  lipgloss.Style
	InputBox  lipgloss.Style
	InputHint lipgloss.Style
}

type palette struct {
	text, subtle, accent, good, bad, border lipgloss.Color
}

var (
	lightPalette = palette{
		text:   "#1a1a1a",
		subtle: "#666666",
		accent: "#7D56F4",
		good:   "#2E9E5B",
		bad:    "#D7263D",
		border: "#BBBBBB",
	}
	darkPalette = palette{
		text:   "#FAFAFA",
		subtle: "#888888",
		accent: "#AD8CFF",
		good:   "#73F59F",
		bad:    "#FF8888",
		border: "#444444",
	}
)

// StylesFor returns the styles for a page theme, "light" or "dark".
func StylesFor(theme string) Styles {
	p := lightPalette
	if theme == "dark" {
		p = darkPalette
	}
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		Badge: lipgloss.NewStyle().
			Foreground(p.subtle),
		Button: lipgloss.NewStyle().
			Foreground(p.accent).
			Border(lipgloss.NormalBorder(), false, true).
			BorderForeground(p.accent).
			Padding(0, 1),
		Flash: lipgloss.NewStyle().
			Foreground(p.good),
		Error: lipgloss.NewStyle().
			Foreground(p.bad),
		Muted: lipgloss.NewStyle().
			Foreground(p.subtle),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1).
			MarginRight(1),
		FeedItem: lipgloss.NewStyle().
			Foreground(p.text),
		FeedLive: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		Unread: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text),
		Read: lipgloss.NewStyle().
			Foreground(p.subtle),
		Cursor: lipgloss.NewStyle().
			Foreground(p.accent),
		Selected: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		Favorite: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E3B341")),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),
		InputHint: lipgloss.NewStyle().
			Foreground(p.subtle),
	}
}
