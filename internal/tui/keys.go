package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the reader's keybindings. Most of them click an element of
// the page.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Select      key.Binding
	Open        key.Binding
	ToggleRead  key.Binding
	Favorite    key.Binding
	Filter      key.Binding
	Sidebar     key.Binding
	Dismiss     key.Binding
	Theme       key.Binding
	MarkAllRead key.Binding
	Refresh     key.Binding
	AddFeed     key.Binding
	Reload      key.Binding
	CopyLink    key.Binding

	Quit   key.Binding
	Help   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter/o", "open"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle read"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "favorite"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "feeds"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "mark all read"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh feeds"),
		),
		AddFeed: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add feed"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy link"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Open, k.ToggleRead, k.Filter, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Open, k.ToggleRead, k.Favorite},
		{k.Filter, k.Sidebar, k.Dismiss, k.Theme},
		{k.MarkAllRead, k.Refresh, k.AddFeed, k.Reload, k.CopyLink},
		{k.Help, k.Quit},
	}
}
