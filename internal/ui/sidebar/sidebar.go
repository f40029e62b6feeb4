// Package sidebar opens and closes the feed sidebar.
package sidebar

import (
	"golang.org/x/net/html"

	"github.com/joestump/joe-reader/internal/ui/dom"
)

const (
	ToggleID  = "sidebar-toggle"
	SidebarID = "sidebar"

	classOpen = "open"
)

// Viewport reports the current viewport width.
type Viewport func() int

// Sidebar toggles the open class of #sidebar.
type Sidebar struct {
	doc        *dom.Document
	viewport   Viewport
	breakpoint int
}

// Attach subscribes to clicks on doc. Clicks on #sidebar-toggle flip the
// sidebar; clicks outside both close it while the viewport is at most
// breakpoint wide. Pages without either element are left alone.
func Attach(doc *dom.Document, viewport Viewport, breakpoint int) *Sidebar {
	s := &Sidebar{doc: doc, viewport: viewport, breakpoint: breakpoint}
	doc.AddEventListener(dom.EventClick, s.onClick)
	return s
}

func (s *Sidebar) elements() (toggle, sidebar *html.Node) {
	return s.doc.ByID(ToggleID), s.doc.ByID(SidebarID)
}

func (s *Sidebar) onClick(ev *dom.Event) {
	toggle, sidebar := s.elements()
	if toggle == nil || sidebar == nil {
		return
	}
	if dom.Contains(toggle, ev.Target) {
		dom.ToggleClass(sidebar, classOpen)
		return
	}
	if s.viewport != nil && s.viewport() <= s.breakpoint &&
		!dom.Contains(sidebar, ev.Target) &&
		dom.HasClass(sidebar, classOpen) {
		dom.RemoveClass(sidebar, classOpen)
	}
}

// Open reports whether the sidebar is open.
func (s *Sidebar) Open() bool {
	_, sidebar := s.elements()
	return dom.HasClass(sidebar, classOpen)
}
