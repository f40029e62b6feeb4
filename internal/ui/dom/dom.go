// Package dom is a small in-memory document model for server-rendered pages.
//
// A Document wraps a parsed HTML tree, lets components subscribe to events
// at the document level and dispatches click and change events the way a
// browser does after bubbling: every listener for the type runs in
// registration order, then the default action runs unless a listener called
// PreventDefault. The default action of a click follows the nearest enclosing
// link or submits the form of the nearest enclosing submit button, through the
// Navigator the document was created with.
package dom

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Event types dispatched by Document.
const (
	EventClick  = "click"
	EventChange = "change"
)

// Navigator performs the navigations a document asks for. Implementations
// resolve href and action against the document's location.
type Navigator interface {
	Navigate(href string)
	Submit(method, action string, values url.Values)
}

// Event is one dispatched event.
type Event struct {
	Type   string
	Target *html.Node

	defaultPrevented bool
}

// PreventDefault cancels the event's default action.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles an event.
type Listener func(*Event)

// Document is a parsed page plus its document-level listeners.
type Document struct {
	doc       *goquery.Document
	location  *url.URL
	nav       Navigator
	listeners map[string][]Listener
}

// Parse reads an HTML page. location is where the page was loaded from and
// may be nil; nav may be nil for documents that never navigate.
func Parse(r io.Reader, location *url.URL, nav Navigator) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	if location == nil {
		location = &url.URL{Path: "/"}
	}
	return &Document{
		doc:       doc,
		location:  location,
		nav:       nav,
		listeners: make(map[string][]Listener),
	}, nil
}

// ParseString is Parse over a string.
func ParseString(s string, location *url.URL, nav Navigator) (*Document, error) {
	return Parse(strings.NewReader(s), location, nav)
}

// Location returns a copy of the page URL.
func (d *Document) Location() *url.URL {
	u := *d.location
	return &u
}

// AddEventListener subscribes fn to events of type typ on the whole document.
func (d *Document) AddEventListener(typ string, fn Listener) {
	d.listeners[typ] = append(d.listeners[typ], fn)
}

// Dispatch runs the listeners for ev.Type and then the default action.
func (d *Document) Dispatch(ev *Event) {
	for _, fn := range d.listeners[ev.Type] {
		fn(ev)
	}
	if ev.DefaultPrevented() {
		return
	}
	if ev.Type == EventClick {
		d.clickDefault(ev.Target)
	}
}

// Click dispatches a click on n. A nil n is ignored.
func (d *Document) Click(n *html.Node) *Event {
	if n == nil {
		return nil
	}
	ev := &Event{Type: EventClick, Target: n}
	d.Dispatch(ev)
	return ev
}

// Change dispatches a change event on n. A nil n is ignored.
func (d *Document) Change(n *html.Node) *Event {
	if n == nil {
		return nil
	}
	ev := &Event{Type: EventChange, Target: n}
	d.Dispatch(ev)
	return ev
}

// Navigate asks the navigator to load href, like assigning window.location.
func (d *Document) Navigate(href string) {
	if d.nav != nil {
		d.nav.Navigate(href)
	}
}

func (d *Document) clickDefault(target *html.Node) {
	if d.nav == nil {
		return
	}
	for n := target; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.A:
			if href, ok := Attr(n, "href"); ok {
				d.Navigate(href)
				return
			}
		case atom.Button, atom.Input:
			if !isSubmitter(n) {
				continue
			}
			if form := Closest(n, formSel); form != nil {
				d.submit(form, n)
			}
			return
		}
	}
}

// Root returns the <html> element.
func (d *Document) Root() *html.Node {
	return first(d.doc.Find("html"))
}

// Body returns the <body> element.
func (d *Document) Body() *html.Node {
	return first(d.doc.Find("body"))
}

// ByID returns the element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	var found *html.Node
	d.doc.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.AttrOr("id", "") == id {
			found = s.Get(0)
			return false
		}
		return true
	})
	return found
}

// Find returns the elements matching a CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// All returns the elements matching m in document order.
func (d *Document) All(m goquery.Matcher) []*html.Node {
	return d.doc.FindMatcher(m).Nodes
}

// First returns the first element matching m, or nil.
func (d *Document) First(m goquery.Matcher) *html.Node {
	return first(d.doc.FindMatcher(goquery.SingleMatcher(m)))
}

func first(s *goquery.Selection) *html.Node {
	if s.Length() == 0 {
		return nil
	}
	return s.Get(0)
}
