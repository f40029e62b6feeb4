// Package articles keeps the reading list's selection and read status in
// sync with the server.
//
// A Controller is attached once per loaded document. It subscribes a single
// click listener on the document and dispatches from the event target:
// clicks on the toggle button commit through a full form POST, clicks on a
// link inside an article mark it read in the background while the link
// navigates, and any other click inside an article toggles its selection.
package articles

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/joestump/joe-reader/internal/ui/dom"
)

const (
	// ToggleButtonID is the id of the global read/unread button.
	ToggleButtonID = "global-toggle-read-button"

	// ToggleReadPath is the persistence endpoint.
	ToggleReadPath = "/toggle-read"

	LabelMarkRead   = "Mark as Read"
	LabelMarkUnread = "Mark as Unread"

	classSelected = "selected"
	classRead     = "read"
	classUnread   = "unread"

	attrLink = "data-link"
	attrRead = "data-read"

	buttonDisplay = "inline-flex"
)

var (
	articleSel = cascadia.MustCompile(".article")
	linkSel    = cascadia.MustCompile("a[href]")
	// Controls inside an article act on their own and never change selection.
	controlSel = cascadia.MustCompile("a, button, input, select, textarea")
)

// Endpoint persists a read mark in the background.
type Endpoint interface {
	MarkRead(ctx context.Context, link string) error
}

// Scheduler runs work off the event loop and delivers its result back on it.
// done must be called on the loop, never concurrently with event handlers.
type Scheduler interface {
	Go(work func(ctx context.Context) error, done func(err error))
}

// Controller owns the selected article of one document.
type Controller struct {
	doc      *dom.Document
	endpoint Endpoint
	sched    Scheduler
	log      *slog.Logger

	selected *html.Node
}

// Attach subscribes a new Controller to doc. A nil logger uses slog.Default.
func Attach(doc *dom.Document, endpoint Endpoint, sched Scheduler, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		doc:      doc,
		endpoint: endpoint,
		sched:    sched,
		log:      logger,
	}
	doc.AddEventListener(dom.EventClick, c.onClick)
	return c
}

func (c *Controller) onClick(ev *dom.Event) {
	if btn := c.button(); btn != nil && dom.Contains(btn, ev.Target) {
		c.handleToggleButtonClick()
		return
	}
	if dom.Closest(ev.Target, linkSel) != nil {
		c.handleLinkActivation(ev)
		return
	}
	c.handleSelectionClick(ev)
}

// handleLinkActivation marks an unread article read when one of its links is
// followed. It never prevents the navigation.
func (c *Controller) handleLinkActivation(ev *dom.Event) {
	article := dom.Closest(ev.Target, articleSel)
	if article == nil || isRead(article) {
		return
	}
	link, ok := dom.Attr(article, attrLink)
	if !ok || link == "" {
		return
	}
	c.markAsRead(link)
}

func (c *Controller) handleSelectionClick(ev *dom.Event) {
	article := dom.Closest(ev.Target, articleSel)
	if article == nil {
		return
	}
	if control := dom.Closest(ev.Target, controlSel); control != nil && dom.Contains(article, control) {
		return
	}

	if c.selected != nil && c.selected != article {
		dom.RemoveClass(c.selected, classSelected)
	}

	if dom.ToggleClass(article, classSelected) {
		c.selected = article
		dom.SetDisplay(c.button(), buttonDisplay)
		c.refreshButtonLabel()
		return
	}
	c.selected = nil
	dom.SetDisplay(c.button(), "none")
}

func (c *Controller) refreshButtonLabel() {
	btn := c.button()
	if c.selected == nil || btn == nil {
		return
	}
	if isRead(c.selected) {
		dom.SetText(btn, LabelMarkUnread)
	} else {
		dom.SetText(btn, LabelMarkRead)
	}
}

// handleToggleButtonClick commits the selected article's toggle with a
// page-reloading form POST so the whole list comes back from the server.
func (c *Controller) handleToggleButtonClick() {
	if c.selected == nil {
		return
	}
	link, ok := dom.Attr(c.selected, attrLink)
	if !ok || link == "" {
		c.log.Error("selected article has no link; not toggling read status")
		return
	}
	form := c.doc.CreateForm("post", ToggleReadPath, url.Values{"link": {link}})
	c.doc.Submit(form)
}

// markAsRead persists the read mark without leaving the page. Local state
// changes only after the server acknowledged it.
func (c *Controller) markAsRead(link string) {
	c.sched.Go(
		func(ctx context.Context) error {
			return c.endpoint.MarkRead(ctx, link)
		},
		func(err error) {
			if err != nil {
				c.log.Warn("mark as read failed", "link", link, "err", err)
				return
			}
			c.applyRead(link)
		},
	)
}

func (c *Controller) applyRead(link string) {
	// Look the article up again; the page may have changed while the
	// request was in flight.
	article := c.article(link)
	if article == nil {
		c.log.Debug("marked article no longer on page", "link", link)
		return
	}
	dom.RemoveClass(article, classUnread)
	dom.AddClass(article, classRead)
	dom.SetAttr(article, attrRead, "true")
	if c.selected == article {
		c.refreshButtonLabel()
	}
}

func (c *Controller) article(link string) *html.Node {
	for _, n := range c.doc.All(articleSel) {
		if v, _ := dom.Attr(n, attrLink); v == link {
			return n
		}
	}
	return nil
}

func (c *Controller) button() *html.Node {
	return c.doc.ByID(ToggleButtonID)
}

// Selected returns the link of the selected article.
func (c *Controller) Selected() (string, bool) {
	if c.selected == nil {
		return "", false
	}
	return dom.AttrOr(c.selected, attrLink, ""), true
}

func isRead(article *html.Node) bool {
	if v, ok := dom.Attr(article, attrRead); ok {
		return v == "true"
	}
	return dom.HasClass(article, classRead)
}
