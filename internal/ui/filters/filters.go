// Package filters drives the read-state filter <select>: choosing an option
// reloads the page with the filter in the query string.
package filters

import (
	"github.com/joestump/joe-reader/internal/ui/dom"
)

const (
	DropdownID = "filter-dropdown"
	Param      = "filter"
)

// Filter watches change events on #filter-dropdown.
type Filter struct {
	doc *dom.Document
}

func Attach(doc *dom.Document) *Filter {
	f := &Filter{doc: doc}
	doc.AddEventListener(dom.EventChange, f.onChange)
	return f
}

func (f *Filter) onChange(ev *dom.Event) {
	sel := f.doc.ByID(DropdownID)
	if sel == nil || ev.Target != sel {
		return
	}
	v, ok := dom.SelectValue(sel)
	if !ok {
		return
	}
	f.doc.Navigate(f.href(v))
}

// href is the current location with the filter replaced. Other parameters,
// feedURL among them, are kept.
func (f *Filter) href(value string) string {
	u := f.doc.Location()
	q := u.Query()
	q.Set(Param, value)
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

// Current returns the selected filter value.
func (f *Filter) Current() string {
	v, _ := dom.SelectValue(f.doc.ByID(DropdownID))
	return v
}

// Options lists the dropdown's option values in order.
func (f *Filter) Options() []string {
	return dom.OptionValues(f.doc.ByID(DropdownID))
}
