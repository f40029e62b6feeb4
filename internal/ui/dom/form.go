package dom

import (
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	formSel    = cascadia.MustCompile("form")
	controlSel = cascadia.MustCompile("input[name], select[name], textarea[name]")
	optionSel  = cascadia.MustCompile("option")
)

func isSubmitter(n *html.Node) bool {
	if _, disabled := Attr(n, "disabled"); disabled {
		return false
	}
	typ := strings.ToLower(AttrOr(n, "type", ""))
	switch n.DataAtom {
	case atom.Button:
		return typ == "" || typ == "submit"
	case atom.Input:
		return typ == "submit" || typ == "image"
	}
	return false
}

// CreateForm builds a detached <form> with one hidden input per value,
// appends it to the body and returns it.
func (d *Document) CreateForm(method, action string, values url.Values) *html.Node {
	form := &html.Node{
		Type:     html.ElementNode,
		Data:     "form",
		DataAtom: atom.Form,
		Attr: []html.Attribute{
			{Key: "method", Val: method},
			{Key: "action", Val: action},
		},
	}
	for key, vals := range values {
		for _, v := range vals {
			form.AppendChild(&html.Node{
				Type:     html.ElementNode,
				Data:     "input",
				DataAtom: atom.Input,
				Attr: []html.Attribute{
					{Key: "type", Val: "hidden"},
					{Key: "name", Val: key},
					{Key: "value", Val: v},
				},
			})
		}
	}
	if body := d.Body(); body != nil {
		body.AppendChild(form)
	}
	return form
}

// Submit submits form as if by its first submit button's default action,
// without a submitter.
func (d *Document) Submit(form *html.Node) {
	d.submit(form, nil)
}

func (d *Document) submit(form, submitter *html.Node) {
	if d.nav == nil || form == nil {
		return
	}
	method := strings.ToUpper(AttrOr(form, "method", "GET"))
	if method != "POST" {
		method = "GET"
	}
	d.nav.Submit(method, AttrOr(form, "action", ""), FormValues(form, submitter))
}

// FormValues collects the successful controls of form. The submitter's
// name and value are included when it has a name.
func FormValues(form, submitter *html.Node) url.Values {
	values := url.Values{}
	for _, n := range QueryAll(form, controlSel) {
		if _, disabled := Attr(n, "disabled"); disabled {
			continue
		}
		name := AttrOr(n, "name", "")
		switch n.DataAtom {
		case atom.Input:
			switch strings.ToLower(AttrOr(n, "type", "text")) {
			case "submit", "image", "button", "reset", "file":
				continue
			case "checkbox", "radio":
				if _, checked := Attr(n, "checked"); !checked {
					continue
				}
				values.Add(name, AttrOr(n, "value", "on"))
				continue
			}
			values.Add(name, AttrOr(n, "value", ""))
		case atom.Select:
			if v, ok := SelectValue(n); ok {
				values.Add(name, v)
			}
		case atom.Textarea:
			values.Add(name, Text(n))
		}
	}
	if submitter != nil {
		if name := AttrOr(submitter, "name", ""); name != "" {
			values.Add(name, AttrOr(submitter, "value", ""))
		}
	}
	return values
}

func optionValue(opt *html.Node) string {
	if v, ok := Attr(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(Text(opt))
}

// OptionValues lists the values of a <select>'s options in document order,
// using the same value rules as SelectValue.
func OptionValues(s *html.Node) []string {
	var out []string
	for _, opt := range QueryAll(s, optionSel) {
		out = append(out, optionValue(opt))
	}
	return out
}

// SelectValue returns the value of the selected option of a <select>,
// defaulting to the first option.
func SelectValue(s *html.Node) (string, bool) {
	opts := QueryAll(s, optionSel)
	if len(opts) == 0 {
		return "", false
	}
	for _, opt := range opts {
		if _, ok := Attr(opt, "selected"); ok {
			return optionValue(opt), true
		}
	}
	return optionValue(opts[0]), true
}

// SetSelectValue marks the option with value v as selected. It reports
// false, leaving s untouched, when no option has that value.
func SetSelectValue(s *html.Node, v string) bool {
	opts := QueryAll(s, optionSel)
	var target *html.Node
	for _, opt := range opts {
		if optionValue(opt) == v {
			target = opt
			break
		}
	}
	if target == nil {
		return false
	}
	for _, opt := range opts {
		RemoveAttr(opt, "selected")
	}
	SetAttr(target, "selected", "")
	return true
}

// SetValue sets the value attribute of an input.
func SetValue(input *html.Node, v string) {
	SetAttr(input, "value", v)
}
