package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func sel(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// Closest returns n or its nearest ancestor matching m, or nil.
func Closest(n *html.Node, m goquery.Matcher) *html.Node {
	if n == nil {
		return nil
	}
	return first(sel(n).ClosestMatcher(m))
}

// Contains reports whether n is ancestor or n itself is inside it.
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	return sel(n).Attr(key)
}

// AttrOr returns the attribute value or def when it is missing.
func AttrOr(n *html.Node, key, def string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return def
}

// SetAttr sets attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	sel(n).SetAttr(key, val)
}

// RemoveAttr removes attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	sel(n).RemoveAttr(key)
}

func HasClass(n *html.Node, class string) bool {
	return n != nil && sel(n).HasClass(class)
}

func AddClass(n *html.Node, class ...string) {
	if n != nil {
		sel(n).AddClass(class...)
	}
}

func RemoveClass(n *html.Node, class ...string) {
	if n != nil {
		sel(n).RemoveClass(class...)
	}
}

// ToggleClass flips class on n and reports whether n now carries it.
func ToggleClass(n *html.Node, class string) bool {
	if n == nil {
		return false
	}
	s := sel(n)
	s.ToggleClass(class)
	return s.HasClass(class)
}

// Text returns the combined text of n and its descendants.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return sel(n).Text()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	if n != nil {
		sel(n).SetText(text)
	}
}

// Query returns the first descendant of n matching m, or nil.
func Query(n *html.Node, m goquery.Matcher) *html.Node {
	if n == nil {
		return nil
	}
	return first(sel(n).FindMatcher(goquery.SingleMatcher(m)))
}

// QueryAll returns the descendants of n matching m.
func QueryAll(n *html.Node, m goquery.Matcher) []*html.Node {
	if n == nil {
		return nil
	}
	return sel(n).FindMatcher(m).Nodes
}

// OuterHTML renders n and its descendants.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	s, err := goquery.OuterHtml(sel(n))
	if err != nil {
		return ""
	}
	return s
}
