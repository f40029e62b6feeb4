package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

func declarations(n *html.Node) []*css.Declaration {
	style := strings.TrimSpace(AttrOr(n, "style", ""))
	if style == "" {
		return nil
	}
	// A declaration is only closed by ';' or '}'.
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, _ := parser.ParseDeclarations(style)
	return decls
}

// Style returns the inline value of property on n, or "".
func Style(n *html.Node, property string) string {
	for _, d := range declarations(n) {
		if strings.EqualFold(d.Property, property) {
			return d.Value
		}
	}
	return ""
}

// SetStyle sets one inline property on n, keeping the others. An empty value
// removes the property.
func SetStyle(n *html.Node, property, value string) {
	if n == nil {
		return
	}
	var (
		out []string
		set bool
	)
	for _, d := range declarations(n) {
		if strings.EqualFold(d.Property, property) {
			if value != "" && !set {
				out = append(out, property+": "+value+";")
				set = true
			}
			continue
		}
		out = append(out, d.String())
	}
	if value != "" && !set {
		out = append(out, property+": "+value+";")
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(out, " "))
}

// Hidden reports whether n is hidden by an inline display: none or the
// hidden attribute.
func Hidden(n *html.Node) bool {
	if n == nil {
		return true
	}
	if _, ok := Attr(n, "hidden"); ok {
		return true
	}
	return strings.EqualFold(Style(n, "display"), "none")
}

// SetDisplay sets the inline display property of n.
func SetDisplay(n *html.Node, display string) {
	SetStyle(n, "display", display)
}
