package articles_test

import (
	"fmt"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/cockroachdb/datadriven"
	"golang.org/x/net/html"

	"github.com/joestump/joe-reader/internal/ui/articles"
	"github.com/joestump/joe-reader/internal/ui/dom"
)

var (
	feedSel   = cascadia.MustCompile(".article-feed")
	anchorSel = cascadia.MustCompile("a[href]")
)

func TestScenarios(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var h *harness
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			if d.Cmd != "page" && h == nil {
				d.Fatalf(t, "%s before page", d.Cmd)
			}
			switch d.Cmd {
			case "page":
				h = newHarness(t, d.Input)
			case "click":
				h.doc.Click(clickTarget(t, d, h))
			case "respond":
				var err error
				if d.HasArg("fail") {
					err = errUnavailable
				}
				if !h.sched.respond(err) {
					d.Fatalf(t, "no pending request")
				}
			case "pending":
				return fmt.Sprintf("%d pending\n", len(h.sched.pending))
			default:
				d.Fatalf(t, "unknown command %q", d.Cmd)
			}
			return h.render()
		})
	})
}

func clickTarget(t *testing.T, d *datadriven.TestData, h *harness) *html.Node {
	t.Helper()
	if len(d.CmdArgs) == 0 {
		d.Fatalf(t, "click requires a target")
	}
	arg := d.CmdArgs[0]
	var n *html.Node
	switch arg.Key {
	case "article":
		n = h.article(arg.Vals[0])
	case "feed":
		n = dom.Query(h.article(arg.Vals[0]), feedSel)
	case "link":
		n = dom.Query(h.article(arg.Vals[0]), anchorSel)
	case "id":
		n = h.doc.ByID(arg.Vals[0])
	case "button":
		n = h.doc.ByID(articles.ToggleButtonID)
	case "body":
		n = h.doc.Body()
	default:
		d.Fatalf(t, "unknown click target %q", arg.Key)
	}
	if n == nil {
		d.Fatalf(t, "click target %s not found", arg)
	}
	return n
}
