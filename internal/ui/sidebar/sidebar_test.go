package sidebar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-reader/internal/ui/dom"
	"github.com/joestump/joe-reader/internal/ui/sidebar"
)

const page = `<html><body>
<button id="sidebar-toggle"><span id="burger">=</span></button>
<nav id="sidebar"><a id="feed" href="/?feedURL=x">Feed</a></nav>
<main id="main">list</main>
</body></html>`

func setup(t *testing.T, width int) (*dom.Document, *sidebar.Sidebar, *int) {
	t.Helper()
	doc, err := dom.ParseString(page, nil, nil)
	require.NoError(t, err)
	w := width
	s := sidebar.Attach(doc, func() int { return w }, 100)
	return doc, s, &w
}

func TestToggle(t *testing.T) {
	doc, s, _ := setup(t, 200)
	assert.False(t, s.Open())

	doc.Click(doc.ByID("burger"))
	assert.True(t, s.Open())

	doc.Click(doc.ByID("sidebar-toggle"))
	assert.False(t, s.Open())
}

func TestOutsideClickClosesOnlyOnNarrowViewports(t *testing.T) {
	doc, s, width := setup(t, 200)

	doc.Click(doc.ByID("sidebar-toggle"))
	doc.Click(doc.ByID("main"))
	assert.True(t, s.Open(), "wide viewport keeps the sidebar open")

	*width = 100
	doc.Click(doc.ByID("feed"))
	assert.True(t, s.Open(), "clicks inside the sidebar keep it open")

	doc.Click(doc.ByID("main"))
	assert.False(t, s.Open())

	doc.Click(doc.ByID("main"))
	assert.False(t, s.Open())
}

func TestMissingElementsAreIgnored(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p id="p">x</p></body></html>`, nil, nil)
	require.NoError(t, err)
	s := sidebar.Attach(doc, func() int { return 10 }, 100)

	doc.Click(doc.ByID("p"))
	assert.False(t, s.Open())
}
