package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/joestump/joe-reader/internal/store"
	"github.com/joestump/joe-reader/web"
)

// Themes accepted by the theme cookie and the root data-theme attribute.
const (
	themeLight = "light"
	themeDark  = "dark"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Theme string // "light", "dark", or "" (the client decides)
}

// themeFromRequest reads the "theme" cookie. Returns "" if absent or invalid.
func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie("theme")
	if err != nil {
		return ""
	}
	if c.Value == themeLight || c.Value == themeDark {
		return c.Value
	}
	return ""
}

// descriptionPolicy strips feed-supplied HTML down to inline formatting and links.
var descriptionPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

var funcs = template.FuncMap{
	// sanitize renders untrusted feed HTML.
	"sanitize": func(s string) template.HTML {
		return template.HTML(descriptionPolicy.Sanitize(s))
	},
	"listURL": listURL,
	"filters": func() []string {
		return []string{store.FilterAll, store.FilterUnread, store.FilterFavorites}
	},
}

// listURL builds the reading list URL for a filter and feed, omitting defaults.
func listURL(filter, feedURL string) string {
	v := url.Values{}
	if feedURL != "" {
		v.Set("feedURL", feedURL)
	}
	if filter != "" && filter != store.FilterAll {
		v.Set("filter", filter)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

// pageCache maps a render key (e.g. "index.html") to a compiled template set
// containing base.html + partials + that one page file. Each page gets its own
// set so {{define "content"}} blocks don't collide.
var pageCache map[string]*template.Template

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		pageCache[filepath.Base(p)] = t
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success", "error", "info"
	Message string
}

// isBackground reports whether the request came from page script rather than
// a form submission or navigation.
func isBackground(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "fetch"
}

// redirectBack answers 303 to the same-host Referer, or to / without one.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path != "" {
		if ref.Host == "" || ref.Host == r.Host {
			target = ref.RequestURI()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}
