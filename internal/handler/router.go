package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestump/joe-reader/internal/feeds"
	"github.com/joestump/joe-reader/internal/store"
	"github.com/joestump/joe-reader/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	FeedStore      store.FeedStoreIface
	ItemStore      store.ItemStoreIface
	Manager        *feeds.Manager
	Logger         *slog.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))
	r.Handle("/metrics", promhttp.Handler())

	theme := NewThemeHandler()
	reader := NewReaderHandler(deps.FeedStore, deps.ItemStore, deps.Manager, deps.SessionManager, deps.Logger)

	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)

		r.Get("/", reader.Index)
		r.Post("/add", reader.Add)
		r.Post("/remove", reader.Remove)
		r.Post("/refresh", reader.Refresh)
		r.Post("/toggle-read", reader.ToggleRead)
		r.Post("/toggle-favorite", reader.ToggleFavorite)
		r.Post("/mark-all-read", reader.MarkAllRead)
		r.Post("/theme", theme.Toggle)
	})

	return r
}

// requestLogger is chi's access log written through logger, so it follows
// log.level and log.format like everything else.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		return middleware.Logger
	}
	return middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	})
}
