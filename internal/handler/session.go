package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

const (
	sessionFlashKey     = "flash"
	sessionFlashTypeKey = "flash_type"
)

// NewSessionManager creates an SCS session manager backed by the application DB.
// The driver parameter selects the appropriate store: "mysql", "postgres", or
// "sqlite3" (default).
func NewSessionManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "reader_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// putFlash stores a one-time message shown on the next page render.
func putFlash(ctx context.Context, sm *scs.SessionManager, typ, msg string) {
	sm.Put(ctx, sessionFlashTypeKey, typ)
	sm.Put(ctx, sessionFlashKey, msg)
}

// popFlash returns and clears the pending message, or nil.
func popFlash(ctx context.Context, sm *scs.SessionManager) *Flash {
	msg := sm.PopString(ctx, sessionFlashKey)
	typ := sm.PopString(ctx, sessionFlashTypeKey)
	if msg == "" {
		return nil
	}
	if typ == "" {
		typ = "info"
	}
	return &Flash{Type: typ, Message: msg}
}
