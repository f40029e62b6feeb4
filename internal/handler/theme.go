package handler

import (
	"net/http"
)

// ThemeHandler handles the theme toggle endpoint.
type ThemeHandler struct{}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Toggle handles POST /theme. It is the no-script path of the theme toggle:
// it stores the choice in a cookie and sends the browser back.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	theme := r.PostFormValue("theme")
	if theme != themeLight && theme != themeDark {
		http.Error(w, "invalid theme", http.StatusBadRequest)
		return
	}

	// Read back on every page render to set data-theme on <html>, so the
	// first paint already has the right colours.
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
	})

	if isBackground(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectBack(w, r)
}
