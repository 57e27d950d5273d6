package clientapp

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	themeCookieName = "hrms-theme"
	themeDark       = "dark"
	themeLight      = "light"
)

// Preferences are the per-browser display settings, persisted in a cookie.
type Preferences struct {
	Theme string
}

func (p Preferences) Toggled() Preferences {
	if p.Theme == themeLight {
		return Preferences{Theme: themeDark}
	}
	return Preferences{Theme: themeLight}
}

type preferencesKey struct{}

func loadPreferences(r *http.Request) Preferences {
	cookie, err := r.Cookie(themeCookieName)
	if err != nil {
		return Preferences{Theme: themeDark}
	}
	switch cookie.Value {
	case themeLight, themeDark:
		return Preferences{Theme: cookie.Value}
	default:
		return Preferences{Theme: themeDark}
	}
}

func preferencesFromContext(ctx context.Context) Preferences {
	if p, ok := ctx.Value(preferencesKey{}).(Preferences); ok {
		return p
	}
	return Preferences{Theme: themeDark}
}

func (s *server) savePreferences(w http.ResponseWriter, p Preferences) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    p.Theme,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// withPreferences reads the stored preferences once per request so handlers and
// templates never touch the cookie directly.
func (s *server) withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), preferencesKey{}, loadPreferences(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	next := preferencesFromContext(r.Context()).Toggled()
	s.savePreferences(w, next)
	http.Redirect(w, r, safeReturnPath(r.FormValue("return")), http.StatusFound)
}

// safeReturnPath only allows local absolute paths.
func safeReturnPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return "/dashboard"
	}
	return raw
}
