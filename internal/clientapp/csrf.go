package clientapp

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

const (
	csrfCookieName = "hrms_csrf"
	csrfFieldName  = "csrf_token"

	maxFormBytes = 10 << 20
)

type csrfKey struct{}

func csrfTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

// csrfProtect issues a signed token cookie on reads and requires the same token in
// the form body of every POST.
func (s *server) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(csrfCookieName); err == nil && s.csrf.Valid(cookie.Value) {
			token = cookie.Value
		}

		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if !s.csrf.Matches(token, r.FormValue(csrfFieldName)) {
				s.logger.Warn("csrf check failed", zap.String("path", r.URL.Path))
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}

		if token == "" {
			issued, err := s.csrf.Issue()
			if err != nil {
				http.Error(w, "failed to issue csrf token", http.StatusInternalServerError)
				return
			}
			token = issued
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cookieSecure,
				SameSite: http.SameSiteStrictMode,
			})
		}

		ctx := context.WithValue(r.Context(), csrfKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
