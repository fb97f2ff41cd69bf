package mw

import (
	"context"
	"net/http"

	"github.com/productbazar/bazar/internal/session"
)

type sessionKey struct{}

// WithSession resolves (or creates) the browser session named by the
// X-Bazar-Session header, attaches it to the request context and echoes the
// id back so first-time clients learn theirs.
func WithSession(reg *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := reg.Ensure(r.Header.Get(session.Header))
			w.Header().Set(session.Header, s.ID)
			ctx := context.WithValue(r.Context(), sessionKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by WithSession, nil outside it.
func SessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}
