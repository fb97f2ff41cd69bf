package mw

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured browser origins to call the gateway with the
// session header and credentials. An empty allowlist means same-origin only.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Bazar-Session"},
		ExposedHeaders:   []string{"X-Bazar-Session", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
