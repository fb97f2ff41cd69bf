package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/handlers"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

func init() { Register("search", registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	r.With(mw.WithSession(d.Sessions)).Get("/api/search", handlers.Search(d))
}
