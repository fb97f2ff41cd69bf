package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/handlers"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

func init() { Register("session", registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	s := r.With(mw.WithSession(d.Sessions))
	s.Get("/api/session", handlers.SessionInfo(d))
	s.Post("/api/session", handlers.AttachViewer(d))
	s.Delete("/api/session", handlers.DetachViewer(d))
	s.Get("/api/events", handlers.DrainEvents(d))
}
