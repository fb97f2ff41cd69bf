package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/handlers"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

func init() { Register("jobs", registerJobs) }

func registerJobs(r chi.Router, d deps.Deps) {
	s := r.With(mw.WithSession(d.Sessions))
	s.Get("/api/jobs", handlers.Jobs(d))
	s.Post("/api/jobs", handlers.CreateJob(d))
	s.Post("/api/projects", handlers.CreateProject(d))
}
