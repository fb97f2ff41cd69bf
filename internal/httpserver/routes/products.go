package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/handlers"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

func init() { Register("products", registerProducts) }

func registerProducts(r chi.Router, d deps.Deps) {
	r.With(mw.WithSession(d.Sessions)).Route("/api/products", func(r chi.Router) {
		r.Get("/category/{slug}", handlers.CategoryProducts(d))

		r.Route("/{slug}", func(r chi.Router) {
			r.Post("/upvote", handlers.ToggleUpvote(d))
			r.Delete("/upvote", handlers.ToggleUpvote(d))
			r.Post("/bookmark", handlers.ToggleBookmark(d))
			r.Delete("/bookmark", handlers.ToggleBookmark(d))

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", handlers.ListComments(d))
				r.Post("/", handlers.CreateComment(d))
				r.Post("/{id}/replies", handlers.CreateReply(d))
				r.Post("/{id}/like", handlers.ToggleCommentLike(d))
				r.Patch("/{id}", handlers.UpdateComment(d))
				r.Delete("/{id}", handlers.DeleteComment(d))
			})

			// Replies share the comment handlers; the engine resolves the
			// node wherever it sits in the tree.
			r.Route("/replies/{id}", func(r chi.Router) {
				r.Post("/like", handlers.ToggleCommentLike(d))
				r.Patch("/", handlers.UpdateComment(d))
				r.Delete("/", handlers.DeleteComment(d))
			})
		})
	})
}
