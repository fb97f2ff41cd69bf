package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

type interactionResponse struct {
	Slug          string `json:"slug"`
	UpvoteCount   int    `json:"upvoteCount"`
	BookmarkCount int    `json:"bookmarkCount"`
	HasUpvoted    bool   `json:"hasUpvoted"`
	HasBookmarked bool   `json:"hasBookmarked"`
}

// productSnapshot lets a client toggle a product the session has not listed
// yet, for example straight from a detail page, by sending its current state.
type productSnapshot struct {
	Product *domain.Product `json:"product,omitempty"`
}

func resolveProduct(r *http.Request, s sessionLike, slug string) (domain.Product, error) {
	if p, ok := s.FindProduct(slug); ok {
		return p, nil
	}
	var snap productSnapshot
	if err := readJSON(r, &snap); err == nil && snap.Product != nil && snap.Product.Slug == slug {
		snap.Product.Normalize()
		return *snap.Product, nil
	}
	return domain.Product{}, domain.ErrProductNotKnown
}

// sessionLike is the slice of session behavior the interaction handlers use.
type sessionLike interface {
	FindProduct(slug string) (domain.Product, bool)
	UpdateProduct(p domain.Product)
}

// ToggleUpvote flips the viewer's upvote on a product and fans the updated
// counters out to every list surface holding it.
func ToggleUpvote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")

		p, err := resolveProduct(r, s, slug)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := s.Engine.ToggleUpvote(r.Context(), &p); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		s.UpdateProduct(p)
		writeData(w, interactionResponse{
			Slug:          p.Slug,
			UpvoteCount:   p.UpvoteCount,
			BookmarkCount: p.BookmarkCount,
			HasUpvoted:    p.Interactions.HasUpvoted,
			HasBookmarked: p.Interactions.HasBookmarked,
		})
	}
}

// ToggleBookmark is the bookmark twin of ToggleUpvote.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")

		p, err := resolveProduct(r, s, slug)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := s.Engine.ToggleBookmark(r.Context(), &p); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		s.UpdateProduct(p)
		writeData(w, interactionResponse{
			Slug:          p.Slug,
			UpvoteCount:   p.UpvoteCount,
			BookmarkCount: p.BookmarkCount,
			HasUpvoted:    p.Interactions.HasUpvoted,
			HasBookmarked: p.Interactions.HasBookmarked,
		})
	}
}
