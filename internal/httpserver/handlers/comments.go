package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

// commentListPayload mirrors the upstream comment listing response.
type commentListPayload struct {
	Data struct {
		Comments   []*domain.Comment `json:"comments"`
		Pagination *domain.Cursor    `json:"pagination"`
	} `json:"data"`
}

type threadResponse struct {
	Comments []*domain.Comment `json:"comments"`
	Total    int               `json:"total"`
}

type commentBody struct {
	Content   string `json:"content"`
	ReplyToID string `json:"replyToId,omitempty"`
}

// ListComments loads a page of the product's thread into the session state
// and returns the whole tree as the session sees it, pending nodes included.
func ListComments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s := mw.SessionFrom(ctx)
		slug := chi.URLParam(r, "slug")
		page := intParam(r.URL.Query(), "page", 1)
		limit := intParam(r.URL.Query(), "limit", d.DefaultPageSize)

		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(limit))

		var out commentListPayload
		err := s.Coordinator.DoJSON(ctx, coordinator.Request{
			Method:   http.MethodGet,
			Path:     "/products/" + slug + "/comments",
			Params:   params,
			Priority: coordinator.PriorityNormal,
		}, &out)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		total := len(out.Data.Comments)
		if out.Data.Pagination != nil {
			total = out.Data.Pagination.Total
		}

		t := s.Thread(slug)
		if page <= 1 {
			t.Replace(out.Data.Comments, total)
		} else {
			t.Append(out.Data.Comments, total)
		}

		writeData(w, threadResponse{Comments: t.Comments(), Total: t.Total()})
	}
}

// CreateComment posts a top-level comment through the mutation engine.
func CreateComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")

		var body commentBody
		if err := readJSON(r, &body); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		c, err := s.Engine.AddComment(r.Context(), s.Thread(slug), body.Content)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeData(w, c)
	}
}

// CreateReply posts a reply under the comment named in the path. The path
// parent may itself be a reply; the engine resolves the root.
func CreateReply(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")
		parentID := chi.URLParam(r, "id")

		var body commentBody
		if err := readJSON(r, &body); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if body.ReplyToID != "" {
			parentID = body.ReplyToID
		}

		c, err := s.Engine.AddReply(r.Context(), s.Thread(slug), parentID, body.Content)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeData(w, c)
	}
}

// UpdateComment edits a comment or reply in place.
func UpdateComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")
		id := chi.URLParam(r, "id")

		var body commentBody
		if err := readJSON(r, &body); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		c, err := s.Engine.EditComment(r.Context(), s.Thread(slug), id, body.Content)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeData(w, c)
	}
}

// DeleteComment removes a comment or reply subtree.
func DeleteComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")
		id := chi.URLParam(r, "id")

		t := s.Thread(slug)
		if err := s.Engine.DeleteComment(r.Context(), t, id); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeData(w, threadResponse{Comments: t.Comments(), Total: t.Total()})
	}
}

// ToggleCommentLike flips the viewer's like on a comment or reply.
func ToggleCommentLike(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")
		id := chi.URLParam(r, "id")

		t := s.Thread(slug)
		if err := s.Engine.ToggleLike(r.Context(), t, id); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		node := t.Find(id)
		if node == nil {
			writeError(w, d.Logger, domain.ErrCommentNotFound)
			return
		}
		writeData(w, node.Likes)
	}
}
