package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
	"github.com/productbazar/bazar/internal/logger"
)

// recPayload mirrors the { success, data[] } shape all three feed endpoints
// share.
type recPayload struct {
	Data []domain.RecItem `json:"data"`
}

type recResponse struct {
	Items     []domain.RecItem `json:"items"`
	Refreshed bool             `json:"refreshed"`
}

// NewProducts serves the "new products" surface: a fallback chain across
// three upstream feeds, filtered through the session's seen set so no item
// repeats across surfaces, and throttled by a per-session breadcrumb.
func NewProducts(d deps.Deps) http.HandlerFunc {
	const surface = "new"

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s := mw.SessionFrom(ctx)
		n := intParam(r.URL.Query(), "limit", 6)

		// A live breadcrumb means this surface was served moments ago; the
		// browser keeps what it has.
		if d.Store != nil {
			if fresh, err := d.Store.HasBreadcrumb(ctx, s.ID, surface); err == nil && fresh {
				writeData(w, recResponse{Items: []domain.RecItem{}, Refreshed: false})
				return
			}
			// A gateway restart empties the tracker; the mirror refills it.
			if s.Seen.Len() == 0 {
				if members, err := d.Store.SeenMembers(ctx, s.ID); err == nil && len(members) > 0 {
					s.Seen.MarkSeen(members...)
				}
			}
		}

		params := url.Values{}
		params.Set("limit", strconv.Itoa(n * 3)) // overfetch so the seen filter still fills the surface

		resp, err := s.Coordinator.FallbackChain(ctx, func(resp *coordinator.Response) bool {
			var probe recPayload
			return json.Unmarshal(resp.Body, &probe) == nil && len(probe.Data) > 0
		},
			coordinator.Request{Method: http.MethodGet, Path: "/recommendations/new", Params: params},
			coordinator.Request{Method: http.MethodGet, Path: "/products/recent", Params: params},
			coordinator.Request{Method: http.MethodGet, Path: "/products/trending", Params: params},
		)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var out recPayload
		if err := json.Unmarshal(resp.Body, &out); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		// Order-preserving filter against the session's seen set, then mark
		// only what is actually being shown.
		ids := make([]string, len(out.Data))
		byID := make(map[string]domain.RecItem, len(out.Data))
		for i, item := range out.Data {
			ids[i] = item.ItemID()
			byID[item.ItemID()] = item
		}

		fresh := s.Seen.Filter(ids, n)
		items := make([]domain.RecItem, 0, len(fresh))
		for _, id := range fresh {
			items = append(items, byID[id])
		}
		s.Seen.MarkSeen(fresh...)

		if d.Store != nil {
			// Best effort mirrors; the in-memory tracker is authoritative.
			if err := d.Store.AddSeen(ctx, s.ID, fresh, d.SessionTTL); err != nil {
				d.Logger.Warn("failed to mirror seen set", logger.Error(err))
			}
			if err := d.Store.SetBreadcrumb(ctx, s.ID, surface, d.CrumbWindow); err != nil {
				d.Logger.Warn("failed to set breadcrumb", logger.Error(err))
			}
		}

		writeData(w, recResponse{Items: items, Refreshed: true})
	}
}
