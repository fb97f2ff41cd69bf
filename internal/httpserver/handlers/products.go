package handlers

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
	"github.com/productbazar/bazar/internal/listctl"
	"github.com/productbazar/bazar/internal/session"
)

// productListPayload mirrors the upstream category listing response.
type productListPayload struct {
	Data struct {
		Products   []domain.Product `json:"products"`
		Category   *domain.Category `json:"category"`
		Pagination *domain.Cursor   `json:"pagination"`
	} `json:"data"`
}

// listState is the list slice every list surface answers with.
type listState[T any] struct {
	Items   []T           `json:"items"`
	Cursor  domain.Cursor `json:"cursor"`
	Loading bool          `json:"loading"`
}

// CategoryProducts serves the paged product listing of one category through
// the session's list controller, so filter changes reset and scrolling
// appends, race-free per session.
func CategoryProducts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		slug := chi.URLParam(r, "slug")
		q := r.URL.Query()

		filters := domain.ProductFilters{
			PricingType: q["pricing_type"],
			Subcategory: q.Get("subcategory"),
		}
		sort := domain.ParseSort(q.Get("sort"))
		page := intParam(q, "page", 1)
		limit := intParam(q, "limit", d.DefaultPageSize)

		ctrl := s.ProductList("category:"+slug, func() *listctl.Controller[domain.Product] {
			return listctl.New(productFetcher(s, "/products/category/"+slug), productID, limit, d.Logger)
		})

		if err := advance(r.Context(), ctrl, page, filters, sort); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		st := ctrl.State()
		writeData(w, listState[domain.Product]{Items: st.Items, Cursor: st.Cursor, Loading: st.Loading || st.LoadingMore})
	}
}

func productID(p domain.Product) string { return p.ID }

// productFetcher builds a list fetcher over the session coordinator.
func productFetcher(s *session.Session, path string) listctl.Fetcher[domain.Product] {
	return func(ctx context.Context, page, limit int, filters any, sort domain.Sort) (listctl.Page[domain.Product], error) {
		params := url.Values{}
		if pf, ok := filters.(domain.ProductFilters); ok {
			params = pf.Params()
		}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(limit))
		params.Set("sort", string(sort))

		var out productListPayload
		err := s.Coordinator.DoJSON(ctx, coordinator.Request{
			Method:   http.MethodGet,
			Path:     path,
			Params:   params,
			Priority: coordinator.PriorityNormal,
		}, &out)
		if err != nil {
			return listctl.Page[domain.Product]{}, err
		}

		for i := range out.Data.Products {
			out.Data.Products[i].Normalize()
		}
		// Upstream gives no order guarantee; re-sorting with the id
		// tie-break keeps pagination deterministic across refetches.
		domain.SortProducts(out.Data.Products, sort)
		return listctl.Page[domain.Product]{Items: out.Data.Products, Cursor: out.Data.Pagination}, nil
	}
}

// advance drives a controller from one request: page 1 or changed
// filters/sort reset the list, the page past the frontier appends. A retry
// of a page already merged answers from state without refetching, and a
// jump over the frontier restarts from page 1 rather than serve a gap.
func advance[T any](ctx context.Context, ctrl *listctl.Controller[T], page int, filters any, sort domain.Sort) error {
	st := ctrl.State()
	fresh := len(st.Items) == 0 && !st.Loading
	changed := !reflect.DeepEqual(st.Filters, filters) || st.Sort != sort

	var err error
	switch {
	case page <= 1 || fresh || changed:
		err = ctrl.Reset(ctx, filters, sort)
	case page <= st.Cursor.Page:
		return nil
	case page > st.Cursor.Page+1:
		err = ctrl.Reset(ctx, filters, sort)
	default:
		err = ctrl.LoadMore(ctx)
	}
	if err != nil && apierr.Cancelled(err) {
		return nil
	}
	return err
}

func intParam(q url.Values, key string, def int) int {
	if v := q.Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}
