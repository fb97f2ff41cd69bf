package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
	"github.com/productbazar/bazar/internal/listctl"
	"github.com/productbazar/bazar/internal/session"
)

// jobListPayload mirrors the upstream jobs response, which carries its
// pagination at the top level instead of a nested block.
type jobListPayload struct {
	Data struct {
		Jobs []domain.Job `json:"jobs"`
	} `json:"data"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
}

// Jobs serves the Published-only job board listing.
func Jobs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		q := r.URL.Query()

		filters := domain.JobFilters{
			JobType:         q.Get("jobType"),
			LocationType:    q.Get("locationType"),
			ExperienceLevel: q.Get("experienceLevel"),
		}
		sort := domain.ParseSort(q.Get("sort"))
		page := intParam(q, "page", 1)
		limit := intParam(q, "limit", d.DefaultPageSize)

		ctrl := s.JobList("jobs", func() *listctl.Controller[domain.Job] {
			return listctl.New(jobFetcher(s), jobID, limit, d.Logger)
		})

		if err := advance(r.Context(), ctrl, page, filters, sort); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		st := ctrl.State()
		writeData(w, listState[domain.Job]{Items: st.Items, Cursor: st.Cursor, Loading: st.Loading || st.LoadingMore})
	}
}

func jobID(j domain.Job) string { return j.ID }

func jobFetcher(s *session.Session) listctl.Fetcher[domain.Job] {
	return func(ctx context.Context, page, limit int, filters any, sort domain.Sort) (listctl.Page[domain.Job], error) {
		params := url.Values{}
		if jf, ok := filters.(domain.JobFilters); ok {
			params = jf.Params()
		}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(limit))
		params.Set("sort", string(sort))
		params.Set("status", string(domain.JobStatusPublished))

		var out jobListPayload
		err := s.Coordinator.DoJSON(ctx, coordinator.Request{
			Method:   http.MethodGet,
			Path:     "/jobs",
			Params:   params,
			Priority: coordinator.PriorityNormal,
		}, &out)
		if err != nil {
			return listctl.Page[domain.Job]{}, err
		}

		// Drafts and closed postings never surface, whatever upstream sends.
		jobs := out.Data.Jobs[:0]
		for _, j := range out.Data.Jobs {
			if j.Status == domain.JobStatusPublished {
				jobs = append(jobs, j)
			}
		}
		domain.SortJobs(jobs, sort)

		cursor := &domain.Cursor{
			Page:        out.CurrentPage,
			Limit:       limit,
			Total:       out.Total,
			TotalPages:  out.TotalPages,
			HasNextPage: out.CurrentPage < out.TotalPages,
		}
		if out.CurrentPage == 0 {
			cursor = nil
		}
		return listctl.Page[domain.Job]{Items: jobs, Cursor: cursor}, nil
	}
}
