package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/search"
)

// searchPayload mirrors the upstream cross-entity search response.
type searchPayload struct {
	Results struct {
		Products []domain.Product `json:"products"`
		Jobs     []domain.Job     `json:"jobs"`
		Projects []domain.Project `json:"projects"`
		Users    []domain.Viewer  `json:"users"`
	} `json:"results"`
	Counts       search.Counts `json:"counts"`
	TotalResults int           `json:"totalResults"`
}

// searchResponse is what the browser receives: the upstream results plus the
// planner's verdicts.
type searchResponse struct {
	Query        string        `json:"query"`
	Rewrote      bool          `json:"rewrote"`
	Bucket       search.Bucket `json:"bucket"`
	Fallback     bool          `json:"fallback"`
	Counts       search.Counts `json:"counts"`
	TotalResults int           `json:"totalResults"`
	Results      any           `json:"results"`
}

// Search rewrites the query, fans it out upstream and picks the bucket to
// present. Zero hits trigger exactly one regex-hint retry.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		q := r.URL.Query()

		raw := strings.TrimSpace(q.Get("q"))
		if raw == "" {
			writeError(w, d.Logger, apierr.New(apierr.KindBadRequest, "missing query"))
			return
		}

		filters := domain.SearchFilters{
			Category:     q.Get("category"),
			JobType:      q.Get("jobType"),
			LocationType: q.Get("locationType"),
			Role:         q.Get("role"),
		}
		page := intParam(q, "page", 1)
		limit := intParam(q, "limit", d.DefaultPageSize)

		plan := d.Planner.Plan(raw)

		params := filters.Params()
		params.Set("query", plan.Query)
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(limit))
		params.Set("natural_language", "true")

		var out searchPayload
		err := s.Coordinator.DoJSON(r.Context(), coordinator.Request{
			Method:   http.MethodGet,
			Path:     "/search",
			Params:   params,
			Priority: coordinator.PriorityHigh,
		}, &out)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		fellBack := false
		if out.TotalResults == 0 && out.Counts.Total() == 0 {
			// One follow-up with regex hints instead of text search. Never a
			// third attempt.
			fallbackParams := filters.Params()
			fallbackParams.Set("page", strconv.Itoa(page))
			fallbackParams.Set("limit", strconv.Itoa(limit))
			fallbackParams.Set("titleRegex", raw)
			fallbackParams.Set("skillsRegex", raw)

			var retry searchPayload
			if rerr := s.Coordinator.DoJSON(r.Context(), coordinator.Request{
				Method:   http.MethodGet,
				Path:     "/search",
				Params:   fallbackParams,
				Priority: coordinator.PriorityHigh,
			}, &retry); rerr == nil {
				out = retry
				fellBack = true
			} else {
				d.Logger.Warn("search regex fallback failed",
					logger.String("query", raw),
					logger.Error(rerr))
			}
		}

		bucket := search.ChooseBucket(plan, raw, out.Counts)
		d.Logger.Debug("search served",
			logger.String("query", raw),
			logger.String("planned", plan.Query),
			logger.String("bucket", string(bucket)),
			logger.Int("total", out.TotalResults))

		writeData(w, searchResponse{
			Query:        plan.Query,
			Rewrote:      plan.Rewrote,
			Bucket:       bucket,
			Fallback:     fellBack,
			Counts:       out.Counts,
			TotalResults: out.TotalResults,
			Results:      out.Results,
		})
	}
}
