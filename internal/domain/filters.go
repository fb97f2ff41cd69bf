package domain

import (
	"net/url"
	"strings"
)

// Sort names the orderings a list surface supports.
type Sort string

const (
	SortNewest     Sort = "newest"
	SortMostViewed Sort = "most_viewed"
	SortNameAsc    Sort = "name_asc"
	SortNameDesc   Sort = "name_desc"
)

// ParseSort returns the sort matching s, defaulting to newest.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortMostViewed, SortNameAsc, SortNameDesc:
		return Sort(s)
	default:
		return SortNewest
	}
}

// ProductFilters narrows a products-in-category listing.
type ProductFilters struct {
	PricingType []string `json:"pricing_type,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
}

// Params renders the filters as upstream query parameters.
func (f ProductFilters) Params() url.Values {
	v := url.Values{}
	for _, p := range f.PricingType {
		if p = strings.TrimSpace(p); p != "" {
			v.Add("pricing_type", p)
		}
	}
	if f.Subcategory != "" {
		v.Set("subcategory", f.Subcategory)
	}
	return v
}

// JobFilters narrows the jobs listing.
type JobFilters struct {
	JobType         string `json:"jobType,omitempty"`
	LocationType    string `json:"locationType,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
}

func (f JobFilters) Params() url.Values {
	v := url.Values{}
	if f.JobType != "" {
		v.Set("jobType", f.JobType)
	}
	if f.LocationType != "" {
		v.Set("locationType", f.LocationType)
	}
	if f.ExperienceLevel != "" {
		v.Set("experienceLevel", f.ExperienceLevel)
	}
	return v
}

// SearchFilters narrows a cross-entity search.
type SearchFilters struct {
	Category     string `json:"category,omitempty"`
	JobType      string `json:"jobType,omitempty"`
	LocationType string `json:"locationType,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (f SearchFilters) Params() url.Values {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.JobType != "" {
		v.Set("jobType", f.JobType)
	}
	if f.LocationType != "" {
		v.Set("locationType", f.LocationType)
	}
	if f.Role != "" {
		v.Set("role", f.Role)
	}
	return v
}
