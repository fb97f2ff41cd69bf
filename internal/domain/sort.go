package domain

import (
	"sort"
	"strings"
)

// LessProducts returns the comparator for the given sort. Every ordering
// breaks ties by id ascending so pagination stays deterministic when two
// records compare equal.
func LessProducts(by Sort) func(a, b Product) bool {
	switch by {
	case SortMostViewed:
		return func(a, b Product) bool {
			if a.ViewCount != b.ViewCount {
				return a.ViewCount > b.ViewCount
			}
			return a.ID < b.ID
		}
	case SortNameAsc:
		return func(a, b Product) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
			return a.ID < b.ID
		}
	case SortNameDesc:
		return func(a, b Product) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an > bn
			}
			return a.ID < b.ID
		}
	default: // newest
		return func(a, b Product) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		}
	}
}

// SortProducts orders items in place according to by.
func SortProducts(items []Product, by Sort) {
	less := LessProducts(by)
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// LessJobs is LessProducts for the job board. Name sorts compare titles;
// view counts do not exist on jobs, so most_viewed falls back to newest.
func LessJobs(by Sort) func(a, b Job) bool {
	switch by {
	case SortNameAsc:
		return func(a, b Job) bool {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return a.ID < b.ID
		}
	case SortNameDesc:
		return func(a, b Job) bool {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at > bt
			}
			return a.ID < b.ID
		}
	default: // newest
		return func(a, b Job) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		}
	}
}

// SortJobs orders items in place according to by.
func SortJobs(items []Job, by Sort) {
	less := LessJobs(by)
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
