package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProductNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Product
		want int
	}{
		{
			name: "nested block wins",
			in:   Product{UpvoteCount: 3, Upvotes: &CountBlock{Count: 7}},
			want: 7,
		},
		{
			name: "flat counter kept without block",
			in:   Product{UpvoteCount: 3},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			if tt.in.UpvoteCount != tt.want {
				t.Errorf("UpvoteCount = %d, want %d", tt.in.UpvoteCount, tt.want)
			}
		})
	}
}

func TestSetUpvotesWritesBothShapes(t *testing.T) {
	p := Product{UpvoteCount: 5, Upvotes: &CountBlock{Count: 5}}
	p.SetUpvotes(6, true)
	if p.UpvoteCount != 6 || p.Upvotes.Count != 6 {
		t.Errorf("counters diverged: flat=%d nested=%d", p.UpvoteCount, p.Upvotes.Count)
	}
	if !p.Interactions.HasUpvoted {
		t.Errorf("viewer flag not set")
	}
}

func TestSetUpvotesFloorsAtZero(t *testing.T) {
	p := Product{}
	p.SetUpvotes(-1, false)
	if p.UpvoteCount != 0 {
		t.Errorf("UpvoteCount = %d, want floor at 0", p.UpvoteCount)
	}
}

func TestRecItemUnmarshalBothShapes(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind RecKind
		wantID   string
	}{
		{
			name:     "bare product",
			payload:  `{"_id":"p1","name":"Widget","upvoteCount":2}`,
			wantKind: RecBare,
			wantID:   "p1",
		},
		{
			name:     "wrapped with product",
			payload:  `{"product":{"_id":"p2","name":"Gadget"},"score":0.9,"reason":"trending"}`,
			wantKind: RecWrapped,
			wantID:   "p2",
		},
		{
			name:     "wrapped with productData",
			payload:  `{"productData":{"_id":"p3"},"explanationText":"because you liked X"}`,
			wantKind: RecWrapped,
			wantID:   "p3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item RecItem
			if err := json.Unmarshal([]byte(tt.payload), &item); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if item.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", item.Kind, tt.wantKind)
			}
			if item.ItemID() != tt.wantID {
				t.Errorf("ItemID() = %q, want %q", item.ItemID(), tt.wantID)
			}
		})
	}
}

func TestSortProducts(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := func() []Product {
		return []Product{
			{ID: "b", Name: "beta", ViewCount: 10, CreatedAt: base},
			{ID: "a", Name: "Alpha", ViewCount: 10, CreatedAt: base.Add(day)},
			{ID: "c", Name: "gamma", ViewCount: 3, CreatedAt: base},
		}
	}

	tests := []struct {
		name string
		by   Sort
		want []string
	}{
		{name: "newest with id tie-break", by: SortNewest, want: []string{"a", "b", "c"}},
		{name: "most viewed with id tie-break", by: SortMostViewed, want: []string{"a", "b", "c"}},
		{name: "name ascending case-insensitive", by: SortNameAsc, want: []string{"a", "b", "c"}},
		{name: "name descending", by: SortNameDesc, want: []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := items()
			SortProducts(got, tt.by)
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %q, want %q (order %v)", i, got[i].ID, id, got)
				}
			}
		})
	}
}

func TestSortJobs(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := func() []Job {
		return []Job{
			{ID: "j2", Title: "Backend Engineer", CreatedAt: base},
			{ID: "j3", Title: "backend engineer", CreatedAt: base},
			{ID: "j1", Title: "Designer", CreatedAt: base.Add(day)},
		}
	}

	tests := []struct {
		name string
		by   Sort
		want []string
	}{
		{name: "newest with id tie-break", by: SortNewest, want: []string{"j1", "j2", "j3"}},
		{name: "title ascending case-insensitive", by: SortNameAsc, want: []string{"j2", "j3", "j1"}},
		{name: "most viewed falls back to newest", by: SortMostViewed, want: []string{"j1", "j2", "j3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := items()
			SortJobs(got, tt.by)
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestInferCursor(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		received int
		wantNext bool
	}{
		{name: "full page implies more", page: 1, limit: 10, received: 10, wantNext: true},
		{name: "short page implies end", page: 2, limit: 10, received: 4, wantNext: false},
		{name: "zero limit never paginates", page: 1, limit: 0, received: 0, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := InferCursor(tt.page, tt.limit, tt.received)
			if c.HasNextPage != tt.wantNext {
				t.Errorf("HasNextPage = %v, want %v", c.HasNextPage, tt.wantNext)
			}
		})
	}
}
