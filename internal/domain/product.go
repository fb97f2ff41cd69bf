package domain

import (
	"errors"
	"time"
)

// ErrProductNotKnown is returned when a toggle targets a product the session
// has never listed and the request carried no snapshot of it.
var ErrProductNotKnown = errors.New("product not known to session")

// Interaction is the viewer-dependent block attached to a product.
type Interaction struct {
	HasUpvoted    bool `json:"hasUpvoted"`
	HasBookmarked bool `json:"hasBookmarked"`
}

// CountBlock mirrors the nested upvotes/bookmarks shape some upstream
// responses still carry alongside the flat counters.
type CountBlock struct {
	Count int `json:"count"`
}

// Product is the minimum product shape the gateway manipulates. The upstream
// API owns the authoritative schema.
type Product struct {
	ID            string   `json:"_id"`
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Category      string   `json:"category,omitempty"`
	Pricing       string   `json:"pricing,omitempty"`
	UpvoteCount   int      `json:"upvoteCount"`
	BookmarkCount int      `json:"bookmarkCount"`
	ViewCount     int      `json:"viewCount"`

	// Some upstream payloads nest the counters; kept so both shapes survive
	// a round trip. Normalize() reconciles them after decode, and every
	// local update writes both.
	Upvotes   *CountBlock `json:"upvotes,omitempty"`
	Bookmarks *CountBlock `json:"bookmarks,omitempty"`

	Interactions Interaction `json:"userInteractions"`

	CreatedAt time.Time `json:"createdAt"`
}

// Normalize reconciles the nested count blocks with the flat counters,
// preferring the nested block when both are present.
func (p *Product) Normalize() {
	if p.Upvotes != nil {
		p.UpvoteCount = p.Upvotes.Count
	}
	if p.Bookmarks != nil {
		p.BookmarkCount = p.Bookmarks.Count
	}
}

// SetUpvotes writes the upvote counter to both shapes so any consumer of the
// serialized product sees a consistent value.
func (p *Product) SetUpvotes(count int, hasUpvoted bool) {
	if count < 0 {
		count = 0
	}
	p.UpvoteCount = count
	if p.Upvotes != nil {
		p.Upvotes.Count = count
	}
	p.Interactions.HasUpvoted = hasUpvoted
}

// SetBookmarks is the bookmark mirror of SetUpvotes.
func (p *Product) SetBookmarks(count int, hasBookmarked bool) {
	if count < 0 {
		count = 0
	}
	p.BookmarkCount = count
	if p.Bookmarks != nil {
		p.Bookmarks.Count = count
	}
	p.Interactions.HasBookmarked = hasBookmarked
}
