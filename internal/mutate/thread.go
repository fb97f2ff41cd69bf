package mutate

import (
	"sync"

	"github.com/productbazar/bazar/internal/domain"
)

// Thread is the comment tree of one product, as the session currently sees
// it. All access goes through the engine or the accessors below; the tree is
// mutated in place under the lock.
type Thread struct {
	Slug string

	mu       sync.Mutex
	comments []*domain.Comment
	total    int
}

// NewThread builds an empty thread for the product at slug.
func NewThread(slug string) *Thread {
	return &Thread{Slug: slug}
}

// Replace swaps the whole tree, typically after fetching page 1.
func (t *Thread) Replace(comments []*domain.Comment, total int) {
	t.mu.Lock()
	t.comments = comments
	t.total = total
	t.mu.Unlock()
}

// Append extends the top level with another fetched page, skipping ids the
// tree already holds.
func (t *Thread) Append(comments []*domain.Comment, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range comments {
		if domain.FindComment(t.comments, c.ID) != nil {
			continue
		}
		t.comments = append(t.comments, c)
	}
	t.total = total
}

// Comments returns a copy of the top-level slice. Nodes are shared; callers
// must treat them as read-only.
func (t *Thread) Comments() []*domain.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*domain.Comment, len(t.comments))
	copy(out, t.comments)
	return out
}

// Total returns the server-reported count of top-level comments, adjusted by
// local optimistic adds and deletes.
func (t *Thread) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Find returns the node matching id, or nil.
func (t *Thread) Find(id string) *domain.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.FindComment(t.comments, id)
}
