// Package session keeps per-browser-session state on the gateway: the
// viewer, the auth token, list controllers, comment threads, the seen
// recommendation set and pending UI events. A session is identified by the
// X-Bazar-Session header and swept after sitting idle past the TTL.
package session

import (
	"sync"
	"time"

	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/dedup"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/listctl"
	"github.com/productbazar/bazar/internal/mutate"
)

// maxBufferedEvents bounds the per-session event queue; the oldest events
// are dropped first when a client stops draining them.
const maxBufferedEvents = 64

// Session is the state of one browser session.
type Session struct {
	ID string

	Coordinator *coordinator.Coordinator
	Engine      *mutate.Engine
	Seen        *dedup.Tracker

	mu       sync.Mutex
	viewer   *domain.Viewer
	lastSeen time.Time
	events   []mutate.Event

	productLists map[string]*listctl.Controller[domain.Product]
	jobLists     map[string]*listctl.Controller[domain.Job]
	threads      map[string]*mutate.Thread
}

// Viewer returns the session's authenticated user, nil when anonymous.
func (s *Session) Viewer() *domain.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer
}

// SetViewer attaches (or with nil detaches) the authenticated user.
func (s *Session) SetViewer(v *domain.Viewer) {
	s.mu.Lock()
	s.viewer = v
	s.mu.Unlock()
}

// Touch refreshes the idle clock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// IdleSince returns the time of the last request seen on this session.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// PushEvent queues a UI event for the next drain, dropping the oldest when
// the buffer is full.
func (s *Session) PushEvent(ev mutate.Event) {
	s.mu.Lock()
	if len(s.events) >= maxBufferedEvents {
		s.events = s.events[1:]
	}
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// DrainEvents returns the queued events and empties the buffer.
func (s *Session) DrainEvents() []mutate.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

// ProductList returns the named product list controller, building it with
// fetch on first use. Surfaces use stable keys ("category:dev-tools",
// "search:products", ...).
func (s *Session) ProductList(key string, build func() *listctl.Controller[domain.Product]) *listctl.Controller[domain.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.productLists[key]; ok {
		return c
	}
	c := build()
	s.productLists[key] = c
	return c
}

// JobList is ProductList for job surfaces.
func (s *Session) JobList(key string, build func() *listctl.Controller[domain.Job]) *listctl.Controller[domain.Job] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.jobLists[key]; ok {
		return c
	}
	c := build()
	s.jobLists[key] = c
	return c
}

// FindProduct scans the session's product lists for the slug and returns a
// copy of the first match.
func (s *Session) FindProduct(slug string) (domain.Product, bool) {
	s.mu.Lock()
	lists := make([]*listctl.Controller[domain.Product], 0, len(s.productLists))
	for _, c := range s.productLists {
		lists = append(lists, c)
	}
	s.mu.Unlock()

	for _, c := range lists {
		for _, p := range c.State().Items {
			if p.Slug == slug {
				return p, true
			}
		}
	}
	return domain.Product{}, false
}

// UpdateProduct writes p into every product list that holds it, so a toggle
// made from one surface shows up on all of them.
func (s *Session) UpdateProduct(p domain.Product) {
	s.mu.Lock()
	lists := make([]*listctl.Controller[domain.Product], 0, len(s.productLists))
	for _, c := range s.productLists {
		lists = append(lists, c)
	}
	s.mu.Unlock()

	for _, c := range lists {
		c.ReplaceItem(p.ID, func(cur *domain.Product) { *cur = p })
	}
}

// Thread returns the comment thread for the product at slug, creating an
// empty one on first use.
func (s *Session) Thread(slug string) *mutate.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.threads[slug]; ok {
		return t
	}
	t := mutate.NewThread(slug)
	s.threads[slug] = t
	return t
}

// close releases the controllers' pending work.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.productLists {
		c.Close()
	}
	for _, c := range s.jobLists {
		c.Close()
	}
}
