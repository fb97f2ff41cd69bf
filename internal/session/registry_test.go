package session

import (
	"testing"
	"time"

	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/listctl"
	"github.com/productbazar/bazar/internal/mutate"
)

func newRegistry() *Registry {
	return NewRegistry(Options{
		Upstream: coordinator.Options{BaseURL: "http://upstream.invalid"},
	}, nil)
}

func TestEnsureCreatesAndReuses(t *testing.T) {
	r := newRegistry()

	s := r.Ensure("")
	if s.ID == "" {
		t.Fatal("empty id must be replaced with a generated one")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	again := r.Ensure(s.ID)
	if again != s {
		t.Error("Ensure with a known id must return the same session")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	other := r.Ensure("other")
	if other == s {
		t.Error("distinct ids must get distinct sessions")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newRegistry()
	a := r.Ensure("a")
	b := r.Ensure("b")

	a.SetViewer(&domain.Viewer{ID: "v1"})
	if b.Viewer() != nil {
		t.Error("viewer must not leak across sessions")
	}

	a.Seen.MarkSeen("p1")
	if b.Seen.Seen("p1") {
		t.Error("seen set must not leak across sessions")
	}

	if a.Coordinator == b.Coordinator {
		t.Error("each session owns its coordinator")
	}
}

func TestSweepIdleRemovesOnlyStaleSessions(t *testing.T) {
	r := newRegistry()
	stale := r.Ensure("stale")
	fresh := r.Ensure("fresh")

	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Hour)
	stale.mu.Unlock()
	fresh.Touch()

	removed := r.SweepIdle(30 * time.Minute)
	if len(removed) != 1 || removed[0] != "stale" {
		t.Fatalf("removed = %v, want [stale]", removed)
	}
	if _, ok := r.Get("stale"); ok {
		t.Error("stale session still present")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Error("fresh session was swept")
	}
}

func TestGetTouchesIdleClock(t *testing.T) {
	r := newRegistry()
	s := r.Ensure("s")
	s.mu.Lock()
	s.lastSeen = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	if _, ok := r.Get("s"); !ok {
		t.Fatal("session disappeared")
	}
	if removed := r.SweepIdle(30 * time.Minute); len(removed) != 0 {
		t.Errorf("Get must refresh the idle clock, swept %v", removed)
	}
}

func TestEventBufferIsBounded(t *testing.T) {
	r := newRegistry()
	s := r.Ensure("s")

	for i := 0; i < maxBufferedEvents+10; i++ {
		s.PushEvent(mutate.Event{Type: mutate.EventToast, Message: "m"})
	}

	got := s.DrainEvents()
	if len(got) != maxBufferedEvents {
		t.Errorf("buffered = %d, want %d", len(got), maxBufferedEvents)
	}
	if len(s.DrainEvents()) != 0 {
		t.Error("drain must empty the buffer")
	}
}

func TestListAndThreadAccessorsCache(t *testing.T) {
	r := newRegistry()
	s := r.Ensure("s")

	builds := 0
	build := func() *listctl.Controller[domain.Product] {
		builds++
		return listctl.New[domain.Product](nil, func(p domain.Product) string { return p.ID }, 10, nil)
	}

	c1 := s.ProductList("category:dev-tools", build)
	c2 := s.ProductList("category:dev-tools", build)
	if c1 != c2 || builds != 1 {
		t.Errorf("controller not cached: builds=%d", builds)
	}

	t1 := s.Thread("widget")
	t2 := s.Thread("widget")
	if t1 != t2 {
		t.Error("thread not cached")
	}
	if s.Thread("other") == t1 {
		t.Error("threads must be per slug")
	}
}
