package dedup

import (
	"fmt"
	"testing"
)

func TestFilterExcludesSeen(t *testing.T) {
	tr := NewTracker(10)
	tr.MarkSeen("b", "d")

	got := tr.Filter([]string{"a", "b", "c", "d", "e"}, 10)
	want := []string{"a", "c", "e"}
	if len(got) != len(want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Filter()[%d] = %q, want %q (input order must be preserved)", i, got[i], want[i])
		}
	}
}

func TestFilterCapsAtN(t *testing.T) {
	tr := NewTracker(10)
	got := tr.Filter([]string{"a", "b", "c", "d"}, 2)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Filter(n=2) = %v, want first two candidates", got)
	}
	if got := tr.Filter([]string{"a"}, 0); got != nil {
		t.Errorf("Filter(n=0) = %v, want nil", got)
	}
}

func TestFilterDoesNotMark(t *testing.T) {
	tr := NewTracker(10)
	_ = tr.Filter([]string{"a"}, 1)
	if tr.Seen("a") {
		t.Errorf("Filter must not mark candidates as seen")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	tr := NewTracker(10)
	tr.MarkSeen("a", "a", "b")
	tr.MarkSeen("a")
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestEvictionFreesOldest(t *testing.T) {
	tr := NewTracker(3)
	tr.MarkSeen("a", "b", "c")
	// Refresh a so b becomes the oldest.
	tr.MarkSeen("a")
	tr.MarkSeen("d")

	if tr.Seen("b") {
		t.Errorf("oldest id should have been evicted")
	}
	for _, id := range []string{"a", "c", "d"} {
		if !tr.Seen(id) {
			t.Errorf("id %q should still be tracked", id)
		}
	}

	// Evicted ids become eligible again.
	got := tr.Filter([]string{"b"}, 1)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("evicted id must be filterable again, got %v", got)
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker(10)
	tr.MarkSeen("a", "b")
	tr.Clear()
	if tr.Len() != 0 || tr.Seen("a") {
		t.Errorf("Clear() must reset the set")
	}
}

func TestFilterSkipsEmptyIDs(t *testing.T) {
	tr := NewTracker(10)
	got := tr.Filter([]string{"", "a", ""}, 5)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("Filter() = %v, want [a]", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(100)
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("g%d-%d", g, i)
				tr.MarkSeen(id)
				_ = tr.Filter([]string{id, "other"}, 2)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
	if tr.Len() > 100 {
		t.Errorf("Len() = %d, capacity must bound the set", tr.Len())
	}
}
