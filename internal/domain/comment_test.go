package domain

import (
	"testing"
	"time"
)

// thread builds: A (root) -> B -> C, plus sibling root X.
func thread() []*Comment {
	c := &Comment{ID: "C", RootID: "A", ReplyingToID: "B", Content: "c"}
	b := &Comment{ID: "B", RootID: "A", ReplyingToID: "A", Content: "b", Replies: []*Comment{c}}
	a := &Comment{ID: "A", Content: "a", Replies: []*Comment{b}}
	x := &Comment{ID: "X", Content: "x"}
	return []*Comment{a, x}
}

func TestFindComment(t *testing.T) {
	comments := thread()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "root", id: "A", want: true},
		{name: "first level reply", id: "B", want: true},
		{name: "nested reply", id: "C", want: true},
		{name: "sibling root", id: "X", want: true},
		{name: "missing", id: "nope", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindComment(comments, tt.id)
			if (got != nil) != tt.want {
				t.Errorf("FindComment(%q) = %v, want found=%v", tt.id, got, tt.want)
			}
			if got != nil && got.ID != tt.id {
				t.Errorf("FindComment(%q).ID = %q", tt.id, got.ID)
			}
		})
	}
}

func TestInsertReplyPlacement(t *testing.T) {
	comments := thread()

	// Reply to C (a reply of a reply): D must land under C with RootID=A.
	d := &Comment{ID: "D", Content: "x-text"}
	if err := InsertReply(comments, "C", d); err != nil {
		t.Fatalf("InsertReply() error = %v", err)
	}

	c := FindComment(comments, "C")
	if len(c.Replies) != 1 || c.Replies[0].ID != "D" {
		t.Fatalf("reply not placed under immediate parent: %+v", c.Replies)
	}
	if d.RootID != "A" {
		t.Errorf("reply RootID = %q, want %q", d.RootID, "A")
	}
	if d.ReplyingToID != "C" {
		t.Errorf("reply ReplyingToID = %q, want %q", d.ReplyingToID, "C")
	}
}

func TestInsertReplyToRoot(t *testing.T) {
	comments := thread()
	r := &Comment{ID: "R"}
	if err := InsertReply(comments, "X", r); err != nil {
		t.Fatalf("InsertReply() error = %v", err)
	}
	if r.RootID != "X" {
		t.Errorf("RootID = %q, want parent's own id for top-level parent", r.RootID)
	}
}

func TestInsertReplyDepthBound(t *testing.T) {
	// Build a chain at exactly the depth limit: A -> 1 -> 2 -> 3 -> 4.
	n4 := &Comment{ID: "4", RootID: "A"}
	n3 := &Comment{ID: "3", RootID: "A", Replies: []*Comment{n4}}
	n2 := &Comment{ID: "2", RootID: "A", Replies: []*Comment{n3}}
	n1 := &Comment{ID: "1", RootID: "A", Replies: []*Comment{n2}}
	a := &Comment{ID: "A", Replies: []*Comment{n1}}
	comments := []*Comment{a}

	if err := InsertReply(comments, "3", &Comment{ID: "ok"}); err != nil {
		t.Errorf("reply at depth %d should be allowed, got %v", MaxReplyDepth, err)
	}
	if err := InsertReply(comments, "4", &Comment{ID: "deep"}); err != ErrReplyTooDeep {
		t.Errorf("reply beyond depth %d should fail, got %v", MaxReplyDepth, err)
	}
}

func TestInsertReplyMissingParent(t *testing.T) {
	comments := thread()
	if err := InsertReply(comments, "missing", &Comment{ID: "Z"}); err != ErrCommentNotFound {
		t.Errorf("InsertReply() error = %v, want ErrCommentNotFound", err)
	}
}

func TestRemoveComment(t *testing.T) {
	t.Run("removes nested subtree once", func(t *testing.T) {
		comments := thread()
		removed, at, ok := RemoveComment(&comments, "B")
		if !ok || removed.ID != "B" {
			t.Fatalf("RemoveComment(B) = %v, %v", removed, ok)
		}
		if at != 0 {
			t.Errorf("removed position = %d, want 0", at)
		}
		if FindComment(comments, "B") != nil || FindComment(comments, "C") != nil {
			t.Errorf("subtree rooted at B should be gone")
		}
		if FindComment(comments, "A") == nil || FindComment(comments, "X") == nil {
			t.Errorf("unrelated nodes must survive")
		}
	})

	t.Run("removes top-level comment", func(t *testing.T) {
		comments := thread()
		_, _, ok := RemoveComment(&comments, "A")
		if !ok {
			t.Fatalf("RemoveComment(A) failed")
		}
		if len(comments) != 1 || comments[0].ID != "X" {
			t.Errorf("top level after removal = %+v", comments)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		comments := thread()
		if _, _, ok := RemoveComment(&comments, "nope"); ok {
			t.Errorf("RemoveComment(nope) should report not found")
		}
		if CountNodes(comments) != 4 {
			t.Errorf("thread mutated on miss")
		}
	})
}

func TestReinsertComment(t *testing.T) {
	comments := thread()
	removed, at, ok := RemoveComment(&comments, "B")
	if !ok {
		t.Fatal("setup: remove failed")
	}
	if !ReinsertComment(&comments, "A", removed, at) {
		t.Fatal("ReinsertComment failed")
	}
	a := FindComment(comments, "A")
	if len(a.Replies) != 1 || a.Replies[0].ID != "B" {
		t.Errorf("B not restored at original position: %+v", a.Replies)
	}
	if FindComment(comments, "C") == nil {
		t.Errorf("descendants must come back with the subtree")
	}
}

func TestReplaceComment(t *testing.T) {
	comments := thread()

	// Provisional record gets swapped for the upstream one; the replies that
	// accumulated under the provisional node survive.
	fresh := &Comment{ID: "B2", RootID: "A", ReplyingToID: "A", Content: "server copy"}
	if !ReplaceComment(comments, "B", fresh) {
		t.Fatal("ReplaceComment failed")
	}
	if FindComment(comments, "B") != nil {
		t.Errorf("old node should be gone")
	}
	got := FindComment(comments, "B2")
	if got == nil {
		t.Fatal("replacement not reachable")
	}
	if len(got.Replies) != 1 || got.Replies[0].ID != "C" {
		t.Errorf("replies not preserved across replace: %+v", got.Replies)
	}
}

func TestFindAfterMutate(t *testing.T) {
	comments := thread()
	c := FindComment(comments, "C")
	c.Content = "edited"
	c.UpdatedAt = time.Now()
	again := FindComment(comments, "C")
	if again.Content != "edited" {
		t.Errorf("mutation not visible through second lookup")
	}
}

func TestCountNodes(t *testing.T) {
	if n := CountNodes(thread()); n != 4 {
		t.Errorf("CountNodes = %d, want 4", n)
	}
}
