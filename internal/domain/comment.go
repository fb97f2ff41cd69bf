package domain

import (
	"errors"
	"time"
)

// MaxReplyDepth bounds how deep under a root comment a new reply may sit.
const MaxReplyDepth = 4

var (
	// ErrCommentNotFound is returned when no node in the thread matches the id.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrReplyTooDeep is returned when a reply would exceed MaxReplyDepth.
	ErrReplyTooDeep = errors.New("reply nesting too deep")
	// ErrSelfReply is returned when a viewer tries to reply to their own comment.
	ErrSelfReply = errors.New("cannot reply to own comment")
)

// Likes is the like block on a comment or reply.
type Likes struct {
	Count       int  `json:"count"`
	ViewerLiked bool `json:"viewerLiked"`
}

// Comment is one node of a product's comment thread. Top-level comments have
// empty RootID and ReplyingToID; every reply carries RootID pointing at the
// top-level comment it lives under and ReplyingToID pointing at its immediate
// parent, which may itself be a reply.
type Comment struct {
	ID           string     `json:"_id"`
	AuthorID     string     `json:"authorId"`
	AuthorName   string     `json:"authorName,omitempty"`
	Content      string     `json:"content"`
	RootID       string     `json:"rootId,omitempty"`
	ReplyingToID string     `json:"replyingToId,omitempty"`
	Likes        Likes      `json:"likes"`
	Replies      []*Comment `json:"replies,omitempty"`
	Pending      bool       `json:"pending,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsRoot reports whether c is a top-level comment.
func (c *Comment) IsRoot() bool { return c.RootID == "" }

// FindComment walks the thread in order and returns the first node matching
// id, descending into replies before moving to the next sibling.
func FindComment(comments []*Comment, id string) *Comment {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
		if found := FindComment(c.Replies, id); found != nil {
			return found
		}
	}
	return nil
}

// findWithDepth returns the node and its depth, counting top-level comments
// as depth 0.
func findWithDepth(comments []*Comment, id string, depth int) (*Comment, int) {
	for _, c := range comments {
		if c.ID == id {
			return c, depth
		}
		if found, d := findWithDepth(c.Replies, id, depth+1); found != nil {
			return found, d
		}
	}
	return nil, 0
}

// InsertReply attaches reply under the node matching parentID, fixing up the
// reply's RootID and ReplyingToID. The reply lands at the end of the parent's
// reply list.
func InsertReply(comments []*Comment, parentID string, reply *Comment) error {
	parent, depth := findWithDepth(comments, parentID, 0)
	if parent == nil {
		return ErrCommentNotFound
	}
	if depth+1 > MaxReplyDepth {
		return ErrReplyTooDeep
	}

	if parent.IsRoot() {
		reply.RootID = parent.ID
	} else {
		reply.RootID = parent.RootID
	}
	reply.ReplyingToID = parent.ID
	parent.Replies = append(parent.Replies, reply)
	return nil
}

// RemoveComment prunes the first node matching id and returns the removed
// subtree along with the index it occupied in its sibling list, so a failed
// delete can reinsert it where it was. Siblings after the first match are
// never visited.
func RemoveComment(comments *[]*Comment, id string) (*Comment, int, bool) {
	for i, c := range *comments {
		if c.ID == id {
			removed := c
			*comments = append((*comments)[:i], (*comments)[i+1:]...)
			return removed, i, true
		}
	}
	for _, c := range *comments {
		if removed, at, ok := RemoveComment(&c.Replies, id); ok {
			return removed, at, ok
		}
	}
	return nil, 0, false
}

// ReinsertComment puts a previously removed subtree back at its original
// position under the node matching parentID ("" means top level).
func ReinsertComment(comments *[]*Comment, parentID string, node *Comment, at int) bool {
	target := comments
	if parentID != "" {
		parent := FindComment(*comments, parentID)
		if parent == nil {
			return false
		}
		target = &parent.Replies
	}
	if at < 0 || at > len(*target) {
		at = len(*target)
	}
	*target = append(*target, nil)
	copy((*target)[at+1:], (*target)[at:])
	(*target)[at] = node
	return true
}

// ReplaceComment swaps the first node matching id for with, keeping the
// position and the already-accumulated replies when the replacement has none.
func ReplaceComment(comments []*Comment, id string, with *Comment) bool {
	for i, c := range comments {
		if c.ID == id {
			if with.Replies == nil {
				with.Replies = c.Replies
			}
			comments[i] = with
			return true
		}
		if ReplaceComment(c.Replies, id, with) {
			return true
		}
	}
	return false
}

// CountNodes returns the number of nodes in the thread, replies included.
func CountNodes(comments []*Comment) int {
	n := 0
	for _, c := range comments {
		n += 1 + CountNodes(c.Replies)
	}
	return n
}
