// Package mutate applies user actions optimistically: local state changes
// first, the upstream call follows, and a failed call puts the old state
// back. Toggles on the same entity coalesce instead of stacking requests.
package mutate

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/logger"
)

// ErrAuthRequired is returned by every mutation when no viewer is attached
// to the session. An EventAuthRequired is published alongside it.
var ErrAuthRequired = apierr.New(apierr.KindUnauthenticated, "sign in required")

// EventType discriminates engine events.
type EventType int

const (
	// EventAuthRequired asks the UI to surface a login prompt.
	EventAuthRequired EventType = iota
	// EventToast carries a user-facing notification.
	EventToast
)

// Event is one notification published by the engine. Err is for logs and
// tests and stays off the wire.
type Event struct {
	Type    EventType `json:"type"`
	Level   string    `json:"level,omitempty"` // "error", "success", "info"
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Sink receives engine events. Must not block.
type Sink func(Event)

// Engine runs optimistic mutations for one session.
type Engine struct {
	coord  *coordinator.Coordinator
	viewer func() *domain.Viewer
	emit   Sink
	log    logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

// New builds an engine. viewer returns the session's current viewer, nil when
// anonymous. sink may be nil.
func New(coord *coordinator.Coordinator, viewer func() *domain.Viewer, sink Sink, log logger.Logger) *Engine {
	if sink == nil {
		sink = func(Event) {}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		coord:    coord,
		viewer:   viewer,
		emit:     sink,
		log:      log,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
}

func (e *Engine) requireViewer() (*domain.Viewer, error) {
	if v := e.viewer(); v != nil {
		return v, nil
	}
	e.emit(Event{Type: EventAuthRequired, Message: "sign in to continue"})
	return nil, ErrAuthRequired
}

// begin claims the coalescing slot for key. A false return means a mutation
// for the same entity is already on the wire.
func (e *Engine) begin(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[key] {
		return false
	}
	e.inflight[key] = true
	return true
}

func (e *Engine) end(key string) {
	e.mu.Lock()
	delete(e.inflight, key)
	e.mu.Unlock()
}

func (e *Engine) toast(message string, err error) {
	e.emit(Event{Type: EventToast, Level: "error", Message: message, Err: err})
}

// interactionPayload is the upstream reply to upvote/bookmark/like calls.
// Fields are pointers so an absent field keeps the optimistic value.
type interactionPayload struct {
	Data struct {
		UpvoteCount   *int  `json:"upvoteCount"`
		HasUpvoted    *bool `json:"hasUpvoted"`
		BookmarkCount *int  `json:"bookmarkCount"`
		HasBookmarked *bool `json:"hasBookmarked"`
		Likes         *struct {
			Count       int  `json:"count"`
			ViewerLiked bool `json:"viewerLiked"`
		} `json:"likes"`
	} `json:"data"`
}

// ToggleUpvote flips the viewer's upvote on p. The flip lands locally before
// the upstream call; server truth overwrites it on success, the old values
// come back on failure. A second call while the first is on the wire flips
// local state only.
func (e *Engine) ToggleUpvote(ctx context.Context, p *domain.Product) error {
	if _, err := e.requireViewer(); err != nil {
		return err
	}
	p.Normalize()
	wasUp := p.Interactions.HasUpvoted
	oldCount := p.UpvoteCount

	count := oldCount
	if wasUp {
		count--
	} else {
		count++
	}
	p.SetUpvotes(count, !wasUp)

	key := "upvote:" + p.ID
	if !e.begin(key) {
		return nil
	}
	defer e.end(key)

	method := http.MethodPost
	if wasUp {
		method = http.MethodDelete
	}
	var out interactionPayload
	err := e.coord.DoJSON(ctx, coordinator.Request{
		Method:   method,
		Path:     "/products/" + p.Slug + "/upvote",
		Priority: coordinator.PriorityHigh,
	}, &out)
	if err != nil {
		p.SetUpvotes(oldCount, wasUp)
		if !apierr.Cancelled(err) {
			e.toast("could not update upvote", err)
		}
		return err
	}

	serverCount, serverFlag := p.UpvoteCount, p.Interactions.HasUpvoted
	if out.Data.UpvoteCount != nil {
		serverCount = *out.Data.UpvoteCount
	}
	if out.Data.HasUpvoted != nil {
		serverFlag = *out.Data.HasUpvoted
	}
	p.SetUpvotes(serverCount, serverFlag)
	return nil
}

// ToggleBookmark is ToggleUpvote for the bookmark flag.
func (e *Engine) ToggleBookmark(ctx context.Context, p *domain.Product) error {
	if _, err := e.requireViewer(); err != nil {
		return err
	}
	p.Normalize()
	was := p.Interactions.HasBookmarked
	oldCount := p.BookmarkCount

	count := oldCount
	if was {
		count--
	} else {
		count++
	}
	p.SetBookmarks(count, !was)

	key := "bookmark:" + p.ID
	if !e.begin(key) {
		return nil
	}
	defer e.end(key)

	method := http.MethodPost
	if was {
		method = http.MethodDelete
	}
	var out interactionPayload
	err := e.coord.DoJSON(ctx, coordinator.Request{
		Method:   method,
		Path:     "/products/" + p.Slug + "/bookmark",
		Priority: coordinator.PriorityHigh,
	}, &out)
	if err != nil {
		p.SetBookmarks(oldCount, was)
		if !apierr.Cancelled(err) {
			e.toast("could not update bookmark", err)
		}
		return err
	}

	serverCount, serverFlag := p.BookmarkCount, p.Interactions.HasBookmarked
	if out.Data.BookmarkCount != nil {
		serverCount = *out.Data.BookmarkCount
	}
	if out.Data.HasBookmarked != nil {
		serverFlag = *out.Data.HasBookmarked
	}
	p.SetBookmarks(serverCount, serverFlag)
	return nil
}

// commentPayload is the upstream reply to comment create/edit calls.
type commentPayload struct {
	Data domain.Comment `json:"data"`
}

// AddComment prepends a provisional top-level comment, posts it, and swaps
// in the server record. On failure the provisional is removed.
func (e *Engine) AddComment(ctx context.Context, t *Thread, content string) (*domain.Comment, error) {
	v, err := e.requireViewer()
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apierr.New(apierr.KindBadRequest, "comment cannot be empty")
	}

	now := e.now()
	provisional := &domain.Comment{
		ID:         uuid.NewString(),
		AuthorID:   v.ID,
		AuthorName: v.Username,
		Content:    content,
		Pending:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	t.mu.Lock()
	t.comments = append([]*domain.Comment{provisional}, t.comments...)
	t.total++
	t.mu.Unlock()

	var out commentPayload
	err = e.coord.DoJSON(ctx, coordinator.Request{
		Method:   http.MethodPost,
		Path:     "/products/" + t.Slug + "/comments",
		Body:     map[string]string{"content": content},
		Priority: coordinator.PriorityHigh,
	}, &out)
	if err != nil {
		t.mu.Lock()
		if _, _, ok := domain.RemoveComment(&t.comments, provisional.ID); ok {
			t.total--
		}
		t.mu.Unlock()
		if !apierr.Cancelled(err) {
			e.toast("could not post comment", err)
		}
		return nil, err
	}

	settled := e.settle(t, provisional, &out.Data)
	return settled, nil
}

// AddReply inserts a provisional reply under parentID and posts it against
// the reply's root comment. Replying to one's own comment is refused before
// any network call.
func (e *Engine) AddReply(ctx context.Context, t *Thread, parentID, content string) (*domain.Comment, error) {
	v, err := e.requireViewer()
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apierr.New(apierr.KindBadRequest, "reply cannot be empty")
	}

	now := e.now()
	provisional := &domain.Comment{
		ID:         uuid.NewString(),
		AuthorID:   v.ID,
		AuthorName: v.Username,
		Content:    content,
		Pending:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	t.mu.Lock()
	parent := domain.FindComment(t.comments, parentID)
	if parent == nil {
		t.mu.Unlock()
		return nil, domain.ErrCommentNotFound
	}
	if parent.AuthorID == v.ID {
		t.mu.Unlock()
		return nil, domain.ErrSelfReply
	}
	if err := domain.InsertReply(t.comments, parentID, provisional); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	rootID := provisional.RootID
	replyTo := ""
	if parentID != rootID {
		replyTo = parentID
	}
	t.mu.Unlock()

	body := map[string]string{"content": content}
	if replyTo != "" {
		body["replyToId"] = replyTo
	}
	var out commentPayload
	err = e.coord.DoJSON(ctx, coordinator.Request{
		Method:   http.MethodPost,
		Path:     "/products/" + t.Slug + "/comments/" + rootID + "/replies",
		Body:     body,
		Priority: coordinator.PriorityHigh,
	}, &out)
	if err != nil {
		t.mu.Lock()
		domain.RemoveComment(&t.comments, provisional.ID)
		t.mu.Unlock()
		if !apierr.Cancelled(err) {
			e.toast("could not post reply", err)
		}
		return nil, err
	}

	settled := e.settle(t, provisional, &out.Data)
	return settled, nil
}

// settle swaps a provisional node for the server record, or clears the
// pending flag when the upstream reply carried no usable record.
func (e *Engine) settle(t *Thread, provisional *domain.Comment, server *domain.Comment) *domain.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	if server.ID == "" {
		provisional.Pending = false
		return provisional
	}
	if server.RootID == "" && !provisional.IsRoot() {
		server.RootID = provisional.RootID
		server.ReplyingToID = provisional.ReplyingToID
	}
	domain.ReplaceComment(t.comments, provisional.ID, server)
	return server
}

// EditComment applies new content locally and patches upstream. The prior
// content comes back on failure.
func (e *Engine) EditComment(ctx context.Context, t *Thread, id, content string) (*domain.Comment, error) {
	v, err := e.requireViewer()
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apierr.New(apierr.KindBadRequest, "comment cannot be empty")
	}

	t.mu.Lock()
	node := domain.FindComment(t.comments, id)
	if node == nil {
		t.mu.Unlock()
		return nil, domain.ErrCommentNotFound
	}
	if node.AuthorID != v.ID {
		t.mu.Unlock()
		return nil, apierr.New(apierr.KindForbidden, "not the author")
	}
	oldContent, oldUpdated := node.Content, node.UpdatedAt
	node.Content = content
	node.UpdatedAt = e.now()
	isRoot := node.IsRoot()
	t.mu.Unlock()

	var out commentPayload
	err = e.coord.DoJSON(ctx, coordinator.Request{
		Method:   http.MethodPatch,
		Path:     commentPath(t.Slug, id, isRoot),
		Body:     map[string]string{"content": content},
		Priority: coordinator.PriorityHigh,
	}, &out)
	if err != nil {
		t.mu.Lock()
		node.Content = oldContent
		node.UpdatedAt = oldUpdated
		t.mu.Unlock()
		if !apierr.Cancelled(err) {
			e.toast("could not save changes", err)
		}
		return nil, err
	}

	settled := e.settle(t, node, &out.Data)
	return settled, nil
}

// DeleteComment removes the subtree locally and deletes upstream. A 404 from
// upstream is success; any other failure reinserts the subtree where it was.
func (e *Engine) DeleteComment(ctx context.Context, t *Thread, id string) error {
	v, err := e.requireViewer()
	if err != nil {
		return err
	}

	t.mu.Lock()
	node := domain.FindComment(t.comments, id)
	if node == nil {
		t.mu.Unlock()
		return domain.ErrCommentNotFound
	}
	if node.AuthorID != v.ID {
		t.mu.Unlock()
		return apierr.New(apierr.KindForbidden, "not the author")
	}
	isRoot := node.IsRoot()
	removed, at, _ := domain.RemoveComment(&t.comments, id)
	if isRoot {
		t.total--
	}
	t.mu.Unlock()

	err = e.coord.DoJSON(ctx, coordinator.Request{
		Method:   http.MethodDelete,
		Path:     commentPath(t.Slug, id, isRoot),
		Priority: coordinator.PriorityHigh,
	}, nil)
	if err != nil {
		if apierr.IsKind(err, apierr.KindNotFound) {
			// Already gone upstream. The local removal stands.
			return nil
		}
		t.mu.Lock()
		domain.ReinsertComment(&t.comments, removed.ReplyingToID, removed, at)
		if isRoot {
			t.total++
		}
		t.mu.Unlock()
		if !apierr.Cancelled(err) {
			e.toast("could not delete comment", err)
		}
		return err
	}
	return nil
}

// ToggleLike flips the viewer's like on a comment or reply.
func (e *Engine) ToggleLike(ctx context.Context, t *Thread, id string) error {
	if _, err := e.requireViewer(); err != nil {
		return err
	}

	t.mu.Lock()
	node := domain.FindComment(t.comments, id)
	if node == nil {
		t.mu.Unlock()
		return domain.ErrCommentNotFound
	}
	wasLiked := node.Likes.ViewerLiked
	oldCount := node.Likes.Count
	count := oldCount
	if wasLiked {
		count--
	} else {
		count++
	}
	if count < 0 {
		count = 0
	}
	node.Likes = domain.Likes{Count: count, ViewerLiked: !wasLiked}
	isRoot := node.IsRoot()
	rootID := node.RootID
	t.mu.Unlock()

	key := "like:" + id
	if !e.begin(key) {
		return nil
	}
	defer e.end(key)

	method := http.MethodPost
	if wasLiked {
		method = http.MethodDelete
	}
	var body any
	if !isRoot {
		body = map[string]string{"rootId": rootID}
	}
	var out interactionPayload
	err := e.coord.DoJSON(ctx, coordinator.Request{
		Method:   method,
		Path:     commentPath(t.Slug, id, isRoot) + "/like",
		Body:     body,
		Priority: coordinator.PriorityHigh,
	}, &out)
	if err != nil {
		t.mu.Lock()
		node.Likes = domain.Likes{Count: oldCount, ViewerLiked: wasLiked}
		t.mu.Unlock()
		if !apierr.Cancelled(err) {
			e.toast("could not update like", err)
		}
		return err
	}

	if out.Data.Likes != nil {
		t.mu.Lock()
		node.Likes = domain.Likes{Count: out.Data.Likes.Count, ViewerLiked: out.Data.Likes.ViewerLiked}
		t.mu.Unlock()
	}
	return nil
}

func commentPath(slug, id string, isRoot bool) string {
	if isRoot {
		return "/products/" + slug + "/comments/" + id
	}
	return "/products/" + slug + "/replies/" + id
}
