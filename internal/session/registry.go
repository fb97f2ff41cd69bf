package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/dedup"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/listctl"
	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/mutate"
)

// Header carries the session id between browser and gateway.
const Header = "X-Bazar-Session"

// Options tunes sessions created by a Registry.
type Options struct {
	Upstream     coordinator.Options // template; the Client is shared across sessions
	SeenCapacity int                 // dedup LRU size, default dedup.DefaultCapacity
}

// Registry owns the session map. Each session gets its own coordinator so
// token, in-flight dedup and admission stay per browser, the way a browser
// would schedule its own requests; the HTTP client and its connection pool
// are shared.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	opts   Options
	client *http.Client
	log    logger.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(opts Options, log logger.Logger) *Registry {
	if opts.SeenCapacity <= 0 {
		opts.SeenCapacity = dedup.DefaultCapacity
	}
	client := opts.Upstream.Client
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		client:   client,
		log:      log,
	}
}

// Get returns the session for id without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Ensure returns the session for id, creating it when missing. An empty id
// gets a fresh uuid.
func (r *Registry) Ensure(id string) *Session {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s
		}
	} else {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}

	upstream := r.opts.Upstream
	upstream.Client = r.client
	tokens := coordinator.NewTokenHolder()
	coord := coordinator.New(upstream, tokens, r.log)

	s := &Session{
		ID:           id,
		Coordinator:  coord,
		Seen:         dedup.NewTracker(r.opts.SeenCapacity),
		lastSeen:     time.Now(),
		productLists: make(map[string]*listctl.Controller[domain.Product]),
		jobLists:     make(map[string]*listctl.Controller[domain.Job]),
		threads:      make(map[string]*mutate.Thread),
	}
	s.Engine = mutate.New(coord, s.Viewer, s.PushEvent, r.log)
	r.sessions[id] = s

	r.log.Debug("session created", logger.String("session", id))
	return s
}

// Remove drops the session and releases its controllers.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.close()
	}
}

// SweepIdle removes every session idle for longer than ttl and returns the
// removed ids so callers can drop their persisted keys too.
func (r *Registry) SweepIdle(ttl time.Duration) []string {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	var removed []string
	var closing []*Session
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			removed = append(removed, id)
			closing = append(closing, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range closing {
		s.close()
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
