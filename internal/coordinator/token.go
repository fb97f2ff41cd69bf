package coordinator

import "sync"

// TokenHolder is the shared access-token slot. The coordinator reads it on
// every call; only the auth surface writes it.
type TokenHolder struct {
	mu    sync.RWMutex
	token string
}

func NewTokenHolder() *TokenHolder { return &TokenHolder{} }

func (h *TokenHolder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *TokenHolder) Set(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

func (h *TokenHolder) Clear() { h.Set("") }
