package session

import (
	"context"
	"sync"
)

// Store is the document-per-session persistence contract: create, point
// read, closure-based update and a change subscription. Lookups are always
// by session token; no query surface is needed.
type Store interface {
	Create(ctx context.Context, s *GameSession) error
	Get(ctx context.Context, id string) (*GameSession, error)
	// Update applies mutate to the current document atomically and
	// notifies watchers with the committed state. If mutate errors the
	// document is left unchanged.
	Update(ctx context.Context, id string, mutate func(*GameSession) error) (*GameSession, error)
	// Watch registers a listener for every committed change to one
	// session. The returned func cancels the subscription.
	Watch(id string, fn func(*GameSession)) (cancel func())
}

// hub fans committed documents out to watchers. Notifications for a single
// session are serialized, which preserves the only ordering the protocol
// promises: writes from one writer are observed in commit order.
type hub struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	watchers map[string]map[int]func(*GameSession)
	next     int
}

func newHub() *hub {
	return &hub{watchers: make(map[string]map[int]func(*GameSession))}
}

func (h *hub) watch(id string, fn func(*GameSession)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	token := h.next
	if h.watchers[id] == nil {
		h.watchers[id] = make(map[int]func(*GameSession))
	}
	h.watchers[id][token] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.watchers[id], token)
	}
}

func (h *hub) notify(s *GameSession) {
	h.mu.Lock()
	fns := make([]func(*GameSession), 0, len(h.watchers[s.SessionID]))
	for _, fn := range h.watchers[s.SessionID] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()
	for _, fn := range fns {
		fn(s.Clone())
	}
}
