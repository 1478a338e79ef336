package cart

import (
	"sync"
	"time"
)

type session struct {
	cart     *Store
	wishlist *Wishlist
	lastSeen time.Time
}

// Registry owns the cart and wishlist of every shopper session and tracks
// when each session was last touched.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session

	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session), now: time.Now}
}

func (r *Registry) touch(sessionID string) *session {
	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{cart: NewStore(), wishlist: NewWishlist()}
		r.sessions[sessionID] = s
	}
	s.lastSeen = r.now()
	return s
}

// Get returns the session's cart, creating an empty one on first use.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touch(sessionID).cart
}

// Wishlist returns the session's wishlist, creating an empty one on first use.
func (r *Registry) Wishlist(sessionID string) *Wishlist {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touch(sessionID).wishlist
}

// IdleSince lists sessions not touched since cutoff.
func (r *Registry) IdleSince(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Forget drops the session's cart and wishlist.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}
