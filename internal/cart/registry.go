package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps session ids to their carts. Sessions are identified by a
// uuid carried in a cookie; carts live only for the lifetime of the process,
// matching the session-local design of the storefront.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// NewSession allocates a fresh session id with an empty cart.
func (r *Registry) NewSession() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.stores[id] = NewStore()
	r.mu.Unlock()
	return id
}

// Get returns the cart for the session, creating it if the id is unknown
// (e.g. the process restarted since the cookie was issued).
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[sessionID]
	if !ok {
		s = NewStore()
		r.stores[sessionID] = s
	}
	return s
}

// Drop discards the session's cart.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.stores, sessionID)
	r.mu.Unlock()
}
