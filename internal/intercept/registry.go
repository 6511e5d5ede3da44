package intercept

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds the pending lookups and minted asset ids shared by every
// exchange. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	pending  map[string]string
	assets   map[string]string
	minted   int
	redeemed int
	newID    func() string
}

// Stats is a point-in-time view of a Registry.
type Stats struct {
	Pending     int
	Outstanding int
	Minted      int
	Redeemed    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[string]string),
		assets:  make(map[string]string),
		newID:   uuid.NewString,
	}
}

// AddPending records that the exchange identified by token resolved to itemID.
func (r *Registry) AddPending(token, itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[token] = itemID
}

// TakePending removes and returns the pending lookup for token.
func (r *Registry) TakePending(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	itemID, ok := r.pending[token]
	if ok {
		delete(r.pending, token)
	}
	return itemID, ok
}

// Mint returns a new asset id mapped to itemID.
func (r *Registry) Mint(itemID string) string {
	id := r.newID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[id] = itemID
	r.minted++
	return id
}

// Resolve returns the item an outstanding asset id stands for.
func (r *Registry) Resolve(assetID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	itemID, ok := r.assets[assetID]
	return itemID, ok
}

// Redeem retires assetID after its archive has been served. It reports
// whether the id was still outstanding.
func (r *Registry) Redeem(assetID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[assetID]; !ok {
		return false
	}
	delete(r.assets, assetID)
	r.redeemed++
	return true
}

// Forget drops assetID without counting it as redeemed.
func (r *Registry) Forget(assetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[assetID]; ok {
		delete(r.assets, assetID)
		r.minted--
	}
}

// Stats reports the registry sizes.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Pending:     len(r.pending),
		Outstanding: len(r.assets),
		Minted:      r.minted,
		Redeemed:    r.redeemed,
	}
}

// Close drops every pending lookup and outstanding asset id.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[string]string)
	r.assets = make(map[string]string)
}
