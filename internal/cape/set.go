package cape

import "sync"

// Set is a read-mostly index of definitions keyed by item identifier.
// It is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	byID  map[string]Definition
	order []string
}

// NewSet indexes defs. Later duplicates replace earlier ones.
func NewSet(defs []Definition) *Set {
	s := &Set{byID: make(map[string]Definition, len(defs))}
	s.Replace(defs)
	return s
}

// Replace swaps the whole index.
func (s *Set) Replace(defs []Definition) {
	byID := make(map[string]Definition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		if _, seen := byID[def.ItemID]; !seen {
			order = append(order, def.ItemID)
		}
		byID[def.ItemID] = def
	}
	s.mu.Lock()
	s.byID = byID
	s.order = order
	s.mu.Unlock()
}

// Find returns the definition for itemID.
func (s *Set) Find(itemID string) (Definition, bool) {
	if s == nil || itemID == "" {
		return Definition{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.byID[itemID]
	return def, ok
}

// All returns the definitions in insertion order.
func (s *Set) All() []Definition {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Definition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len reports the number of indexed definitions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
