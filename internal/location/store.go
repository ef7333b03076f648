package location

import "sync"

// Fix is the latest GPS fix for a session. Last-write-wins per session id;
// no history is kept.
type Fix struct {
	SessionID   string  `json:"session_id"`
	Lat         float64 `json:"latitude"`
	Lng         float64 `json:"longitude"`
	TimestampMs int64   `json:"timestamp"`
}

// Store keeps the most recent fix per session id.
type Store struct {
	mu    sync.RWMutex
	fixes map[string]Fix
}

func NewStore() *Store {
	return &Store{fixes: map[string]Fix{}}
}

// Put overwrites the stored fix for the fix's session id.
func (s *Store) Put(f Fix) {
	s.mu.Lock()
	s.fixes[f.SessionID] = f
	s.mu.Unlock()
}

// Get returns the latest fix for id.
func (s *Store) Get(id string) (Fix, bool) {
	s.mu.RLock()
	f, ok := s.fixes[id]
	s.mu.RUnlock()
	return f, ok
}

// Drop removes the fix for id. Idempotent.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	delete(s.fixes, id)
	s.mu.Unlock()
}

// All returns a copy of every stored fix.
func (s *Store) All() []Fix {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Fix, 0, len(s.fixes))
	for _, f := range s.fixes {
		out = append(out, f)
	}
	return out
}
