package tracking

import (
	"sync"
)

// ProcessedSet tracks which firings a single request has already handled, so
// a template rendered twice in one page build fires its events once. The set
// lives and dies with the request; nothing persists across requests.
type ProcessedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{
		seen: make(map[string]struct{}),
	}
}

// MarkProcessed records the key and reports whether this was its first
// occurrence.
func (s *ProcessedSet) MarkProcessed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Seen reports whether the key was already processed without marking it.
func (s *ProcessedSet) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[key]
	return ok
}

func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen)
}
