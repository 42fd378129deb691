package dispatch

import "sync"

// ResolutionTracker enforces at-most-one resolution per call SID. Claimed
// SIDs stay claimed for the life of the process; the set is never pruned.
type ResolutionTracker struct {
	resolved map[string]struct{}
	mu       sync.Mutex
}

// NewResolutionTracker creates an empty tracker
func NewResolutionTracker() *ResolutionTracker {
	return &ResolutionTracker{
		resolved: make(map[string]struct{}),
	}
}

// Claim atomically marks sid as resolved. It returns true for exactly one
// caller per sid; every later or concurrent caller gets false.
func (t *ResolutionTracker) Claim(sid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.resolved[sid]; ok {
		return false
	}
	t.resolved[sid] = struct{}{}
	return true
}

// Resolved reports whether sid has already been claimed
func (t *ResolutionTracker) Resolved(sid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.resolved[sid]
	return ok
}

// Count returns the number of claimed SIDs
func (t *ResolutionTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.resolved)
}
