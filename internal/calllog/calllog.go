package calllog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/storage"
	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

// MaxEntries caps the call log; inserting beyond it evicts the oldest entries.
const MaxEntries = 100

// CallLog is a bounded, newest-first history of call lifecycle entries.
// Entries are held in memory and written through to the backing store on
// every mutation; a store failure degrades to a logged, lost write.
type CallLog struct {
	entries []types.CallLogEntry
	store   storage.Store
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// New creates a call log seeded from the backing store. An unreadable or
// corrupt store reads as empty rather than failing startup.
func New(store storage.Store, logger zerolog.Logger) *CallLog {
	l := &CallLog{
		store:  store,
		logger: logger.With().Str("component", "calllog").Logger(),
	}

	entries, err := store.Read()
	if err != nil {
		l.logger.Warn().Err(err).Msg("call log unreadable, starting empty")
		entries = nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	l.entries = entries

	return l
}

// Append inserts entry at the front, evicting the oldest entries beyond the cap
func (l *CallLog) Append(entry types.CallLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]types.CallLogEntry{entry}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	l.flushLocked()
}

// Resolve updates the most recent entry for sid with the staff decision.
// When no entry exists for sid (a resolution reported for a call whose
// placement was never logged), a fresh entry is appended instead.
func (l *CallLog) Resolve(sid string, accepted bool, resolvedAt time.Time, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].SID == sid {
			l.entries[i].Resolution = types.ResolutionFor(accepted)
			l.entries[i].Accepted = &accepted
			l.entries[i].ResolvedAt = resolvedAt.UTC().Format(time.RFC3339)
			l.flushLocked()
			return
		}
	}

	entry := types.CallLogEntry{
		SID:        sid,
		Resolution: types.ResolutionFor(accepted),
		Accepted:   &accepted,
		Time:       resolvedAt.UTC().Format(time.RFC3339),
		ResolvedAt: resolvedAt.UTC().Format(time.RFC3339),
		Source:     source,
	}
	l.entries = append([]types.CallLogEntry{entry}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	l.flushLocked()
}

// List returns a copy of the entries, newest first
func (l *CallLog) List() []types.CallLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.CallLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the current number of entries
func (l *CallLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// flushLocked writes the current entries through to the store. Callers must
// hold the write lock. A write failure loses the flush but never propagates.
func (l *CallLog) flushLocked() {
	if err := l.store.Write(l.entries); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist call log")
	}
}
