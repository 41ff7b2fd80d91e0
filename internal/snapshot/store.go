// internal/snapshot/store.go
package snapshot

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// ErrBaselineNotFound is returned when an explicit snapshot id was requested
// for diffing but the entry has been evicted or never existed. It is a named,
// recoverable condition: callers should re-capture and establish a new
// baseline rather than treat it as a failure.
var ErrBaselineNotFound = errors.New("baseline snapshot not found")

const (
	// DefaultCapacity is the per-tab retention limit; the oldest entry is
	// evicted first (FIFO) once exceeded.
	DefaultCapacity = 5
	// DefaultMaxAge is the expiry window after which a stored snapshot is
	// treated as absent. Expiry is checked lazily on access and
	// opportunistically on every Put, so no scheduler is required.
	DefaultMaxAge = 5 * time.Minute
)

// StoredSnapshot wraps a Snapshot with its store time and owning tab.
type StoredSnapshot struct {
	Snapshot  *schemas.Snapshot
	TabID     string
	Timestamp time.Time
}

// Store is the time-windowed cache of past snapshots per logical tab.
// It answers "the baseline to diff against for tab T" as a tail read, and
// explicit snapshot-id lookups for callers that pinned a baseline earlier.
type Store struct {
	mu       sync.Mutex
	perTab   map[string][]*StoredSnapshot
	byID     map[string]*StoredSnapshot
	capacity int
	maxAge   time.Duration
	log      *zap.Logger
	// now is swappable for expiry tests.
	now func() time.Time
}

// NewStore creates a store with the given per-tab capacity and expiry window.
// Zero values fall back to the defaults.
func NewStore(capacity int, maxAge time.Duration, logger *zap.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		perTab:   make(map[string][]*StoredSnapshot),
		byID:     make(map[string]*StoredSnapshot),
		capacity: capacity,
		maxAge:   maxAge,
		log:      logger.Named("snapshot-store"),
		now:      time.Now,
	}
}

// Put appends a snapshot to the tab's list and indexes it by snapshot id.
// If the list exceeds capacity the oldest entry is evicted from both the list
// and the index. Expired entries for the tab are swept as a side effect.
func (s *Store) Put(tabID string, snap *schemas.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepTabLocked(tabID)

	entry := &StoredSnapshot{Snapshot: snap, TabID: tabID, Timestamp: s.now()}
	list := append(s.perTab[tabID], entry)
	s.byID[snap.ID] = entry

	for len(list) > s.capacity {
		evicted := list[0]
		list = list[1:]
		delete(s.byID, evicted.Snapshot.ID)
		s.log.Debug("evicted snapshot over capacity",
			zap.String("tab_id", tabID),
			zap.String("snapshot_id", evicted.Snapshot.ID))
	}
	s.perTab[tabID] = list
}

// PreviousForTab returns the most recent non-expired snapshot for the tab, or
// nil if nothing valid remains. Expired entries are lazily evicted.
func (s *Store) PreviousForTab(tabID string) *StoredSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepTabLocked(tabID)
	list := s.perTab[tabID]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// BySnapshotID is a direct index lookup, independent of age, valid until the
// entry is evicted by capacity pressure.
func (s *Store) BySnapshotID(id string) (*StoredSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return nil, ErrBaselineNotFound
	}
	return entry, nil
}

// AllForTab returns the tab's retained snapshots oldest first, trimming
// expired entries as a side effect.
func (s *Store) AllForTab(tabID string) []*StoredSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepTabLocked(tabID)
	list := s.perTab[tabID]
	out := make([]*StoredSnapshot, len(list))
	copy(out, list)
	return out
}

// DropTab removes all entries for the tab, e.g. on navigation.
func (s *Store) DropTab(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.perTab[tabID] {
		delete(s.byID, entry.Snapshot.ID)
	}
	delete(s.perTab, tabID)
}

// sweepTabLocked removes expired entries for one tab. Caller holds s.mu.
func (s *Store) sweepTabLocked(tabID string) {
	list := s.perTab[tabID]
	if len(list) == 0 {
		return
	}
	cutoff := s.now().Add(-s.maxAge)
	remaining := list[:0:0]
	for _, entry := range list {
		if entry.Timestamp.After(cutoff) {
			remaining = append(remaining, entry)
		} else {
			delete(s.byID, entry.Snapshot.ID)
			s.log.Debug("expired snapshot",
				zap.String("tab_id", tabID),
				zap.String("snapshot_id", entry.Snapshot.ID))
		}
	}
	if len(remaining) == 0 {
		delete(s.perTab, tabID)
		return
	}
	s.perTab[tabID] = remaining
}
