// internal/snapshot/store_test.go
package snapshot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

func snapWithID(t *testing.T, id string) *schemas.Snapshot {
	t.Helper()
	snap, err := Build(id, nil, schemas.Viewport{Width: 1280, Height: 800})
	require.NoError(t, err)
	return snap
}

func TestStorePutAndPrevious(t *testing.T) {
	s := NewStore(0, 0, nil)

	assert.Nil(t, s.PreviousForTab("tab-1"))

	s.Put("tab-1", snapWithID(t, "s1"))
	s.Put("tab-1", snapWithID(t, "s2"))

	prev := s.PreviousForTab("tab-1")
	require.NotNil(t, prev)
	assert.Equal(t, "s2", prev.Snapshot.ID)

	// Other tabs are isolated.
	assert.Nil(t, s.PreviousForTab("tab-2"))
}

func TestStoreEvictsOldestOverCapacity(t *testing.T) {
	s := NewStore(5, time.Hour, nil)

	for i := 1; i <= 6; i++ {
		s.Put("tab-1", snapWithID(t, fmt.Sprintf("s%d", i)))
	}

	list := s.AllForTab("tab-1")
	require.Len(t, list, 5)
	assert.Equal(t, "s2", list[0].Snapshot.ID)
	assert.Equal(t, "s6", list[4].Snapshot.ID)

	// The evicted snapshot is also gone from the id index.
	_, err := s.BySnapshotID("s1")
	assert.ErrorIs(t, err, ErrBaselineNotFound)

	got, err := s.BySnapshotID("s6")
	require.NoError(t, err)
	assert.Equal(t, "s6", got.Snapshot.ID)
}

func TestStoreExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := NewStore(5, 5*time.Minute, nil)
	s.now = func() time.Time { return now }

	s.Put("tab-1", snapWithID(t, "old"))

	// One millisecond before expiry the snapshot is still served.
	now = now.Add(5*time.Minute - time.Millisecond)
	prev := s.PreviousForTab("tab-1")
	require.NotNil(t, prev)
	assert.Equal(t, "old", prev.Snapshot.ID)

	// At the expiry boundary it is treated as absent.
	now = now.Add(time.Millisecond)
	assert.Nil(t, s.PreviousForTab("tab-1"))
	assert.Empty(t, s.AllForTab("tab-1"))
}

func TestStoreDropTab(t *testing.T) {
	s := NewStore(5, time.Hour, nil)
	s.Put("tab-1", snapWithID(t, "s1"))
	s.Put("tab-2", snapWithID(t, "s2"))

	s.DropTab("tab-1")

	assert.Nil(t, s.PreviousForTab("tab-1"))
	_, err := s.BySnapshotID("s1")
	assert.ErrorIs(t, err, ErrBaselineNotFound)

	// The other tab is untouched.
	prev := s.PreviousForTab("tab-2")
	require.NotNil(t, prev)
	assert.Equal(t, "s2", prev.Snapshot.ID)
}
