// internal/snapshot/key_test.go
package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

func ptr(v int64) *int64 { return &v }

func buildSnap(t *testing.T, nodes []*schemas.Node) *schemas.Snapshot {
	t.Helper()
	snap, err := snapshot.Build("", nodes, schemas.Viewport{Width: 1280, Height: 800})
	require.NoError(t, err)
	return snap
}

func TestKeyMapPrefersBackendID(t *testing.T) {
	snap := buildSnap(t, []*schemas.Node{
		{ID: 1, Tag: "html", Type: schemas.NodeTypeElement, ChildIDs: []int64{2}},
		{ID: 2, Tag: "button", Type: schemas.NodeTypeElement, BackendID: 77, ParentID: ptr(1), Depth: 1},
	})

	byKey, byID := snapshot.KeyMap(snap)
	assert.Equal(t, "b:77", byID[2])
	assert.Same(t, snap.NodeMap[2], byKey["b:77"])
}

func TestKeyMapStableAcrossCapturesWithDifferentIDs(t *testing.T) {
	build := func(offset int64) *schemas.Snapshot {
		return buildSnap(t, []*schemas.Node{
			{ID: offset + 1, Tag: "html", Type: schemas.NodeTypeElement, ChildIDs: []int64{offset + 2}},
			{ID: offset + 2, Tag: "button", Type: schemas.NodeTypeElement,
				Attributes: map[string]string{"id": "save"}, ParentID: ptr(offset + 1), Depth: 1},
		})
	}

	_, first := snapshot.KeyMap(build(0))
	_, second := snapshot.KeyMap(build(100))
	assert.Equal(t, first[2], second[102])
}

func TestKeyMapDisambiguatesIdenticalSiblings(t *testing.T) {
	snap := buildSnap(t, []*schemas.Node{
		{ID: 1, Tag: "ul", Type: schemas.NodeTypeElement, ChildIDs: []int64{2, 3, 4}},
		{ID: 2, Tag: "li", Type: schemas.NodeTypeElement, ParentID: ptr(1), Depth: 1},
		{ID: 3, Tag: "li", Type: schemas.NodeTypeElement, ParentID: ptr(1), Depth: 1},
		{ID: 4, Tag: "li", Type: schemas.NodeTypeElement, ParentID: ptr(1), Depth: 1},
	})

	byKey, byID := snapshot.KeyMap(snap)
	require.Len(t, byKey, 4)

	seen := map[string]bool{}
	for _, id := range []int64{2, 3, 4} {
		key := byID[id]
		assert.False(t, seen[key], "siblings must not share a key")
		seen[key] = true
	}
	// Ordinal suffixes are deterministic by traversal order.
	assert.Equal(t, byID[2]+"~2", byID[3])
	assert.Equal(t, byID[2]+"~3", byID[4])
}

func TestBuildRejectsBrokenTrees(t *testing.T) {
	_, err := snapshot.Build("x", []*schemas.Node{
		{ID: 1, Tag: "html", Type: schemas.NodeTypeElement},
		{ID: 1, Tag: "body", Type: schemas.NodeTypeElement, ParentID: ptr(1)},
	}, schemas.Viewport{})
	assert.Error(t, err, "duplicate ids")

	_, err = snapshot.Build("x", []*schemas.Node{
		{ID: 1, Tag: "html", Type: schemas.NodeTypeElement},
		{ID: 2, Tag: "div", Type: schemas.NodeTypeElement, ParentID: ptr(9)},
	}, schemas.Viewport{})
	assert.Error(t, err, "missing parent")

	_, err = snapshot.Build("x", []*schemas.Node{
		{ID: 1, Tag: "html", Type: schemas.NodeTypeElement},
		{ID: 2, Tag: "div", Type: schemas.NodeTypeElement},
	}, schemas.Viewport{})
	assert.Error(t, err, "two roots")
}
