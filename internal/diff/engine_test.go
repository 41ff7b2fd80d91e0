// internal/diff/engine_test.go
package diff_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/diff"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

func ptr(v int64) *int64 { return &v }

func buildSnap(t *testing.T, nodes []*schemas.Node) *schemas.Snapshot {
	t.Helper()
	snap, err := snapshot.Build("", nodes, schemas.Viewport{Width: 1280, Height: 800})
	require.NoError(t, err)
	return snap
}

// page builds the little two-button fixture; mutate lets a test tweak the
// second capture before it is assembled.
func page(t *testing.T, mutate func(nodes []*schemas.Node)) *schemas.Snapshot {
	nodes := []*schemas.Node{
		{ID: 1, Tag: "html", Type: schemas.NodeTypeElement, ChildIDs: []int64{2}},
		{ID: 2, Tag: "body", Type: schemas.NodeTypeElement, ParentID: ptr(1), Depth: 1, ChildIDs: []int64{3, 4}},
		{ID: 3, Tag: "button", Type: schemas.NodeTypeElement, ParentID: ptr(2), Depth: 2,
			Attributes: map[string]string{"id": "save"}, Text: "Save", Visible: true, InViewport: true,
			Layout: &schemas.Layout{X: 10, Y: 10, Width: 100, Height: 40}},
		{ID: 4, Tag: "button", Type: schemas.NodeTypeElement, ParentID: ptr(2), Depth: 2,
			Attributes: map[string]string{"id": "cancel"}, Text: "Cancel", Visible: true, InViewport: true,
			Layout: &schemas.Layout{X: 120, Y: 10, Width: 100, Height: 40}},
	}
	if mutate != nil {
		mutate(nodes)
	}
	return buildSnap(t, nodes)
}

func TestCompareIdenticalPagesIsEmpty(t *testing.T) {
	result := diff.Compare(page(t, nil), page(t, nil))
	assert.True(t, result.Empty())
	assert.Equal(t, schemas.DiffCounts{}, result.RawCounts)
	assert.False(t, result.NoBaseline)
}

func TestCompareDetectsAddedAndRemoved(t *testing.T) {
	prev := page(t, nil)
	curr := page(t, func(nodes []*schemas.Node) {
		// Replace the cancel button with a link.
		nodes[3] = &schemas.Node{ID: 4, Tag: "a", Type: schemas.NodeTypeElement, ParentID: ptr(2), Depth: 2,
			Attributes: map[string]string{"id": "help"}, Text: "Help", Visible: true, InViewport: true}
	})

	result := diff.Compare(prev, curr)
	require.Len(t, result.Added, 1)
	require.Len(t, result.Removed, 1)
	assert.Empty(t, result.Modified)
	assert.Equal(t, "a", result.Added[0].Tag)
	assert.Equal(t, "button", result.Removed[0].Tag)
	assert.Equal(t, schemas.DiffCounts{Added: 1, Removed: 1}, result.RawCounts)
}

func TestCompareLayoutJitterTolerance(t *testing.T) {
	prev := page(t, nil)

	withinTolerance := page(t, func(nodes []*schemas.Node) {
		nodes[2].Layout = &schemas.Layout{X: 11, Y: 9, Width: 100.5, Height: 40}
	})
	assert.True(t, diff.Compare(prev, withinTolerance).Empty(),
		"sub-pixel movement must not produce records")

	beyondTolerance := page(t, func(nodes []*schemas.Node) {
		nodes[2].Layout = &schemas.Layout{X: 12, Y: 10, Width: 100, Height: 40}
	})
	result := diff.Compare(prev, beyondTolerance)
	require.Len(t, result.Modified, 1)
	assert.Contains(t, result.Modified[0].Fields, schemas.FieldLayout)
}

func TestCompareLayoutAppearing(t *testing.T) {
	prev := page(t, func(nodes []*schemas.Node) { nodes[2].Layout = nil })
	curr := page(t, nil)

	result := diff.Compare(prev, curr)
	require.Len(t, result.Modified, 1)
	assert.Contains(t, result.Modified[0].Fields, schemas.FieldLayout)
}

func TestCompareFieldChanges(t *testing.T) {
	prev := page(t, nil)
	curr := page(t, func(nodes []*schemas.Node) {
		nodes[2].Text = "Saving…"
		nodes[2].Visible = false
		nodes[2].Attributes = map[string]string{"id": "save", "disabled": "", "aria-busy": "true"}
	})

	result := diff.Compare(prev, curr)
	require.Len(t, result.Modified, 1)
	fields := result.Modified[0].Fields

	assert.Contains(t, fields, schemas.FieldText)
	assert.Contains(t, fields, schemas.FieldVisibility)
	require.Contains(t, fields, schemas.FieldAttributes)

	attrChange, ok := fields[schemas.FieldAttributes].New.(schemas.AttributeChange)
	require.True(t, ok)
	want := schemas.AttributeChange{
		Added: map[string]string{"disabled": "", "aria-busy": "true"},
	}
	if d := cmp.Diff(want, attrChange); d != "" {
		t.Errorf("attribute change mismatch (-want +got):\n%s", d)
	}
}

func TestCompareLabelTruncatesOnRuneBoundary(t *testing.T) {
	prev := page(t, nil)
	curr := page(t, func(nodes []*schemas.Node) {
		nodes[2].Text = strings.Repeat("é", 80)
	})

	result := diff.Compare(prev, curr)
	require.Len(t, result.Modified, 1)

	label := result.Modified[0].Label
	assert.True(t, utf8.ValidString(label), "label must not split a rune: %q", label)
	assert.True(t, strings.HasSuffix(label, "…"))
	assert.Equal(t, 61, utf8.RuneCountInString(label))
}

func TestCompareSurvivesNodeIDChurn(t *testing.T) {
	prev := page(t, nil)
	// Same logical page, every node id shifted.
	curr := buildSnap(t, []*schemas.Node{
		{ID: 11, Tag: "html", Type: schemas.NodeTypeElement, ChildIDs: []int64{12}},
		{ID: 12, Tag: "body", Type: schemas.NodeTypeElement, ParentID: ptr(11), Depth: 1, ChildIDs: []int64{13, 14}},
		{ID: 13, Tag: "button", Type: schemas.NodeTypeElement, ParentID: ptr(12), Depth: 2,
			Attributes: map[string]string{"id": "save"}, Text: "Save", Visible: true, InViewport: true,
			Layout: &schemas.Layout{X: 10, Y: 10, Width: 100, Height: 40}},
		{ID: 14, Tag: "button", Type: schemas.NodeTypeElement, ParentID: ptr(12), Depth: 2,
			Attributes: map[string]string{"id": "cancel"}, Text: "Cancel", Visible: true, InViewport: true,
			Layout: &schemas.Layout{X: 120, Y: 10, Width: 100, Height: 40}},
	})

	assert.True(t, diff.Compare(prev, curr).Empty(),
		"id churn alone must not register as change")
}

func TestFilterForDisplayPreservesRawCounts(t *testing.T) {
	prev := page(t, nil)
	// Second capture: the save button's text changed and a non-interactive
	// status div appeared.
	curr := buildSnap(t, []*schemas.Node{
		{ID: 1, Tag: "html", Type: schemas.NodeTypeElement, ChildIDs: []int64{2}},
		{ID: 2, Tag: "body", Type: schemas.NodeTypeElement, ParentID: ptr(1), Depth: 1, ChildIDs: []int64{3, 4, 5}},
		{ID: 3, Tag: "button", Type: schemas.NodeTypeElement, ParentID: ptr(2), Depth: 2,
			Attributes: map[string]string{"id": "save"}, Text: "Saved", Visible: true, InViewport: true,
			Layout: &schemas.Layout{X: 10, Y: 10, Width: 100, Height: 40}},
		{ID: 4, Tag: "button", Type: schemas.NodeTypeElement, ParentID: ptr(2), Depth: 2,
			Attributes: map[string]string{"id": "cancel"}, Text: "Cancel", Visible: true, InViewport: true,
			Layout: &schemas.Layout{X: 120, Y: 10, Width: 100, Height: 40}},
		{ID: 5, Tag: "div", Type: schemas.NodeTypeElement, ParentID: ptr(2), Depth: 2,
			Text: "status", Visible: true},
	})

	raw := diff.Compare(prev, curr)
	rawTotal := raw.RawCounts.Total()
	require.Greater(t, rawTotal, 1)

	interactiveOnly := func(_ *schemas.Snapshot, n *schemas.Node) bool {
		return n.Tag == "button"
	}
	filtered := diff.FilterForDisplay(raw, interactiveOnly, prev, curr)

	assert.Equal(t, rawTotal, filtered.RawCounts.Total(), "raw counts must survive filtering")
	assert.Less(t, filtered.FilteredCounts.Total(), rawTotal)
	for _, rec := range filtered.Added {
		assert.Equal(t, "button", rec.Tag)
	}
}
