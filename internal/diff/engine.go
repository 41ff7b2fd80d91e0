// internal/diff/engine.go

// Package diff computes added/removed/modified sets between two snapshots of
// the same logical tab. Per-capture node ids are not stable, so nodes are
// matched through the deterministic stable keys from the snapshot package;
// object identity is never used. Construction and comparison are both O(n).
package diff

import (
	"math"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

// layoutTolerancePx absorbs sub-pixel rendering jitter: a dimension counts as
// changed only when it moved by more than one device pixel.
const layoutTolerancePx = 1.0

// labelMaxLen bounds the text excerpt attached to change records.
const labelMaxLen = 60

// Compare diffs prev against curr. A node present only in curr is added,
// only in prev is removed, and present in both is checked field by field;
// a node with zero field differences produces no record.
func Compare(prev, curr *schemas.Snapshot) *schemas.DiffResult {
	prevKeys, _ := snapshot.KeyMap(prev)
	currKeys, _ := snapshot.KeyMap(curr)

	result := &schemas.DiffResult{
		BaselineID: prev.ID,
		CurrentID:  curr.ID,
		Added:      []schemas.ChangeRecord{},
		Removed:    []schemas.ChangeRecord{},
		Modified:   []schemas.ChangeRecord{},
	}

	for key, currNode := range currKeys {
		prevNode, existed := prevKeys[key]
		if !existed {
			result.Added = append(result.Added, schemas.ChangeRecord{
				Kind:   schemas.ChangeAdded,
				Key:    key,
				NodeID: currNode.ID,
				Tag:    currNode.Tag,
				Label:  excerpt(currNode.Text),
			})
			continue
		}
		if fields := compareFields(prevNode, currNode); len(fields) > 0 {
			result.Modified = append(result.Modified, schemas.ChangeRecord{
				Kind:   schemas.ChangeModified,
				Key:    key,
				NodeID: currNode.ID,
				Tag:    currNode.Tag,
				Label:  excerpt(currNode.Text),
				Fields: fields,
			})
		}
	}

	for key, prevNode := range prevKeys {
		if _, stillThere := currKeys[key]; !stillThere {
			result.Removed = append(result.Removed, schemas.ChangeRecord{
				Kind:   schemas.ChangeRemoved,
				Key:    key,
				NodeID: prevNode.ID,
				Tag:    prevNode.Tag,
				Label:  excerpt(prevNode.Text),
			})
		}
	}

	result.RawCounts = schemas.DiffCounts{
		Added:    len(result.Added),
		Removed:  len(result.Removed),
		Modified: len(result.Modified),
	}
	result.FilteredCounts = result.RawCounts
	return result
}

// compareFields returns the per-field change map for a node present in both
// captures, or an empty map when nothing differs.
func compareFields(prev, curr *schemas.Node) map[string]schemas.FieldChange {
	fields := make(map[string]schemas.FieldChange)

	if prev.Text != curr.Text {
		fields[schemas.FieldText] = schemas.FieldChange{Old: prev.Text, New: curr.Text}
	}
	if prev.Visible != curr.Visible {
		fields[schemas.FieldVisibility] = schemas.FieldChange{Old: prev.Visible, New: curr.Visible}
	}
	if prev.InViewport != curr.InViewport {
		fields[schemas.FieldInViewport] = schemas.FieldChange{Old: prev.InViewport, New: curr.InViewport}
	}
	if attrs := compareAttributes(prev.Attributes, curr.Attributes); !attrs.Empty() {
		fields[schemas.FieldAttributes] = schemas.FieldChange{Old: prev.Attributes, New: attrs}
	}
	if layoutChanged(prev.Layout, curr.Layout) {
		fields[schemas.FieldLayout] = schemas.FieldChange{Old: prev.Layout, New: curr.Layout}
	}
	return fields
}

// compareAttributes computes the symmetric difference of two attribute maps.
func compareAttributes(prev, curr map[string]string) schemas.AttributeChange {
	change := schemas.AttributeChange{}

	for k, newVal := range curr {
		oldVal, had := prev[k]
		switch {
		case !had:
			if change.Added == nil {
				change.Added = make(map[string]string)
			}
			change.Added[k] = newVal
		case oldVal != newVal:
			if change.Changed == nil {
				change.Changed = make(map[string]schemas.FieldChange)
			}
			change.Changed[k] = schemas.FieldChange{Old: oldVal, New: newVal}
		}
	}
	for k, oldVal := range prev {
		if _, still := curr[k]; !still {
			if change.Removed == nil {
				change.Removed = make(map[string]string)
			}
			change.Removed[k] = oldVal
		}
	}
	return change
}

// layoutChanged applies the jitter tolerance: any single dimension moving by
// more than layoutTolerancePx counts; ≤1px movements in every dimension do
// not. Appearing or disappearing layout always counts.
func layoutChanged(prev, curr *schemas.Layout) bool {
	if prev == nil && curr == nil {
		return false
	}
	if prev == nil || curr == nil {
		return true
	}
	return math.Abs(prev.X-curr.X) > layoutTolerancePx ||
		math.Abs(prev.Y-curr.Y) > layoutTolerancePx ||
		math.Abs(prev.Width-curr.Width) > layoutTolerancePx ||
		math.Abs(prev.Height-curr.Height) > layoutTolerancePx
}

// excerpt truncates on rune boundaries so multi-byte labels stay valid UTF-8.
func excerpt(text string) string {
	return dom.Truncate(strings.TrimSpace(text), labelMaxLen)
}
