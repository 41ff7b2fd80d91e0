// internal/diff/filter.go
package diff

import (
	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// NodePredicate decides whether a node is interesting for display.
type NodePredicate func(snap *schemas.Snapshot, node *schemas.Node) bool

// FilterForDisplay narrows a raw change set to nodes that pass the caller's
// display predicate. Added and modified records are evaluated against the
// current snapshot; removed records against the previous one, since a removed
// node cannot be re-evaluated in a snapshot it no longer exists in. RawCounts
// is preserved so callers can detect aggressive filtering.
func FilterForDisplay(result *schemas.DiffResult, pred NodePredicate, prev, curr *schemas.Snapshot) *schemas.DiffResult {
	if pred == nil {
		return result
	}

	filtered := &schemas.DiffResult{
		BaselineID: result.BaselineID,
		CurrentID:  result.CurrentID,
		RawCounts:  result.RawCounts,
		NoBaseline: result.NoBaseline,
		Added:      keepMatching(result.Added, pred, curr),
		Modified:   keepMatching(result.Modified, pred, curr),
		Removed:    keepMatching(result.Removed, pred, prev),
	}
	filtered.FilteredCounts = schemas.DiffCounts{
		Added:    len(filtered.Added),
		Removed:  len(filtered.Removed),
		Modified: len(filtered.Modified),
	}
	return filtered
}

func keepMatching(records []schemas.ChangeRecord, pred NodePredicate, snap *schemas.Snapshot) []schemas.ChangeRecord {
	out := make([]schemas.ChangeRecord, 0, len(records))
	for _, rec := range records {
		node, ok := snap.NodeMap[rec.NodeID]
		if !ok {
			// Node lookup failures skip just that record, never the pass.
			continue
		}
		if pred(snap, node) {
			out = append(out, rec)
		}
	}
	return out
}
