// internal/filters/dedup.go
package filters

import (
	"sort"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// Stage C thresholds. The rules are deliberately an ordered if/else cascade,
// not a weighted score: behavior stays auditable and the rule order is part
// of the contract — reordering changes outcomes on ambiguous cases.
const (
	// overlapRatio is the mutual-overlap fraction (of the smaller box) that
	// links two candidates into one cluster.
	overlapRatio = 0.5
	// textLengthFactor collapses "icon + long paragraph" wrappers.
	textLengthFactor = 3
	// viewportDominanceRatio demotes wrappers covering most of the screen.
	viewportDominanceRatio = 0.25
	// edgeOvershootTolerancePx allows small layout slop before a "nested"
	// box is reclassified as a sibling artifact.
	edgeOvershootTolerancePx = 4.0
	// Row-concatenation rule thresholds.
	rowTextFactor     = 6
	rowSeparatorCount = 3
	rowHeightFactor   = 3
)

// rowSeparators are the characters counted by the row-concatenation rule.
const rowSeparators = "\n\t…"

// generic wrapper tags for the form-control rule.
var genericContainerTags = map[string]bool{"div": true, "span": true, "section": true}

// native form controls for the form-control rule.
var formControlTags = map[string]bool{"input": true, "select": true, "textarea": true, "button": true}

// dedupe is stage C: geometric deduplication with ordered tie-breaks.
// Candidates are processed by rendered area descending, so large wrappers are
// evaluated before their children — required for the replace-on-win semantics
// to be well defined. When the smaller node wins every overlap relationship
// in its cluster, it replaces the accepted parents (one representative per
// cluster); otherwise it is discarded.
func dedupe(snap *schemas.Snapshot, nodes []*schemas.Node, opts ActionableOptions) []*schemas.Node {
	sorted := make([]*schemas.Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Layout.Area() > sorted[j].Layout.Area()
	})

	var accepted []*schemas.Node
	for _, cand := range sorted {
		overlapping := overlappingIndices(accepted, cand)
		if len(overlapping) == 0 {
			accepted = append(accepted, cand)
			continue
		}

		childWinsAll := true
		for _, idx := range overlapping {
			if !smallerWins(snap, accepted[idx], cand, opts) {
				childWinsAll = false
				break
			}
		}
		if !childWinsAll {
			continue
		}

		// Replace the cluster with its single winning representative.
		kept := accepted[:0:0]
		skip := make(map[int]bool, len(overlapping))
		for _, idx := range overlapping {
			skip[idx] = true
		}
		for i, a := range accepted {
			if !skip[i] {
				kept = append(kept, a)
			}
		}
		accepted = append(kept, cand)
	}
	return accepted
}

// overlappingIndices returns the accepted entries related to cand by
// containment or ≥50% area overlap of the smaller box.
func overlappingIndices(accepted []*schemas.Node, cand *schemas.Node) []int {
	var out []int
	for i, a := range accepted {
		if related(a, cand) {
			out = append(out, i)
		}
	}
	return out
}

func related(larger, smaller *schemas.Node) bool {
	if larger.Layout == nil || smaller.Layout == nil {
		return false
	}
	if larger.Layout.Contains(smaller.Layout) {
		return true
	}
	smallArea := smaller.Layout.Area()
	if smallArea <= 0 {
		return false
	}
	return larger.Layout.IntersectionArea(smaller.Layout) >= overlapRatio*smallArea
}

// smallerWins applies the ordered rule cascade to one parent/child pair,
// returning true when the smaller (incoming) node should displace the larger
// (accepted) one.
func smallerWins(snap *schemas.Snapshot, larger, smaller *schemas.Node, opts ActionableOptions) bool {
	// 1. Form-control rule: concrete controls beat generic wrappers.
	if formControlTags[strings.ToLower(smaller.Tag)] && genericContainerTags[strings.ToLower(larger.Tag)] {
		return true
	}

	// 2. Text-length rule: a wrapper whose text dwarfs the child's collapses
	// down to the actionable child.
	largerText := strings.TrimSpace(larger.Text)
	smallerText := strings.TrimSpace(smaller.Text)
	if smallerText != "" && len(largerText) > textLengthFactor*len(smallerText) {
		return true
	}

	if opts.EnhancedHeuristics {
		// 3a. Viewport dominance: a candidate covering over a quarter of the
		// viewport is a layout region, not a control.
		if vpArea := snap.Viewport.Area(); vpArea > 0 && larger.Layout.Area() > viewportDominanceRatio*vpArea {
			return true
		}
		// 3b. Edge overshoot: a box extending past its "parent" is not truly
		// nested, likely a layout artifact.
		if overshoots(smaller.Layout, larger.Layout) {
			return true
		}
		// 3c. Row concatenation: the larger node reads like several rows
		// glued together; prefer the single-row child.
		if smallerText != "" &&
			len(largerText) >= rowTextFactor*len(smallerText) &&
			countSeparators(largerText) >= rowSeparatorCount &&
			larger.Layout != nil && smaller.Layout != nil &&
			larger.Layout.Height >= rowHeightFactor*smaller.Layout.Height {
			return true
		}
	}

	// 4. Default: the larger, already-accepted node wins.
	return false
}

// overshoots reports whether inner extends past outer on any edge by more
// than the tolerance.
func overshoots(inner, outer *schemas.Layout) bool {
	if inner == nil || outer == nil {
		return false
	}
	return inner.X < outer.X-edgeOvershootTolerancePx ||
		inner.Y < outer.Y-edgeOvershootTolerancePx ||
		inner.Right() > outer.Right()+edgeOvershootTolerancePx ||
		inner.Bottom() > outer.Bottom()+edgeOvershootTolerancePx
}

func countSeparators(s string) int {
	count := 0
	for _, r := range s {
		if strings.ContainsRune(rowSeparators, r) {
			count++
		}
	}
	return count
}
