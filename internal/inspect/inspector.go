// internal/inspect/inspector.go

// Package inspect produces the deep single-element report: the formatted
// info block, bounded ancestry/children/sibling context, and the
// actionability diagnosis an automation caller uses to decide whether an
// element can be acted on as-is or needs scrolling first.
package inspect

import (
	"errors"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
)

// ErrElementNotFound is returned when the requested id is not in the snapshot.
var ErrElementNotFound = errors.New("element not found in snapshot")

// Context section bounds.
const (
	maxAncestors   = 10
	maxChildren    = 20
	siblingWindow  = 3
	scrollWalkHops = 15
)

// Actionability issue names surfaced in diagnoses and candidate projections.
const (
	IssueNotVisible     = "not-visible"
	IssueZeroHeight     = "zero-height"
	IssueZeroWidth      = "zero-width"
	IssueOutOfViewport  = "out-of-viewport"
	IssueDisabled       = "disabled"
	IssueReadonly       = "readonly"
	IssuePointerBlocked = "pointer-events-blocked"
)

// scrollContainerClassFragments mark ancestors that own their own scrollbar.
var scrollContainerClassFragments = []string{
	"scroll", "overflow", "virtual", "viewport", "list-container", "table-body",
}

// Options selects which context sections the report includes.
type Options struct {
	IncludeAncestry bool
	IncludeChildren bool
	IncludeSiblings bool
}

// Report is the inspector output for one element.
type Report struct {
	Element   schemas.ElementReport
	Diagnosis schemas.ActionabilityDiagnosis
	Ancestors []schemas.ElementReport
	Children  []schemas.ElementReport
	Siblings  []schemas.ElementReport
}

// Inspect builds the full report for the element with the given id.
func Inspect(snap *schemas.Snapshot, elementID int64, opts Options) (*Report, error) {
	n, ok := snap.NodeMap[elementID]
	if !ok {
		return nil, ErrElementNotFound
	}

	report := &Report{
		Element:   describe(n),
		Diagnosis: Diagnose(snap, n),
	}

	if opts.IncludeAncestry {
		for _, anc := range snap.Ancestors(n, maxAncestors) {
			report.Ancestors = append(report.Ancestors, describe(anc))
			if strings.EqualFold(anc.Tag, "body") {
				break
			}
		}
	}
	if opts.IncludeChildren {
		for _, c := range snap.Children(n) {
			if !c.IsElement() {
				continue
			}
			report.Children = append(report.Children, describe(c))
			if len(report.Children) >= maxChildren {
				break
			}
		}
	}
	if opts.IncludeSiblings {
		report.Siblings = siblingWindowFor(snap, n)
	}
	return report, nil
}

// describe builds the formatted info block for one node.
func describe(n *schemas.Node) schemas.ElementReport {
	return schemas.ElementReport{
		NodeID:       n.ID,
		Tag:          strings.ToLower(n.Tag),
		SemanticType: dom.SemanticTypeOf(n),
		Layout:       n.Layout,
		Attributes:   n.Attributes,
		Text:         dom.Truncate(strings.TrimSpace(n.Text), 200),
		AriaLabel:    n.Attr("aria-label"),
		Value:        n.Attr("value"),
		Placeholder:  n.Attr("placeholder"),
		Selectors:    dom.Selectors(n),
	}
}

// siblingWindowFor returns up to three element siblings on each side of n,
// preserving document order.
func siblingWindowFor(snap *schemas.Snapshot, n *schemas.Node) []schemas.ElementReport {
	parent := snap.Parent(n)
	if parent == nil {
		return nil
	}

	var elements []*schemas.Node
	self := -1
	for _, sib := range snap.Children(parent) {
		if !sib.IsElement() {
			continue
		}
		if sib.ID == n.ID {
			self = len(elements)
		}
		elements = append(elements, sib)
	}
	if self < 0 {
		return nil
	}

	start := self - siblingWindow
	if start < 0 {
		start = 0
	}
	end := self + siblingWindow + 1
	if end > len(elements) {
		end = len(elements)
	}

	var out []schemas.ElementReport
	for i := start; i < end; i++ {
		if i == self {
			continue
		}
		out = append(out, describe(elements[i]))
	}
	return out
}

// Diagnose flags every blocking condition on the node. An element is judged
// actionable when it is interactive by type/role and has no blocking issue
// other than being outside the viewport, which is fixable by scrolling
// rather than a hard block.
func Diagnose(snap *schemas.Snapshot, n *schemas.Node) schemas.ActionabilityDiagnosis {
	d := schemas.ActionabilityDiagnosis{}

	if !n.Visible {
		d.Issues = append(d.Issues, IssueNotVisible)
	}
	if n.Layout != nil && n.Layout.Height == 0 {
		d.Issues = append(d.Issues, IssueZeroHeight)
		if hint := scrollContainerHint(snap, n); hint != "" {
			d.ScrollContainerHint = hint
		}
	}
	if n.Layout != nil && n.Layout.Width == 0 {
		d.Issues = append(d.Issues, IssueZeroWidth)
	}
	if !n.InViewport {
		d.OutOfViewport = true
		d.Issues = append(d.Issues, IssueOutOfViewport)
	}
	if n.HasAttr("disabled") || strings.EqualFold(n.Attr("aria-disabled"), "true") {
		d.Issues = append(d.Issues, IssueDisabled)
	}
	if n.HasAttr("readonly") || strings.EqualFold(n.Attr("aria-readonly"), "true") {
		d.Issues = append(d.Issues, IssueReadonly)
	}
	if pointerBlocked(n) {
		d.Issues = append(d.Issues, IssuePointerBlocked)
	}

	blocking := 0
	for _, issue := range d.Issues {
		if issue != IssueOutOfViewport {
			blocking++
		}
	}
	d.Actionable = dom.IsInteractive(n) && blocking == 0
	return d
}

func pointerBlocked(n *schemas.Node) bool {
	style := strings.ToLower(n.Attr("style"))
	return strings.Contains(style, "pointer-events:none") || strings.Contains(style, "pointer-events: none")
}

// scrollContainerHint walks ancestors looking for a scrollable container via
// class-name and inline-overflow-style heuristics. For a zero-height element
// inside a virtualized region, scrolling that container into position is the
// fix, not scrolling the viewport.
func scrollContainerHint(snap *schemas.Snapshot, n *schemas.Node) string {
	for _, anc := range snap.Ancestors(n, scrollWalkHops) {
		if isScrollContainer(anc) {
			return dom.PrimarySelector(anc)
		}
	}
	return ""
}

func isScrollContainer(n *schemas.Node) bool {
	style := strings.ToLower(n.Attr("style"))
	if strings.Contains(style, "overflow:auto") || strings.Contains(style, "overflow: auto") ||
		strings.Contains(style, "overflow:scroll") || strings.Contains(style, "overflow: scroll") ||
		strings.Contains(style, "overflow-y:auto") || strings.Contains(style, "overflow-y: auto") ||
		strings.Contains(style, "overflow-y:scroll") || strings.Contains(style, "overflow-y: scroll") {
		return true
	}
	class := strings.ToLower(n.Attr("class"))
	for _, frag := range scrollContainerClassFragments {
		if strings.Contains(class, frag) {
			return true
		}
	}
	return false
}
