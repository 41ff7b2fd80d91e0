// internal/filters/actionable.go

// Package filters derives ranked, deduplicated subsets of a snapshot for one
// concern each: actionable elements, interactive elements, headings, the
// structural outline and portal roots. Every filter is a pure function over
// an immutable snapshot and is safe to call from concurrent tabs.
package filters

import (
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
)

// Stage thresholds for the actionable filter.
const (
	// minSignificantArea rejects candidates whose rendered box is smaller
	// than roughly 12x12 px, unless an always-significant tag.
	minSignificantArea = 144.0
	// delegatedHandlerMaxHops bounds the ancestor walk when inferring
	// delegated click handling.
	delegatedHandlerMaxHops = 3
	// pointerEventsMaxHops bounds the ancestor walk for the
	// pointer-events:none exclusion.
	pointerEventsMaxHops = 2
)

// defaultClickableSubstrings is the configurable "known clickable" list
// matched against class names and test ids.
var defaultClickableSubstrings = []string{
	"btn", "button", "clickable", "link", "toggle", "dropdown",
	"menu-item", "menuitem", "selectable", "card-action",
}

// defaultZeroAreaTestIDs marks elements meaningful despite a zero-size box,
// covering virtualized-grid rows that report zero height.
var defaultZeroAreaTestIDs = []string{"row", "cell", "virtual", "list-item"}

// alwaysSignificantTags pass stage B regardless of rendered area.
var alwaysSignificantTags = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true, "a": true,
}

// clickHandlerAttrs are direct handler attributes checked in stage A.
var clickHandlerAttrs = []string{"onclick", "onmousedown", "onmouseup", "ontouchstart"}

// delegatedActionAttrs suggest a delegation pattern on an ancestor.
var delegatedActionAttrs = []string{"data-action", "data-click", "data-handler", "data-toggle"}

// delegatedContainerRoles are ancestor roles that commonly delegate clicks
// to their rows and items.
var delegatedContainerRoles = map[string]bool{
	"table": true, "grid": true, "treegrid": true, "menu": true,
	"menubar": true, "listbox": true, "navigation": true,
}

// ariaStateAttrs mark stateful widgets even without an interactive role.
var ariaStateAttrs = []string{"aria-expanded", "aria-pressed", "aria-selected", "aria-checked"}

// ActionableOptions tunes the actionable filter. The zero value gives the
// default substring lists, no element cap, and enhanced heuristics off.
type ActionableOptions struct {
	MaxElements         int
	ClickableSubstrings []string
	ZeroAreaTestIDs     []string
	// EnhancedHeuristics enables the viewport-dominance, edge-overshoot and
	// row-concatenation dedup rules that need richer geometry signal.
	EnhancedHeuristics bool
}

func (o ActionableOptions) clickableSubstrings() []string {
	if len(o.ClickableSubstrings) > 0 {
		return o.ClickableSubstrings
	}
	return defaultClickableSubstrings
}

func (o ActionableOptions) zeroAreaTestIDs() []string {
	if len(o.ZeroAreaTestIDs) > 0 {
		return o.ZeroAreaTestIDs
	}
	return defaultZeroAreaTestIDs
}

// ActionableResult is the deduplicated candidate list plus truncation info.
type ActionableResult struct {
	Candidates []schemas.Candidate
	TotalFound int
	Truncated  bool
}

// Actionable reduces the snapshot's nodes to the small non-redundant set an
// automation agent should act on: stage A candidacy, stage B significance,
// stage C geometric deduplication, then truncation to MaxElements.
func Actionable(snap *schemas.Snapshot, opts ActionableOptions) ActionableResult {
	var candidates []*schemas.Node
	for _, n := range snap.Nodes {
		if !n.IsElement() {
			continue
		}
		if isExcluded(snap, n) {
			continue
		}
		if !isCandidate(snap, n, opts) {
			continue
		}
		if !isSignificant(n, opts) {
			continue
		}
		candidates = append(candidates, n)
	}

	deduped := dedupe(snap, candidates, opts)

	total := len(deduped)
	truncated := false
	if opts.MaxElements > 0 && len(deduped) > opts.MaxElements {
		deduped = deduped[:opts.MaxElements]
		truncated = true
	}

	out := make([]schemas.Candidate, 0, len(deduped))
	for _, n := range deduped {
		out = append(out, projectCandidate(n))
	}
	return ActionableResult{Candidates: out, TotalFound: total, Truncated: truncated}
}

// isCandidate implements stage A: any one signal admits the node.
func isCandidate(snap *schemas.Snapshot, n *schemas.Node, opts ActionableOptions) bool {
	if dom.IsInteractiveTag(n.Tag) || dom.IsInteractiveRole(dom.Role(n)) {
		return true
	}
	for _, attr := range clickHandlerAttrs {
		if n.HasAttr(attr) {
			return true
		}
	}
	if hasDelegatedHandler(snap, n) {
		return true
	}
	if ti := n.Attr("tabindex"); ti != "" && !strings.HasPrefix(ti, "-") {
		return true
	}
	if ce := strings.ToLower(n.Attr("contenteditable")); ce == "" && n.HasAttr("contenteditable") || ce == "true" || ce == "plaintext-only" {
		return true
	}
	for _, attr := range ariaStateAttrs {
		if n.HasAttr(attr) {
			return true
		}
	}
	if strings.EqualFold(n.Attr("draggable"), "true") {
		return true
	}
	haystack := strings.ToLower(n.Attr("class") + " " + n.Attr("data-testid"))
	for _, sub := range opts.clickableSubstrings() {
		if strings.Contains(haystack, sub) {
			return true
		}
	}
	if hasPointerCursor(n) {
		return true
	}
	return false
}

// hasDelegatedHandler infers delegated click handling from nearby ancestors:
// a direct handler, a data-action style attribute, or a recognizable
// container role within a bounded number of hops.
func hasDelegatedHandler(snap *schemas.Snapshot, n *schemas.Node) bool {
	for _, anc := range snap.Ancestors(n, delegatedHandlerMaxHops) {
		for _, attr := range clickHandlerAttrs {
			if anc.HasAttr(attr) {
				return true
			}
		}
		for _, attr := range delegatedActionAttrs {
			if anc.HasAttr(attr) {
				return true
			}
		}
		if delegatedContainerRoles[dom.Role(anc)] {
			return true
		}
	}
	return false
}

// hasPointerCursor checks the captured cursor signal: either the computed
// cursor the capture collaborator folded into the attribute map, or an
// inline style declaration.
func hasPointerCursor(n *schemas.Node) bool {
	if strings.EqualFold(n.Attr("cursor"), "pointer") {
		return true
	}
	style := strings.ToLower(n.Attr("style"))
	return strings.Contains(style, "cursor:pointer") || strings.Contains(style, "cursor: pointer")
}

// isExcluded rejects a node regardless of stage A signals: disabled, inert,
// aria-hidden, or pointer-events:none on itself or a near ancestor.
func isExcluded(snap *schemas.Snapshot, n *schemas.Node) bool {
	if n.HasAttr("disabled") || strings.EqualFold(n.Attr("aria-disabled"), "true") {
		return true
	}
	if n.HasAttr("inert") {
		return true
	}
	if strings.EqualFold(n.Attr("aria-hidden"), "true") {
		return true
	}
	if hasPointerEventsNone(n) {
		return true
	}
	for _, anc := range snap.Ancestors(n, pointerEventsMaxHops) {
		if hasPointerEventsNone(anc) {
			return true
		}
	}
	return false
}

func hasPointerEventsNone(n *schemas.Node) bool {
	style := strings.ToLower(n.Attr("style"))
	return strings.Contains(style, "pointer-events:none") || strings.Contains(style, "pointer-events: none")
}

// isSignificant implements stage B: reject zero or tiny rendered boxes unless
// the node is an always-significant tag or matches the zero-box test-id
// allowlist.
func isSignificant(n *schemas.Node, opts ActionableOptions) bool {
	area := n.Layout.Area()
	if area >= minSignificantArea {
		return true
	}
	if alwaysSignificantTags[strings.ToLower(n.Tag)] {
		return true
	}
	testID := strings.ToLower(n.Attr("data-testid"))
	if testID != "" {
		for _, pat := range opts.zeroAreaTestIDs() {
			if strings.Contains(testID, pat) {
				return true
			}
		}
	}
	return false
}

// projectCandidate builds the display projection for an accepted node.
func projectCandidate(n *schemas.Node) schemas.Candidate {
	sels := dom.Selectors(n)
	c := schemas.Candidate{
		NodeID:        n.ID,
		Tag:           strings.ToLower(n.Tag),
		SemanticType:  dom.SemanticTypeOf(n),
		Label:         dom.Label(n),
		SelectorHints: sels,
		Area:          n.Layout.Area(),
		InViewport:    n.InViewport,
		Visible:       n.Visible,
	}
	if len(sels) > 0 {
		c.Selector = sels[0]
	}
	return c
}
