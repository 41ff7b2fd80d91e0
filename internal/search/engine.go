// internal/search/engine.go

// Package search implements ad-hoc predicate matching over a snapshot's
// nodes: a structural grep with a restricted selector grammar and pattern
// diagnostics. The diagnostics exist because an empty result executed blindly
// is indistinguishable from "truly absent" vs "present but virtualized", and
// the caller needs that distinction to decide whether to scroll and retry.
package search

import (
	"errors"
	"strings"
	"unicode"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
)

// ErrInvalidQuery rejects a query with zero criteria.
var ErrInvalidQuery = errors.New("search query must supply at least one criterion")

// Diagnostic thresholds over the whole match set.
const (
	virtualScrollRatio = 0.5
	hiddenRatio        = 0.7
	offViewportRatio   = 0.8
)

// DefaultLimit caps returned matches when the caller does not set one.
const DefaultLimit = 25

// textMatchAttrs are the attributes checked by the free-text criterion, in
// order, after the node's direct text.
var textMatchAttrs = []string{"aria-label", "value", "placeholder", "title"}

// Query is one structural search. All supplied criteria are ANDed.
type Query struct {
	Tag        string
	Role       string
	Text       string
	Selector   string
	Attributes map[string]string
	// ContextNodeID scopes matching to descendants of one node (0 = whole tree).
	ContextNodeID int64
	VisibleOnly   bool
	Limit         int
}

func (q Query) hasCriteria() bool {
	return q.Tag != "" || q.Role != "" || q.Text != "" || q.Selector != "" || len(q.Attributes) > 0
}

// Result carries the returned page of matches plus whole-set statistics.
type Result struct {
	Matches     []schemas.SearchMatch
	TotalCount  int
	Breakdown   schemas.VisibilityBreakdown
	Diagnostics schemas.SearchDiagnostics
}

// Run executes the query against the snapshot. The visibility breakdown and
// diagnostics cover all matches, not just the returned page.
func Run(snap *schemas.Snapshot, q Query) (*Result, error) {
	if !q.hasCriteria() {
		return nil, ErrInvalidQuery
	}

	var sel *Selector
	if q.Selector != "" {
		parsed, err := ParseSelector(q.Selector)
		if err != nil {
			return nil, errors.Join(ErrInvalidQuery, err)
		}
		sel = parsed
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var scope map[int64]bool
	if q.ContextNodeID != 0 {
		scope = descendantSet(snap, q.ContextNodeID)
	}

	result := &Result{}
	for _, n := range snap.Nodes {
		if !n.IsElement() {
			continue
		}
		if scope != nil && !scope[n.ID] {
			continue
		}
		if q.VisibleOnly && !n.Visible {
			continue
		}

		snippet, ok := matches(n, q, sel)
		if !ok {
			continue
		}

		result.TotalCount++
		tally(&result.Breakdown, n)

		if len(result.Matches) < limit {
			result.Matches = append(result.Matches, schemas.SearchMatch{
				NodeID:     n.ID,
				Tag:        strings.ToLower(n.Tag),
				Selector:   dom.PrimarySelector(n),
				Snippet:    snippet,
				Visible:    n.Visible,
				InViewport: n.InViewport,
				ZeroHeight: zeroHeight(n),
			})
		}
	}

	result.Breakdown.Total = result.TotalCount
	result.Diagnostics = diagnose(result.Breakdown)
	return result, nil
}

// matches evaluates all criteria against one node and, when the text
// criterion fired, returns the highlighted snippet.
func matches(n *schemas.Node, q Query, sel *Selector) (string, bool) {
	if q.Tag != "" && !strings.EqualFold(n.Tag, q.Tag) {
		return "", false
	}
	if q.Role != "" && dom.Role(n) != strings.ToLower(q.Role) {
		return "", false
	}
	if sel != nil && !sel.Matches(n) {
		return "", false
	}
	for k, v := range q.Attributes {
		if n.Attr(k) != v {
			return "", false
		}
	}

	if q.Text == "" {
		return "", true
	}
	for _, hay := range textSources(n) {
		if start, end := foldIndex(hay, q.Text); start >= 0 {
			return highlight(hay, start, end), true
		}
	}
	return "", false
}

func textSources(n *schemas.Node) []string {
	sources := make([]string, 0, 1+len(textMatchAttrs))
	if n.Text != "" {
		sources = append(sources, n.Text)
	}
	for _, attr := range textMatchAttrs {
		if v := n.Attr(attr); v != "" {
			sources = append(sources, v)
		}
	}
	return sources
}

// snippetContext is how many characters of surrounding text a highlighted
// snippet keeps on each side of the match.
const snippetContext = 40

// foldIndex finds a case-insensitive occurrence of needle in hay and returns
// its rune offsets, or -1, -1. Folding happens per rune so the offsets always
// align with hay, whatever the byte widths involved.
func foldIndex(hay, needle string) (int, int) {
	hr := []rune(hay)
	nr := []rune(needle)
	if len(nr) == 0 || len(nr) > len(hr) {
		return -1, -1
	}
	for i := range nr {
		nr[i] = unicode.ToLower(nr[i])
	}
outer:
	for i := 0; i+len(nr) <= len(hr); i++ {
		for k, r := range nr {
			if unicode.ToLower(hr[i+k]) != r {
				continue outer
			}
		}
		return i, i + len(nr)
	}
	return -1, -1
}

// highlight wraps the matched run in <<...>> markers with bounded context.
// start and end are rune offsets, so multi-byte text is never split
// mid-character.
func highlight(text string, start, end int) string {
	runes := []rune(text)
	from := start - snippetContext
	if from < 0 {
		from = 0
	}
	to := end + snippetContext
	if to > len(runes) {
		to = len(runes)
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString("…")
	}
	b.WriteString(string(runes[from:start]))
	b.WriteString("<<")
	b.WriteString(string(runes[start:end]))
	b.WriteString(">>")
	b.WriteString(string(runes[end:to]))
	if to < len(runes) {
		b.WriteString("…")
	}
	return b.String()
}

func zeroHeight(n *schemas.Node) bool {
	return n.Layout != nil && n.Layout.Height == 0
}

func tally(b *schemas.VisibilityBreakdown, n *schemas.Node) {
	if n.Visible {
		b.Visible++
	} else {
		b.Hidden++
	}
	if zeroHeight(n) {
		b.ZeroHeight++
	}
	if !n.InViewport {
		b.OutOfViewport++
	}
}

// diagnose turns the visibility breakdown into qualitative pattern flags.
func diagnose(b schemas.VisibilityBreakdown) schemas.SearchDiagnostics {
	d := schemas.SearchDiagnostics{}
	if b.Total == 0 {
		return d
	}
	total := float64(b.Total)
	if float64(b.ZeroHeight) > virtualScrollRatio*total {
		d.VirtualScrolling = true
	}
	if float64(b.Hidden) > hiddenRatio*total {
		d.RevealOnInteraction = true
	}
	if float64(b.OutOfViewport) > offViewportRatio*total && b.ZeroHeight == 0 {
		d.ScrollToReveal = true
	}
	return d
}

// descendantSet collects the ids of all descendants of the context node.
// The context node itself is not part of its own scope.
func descendantSet(snap *schemas.Snapshot, rootID int64) map[int64]bool {
	out := make(map[int64]bool)
	root, ok := snap.NodeMap[rootID]
	if !ok {
		return out
	}
	var walk func(n *schemas.Node)
	walk = func(n *schemas.Node) {
		for _, c := range snap.Children(n) {
			out[c.ID] = true
			walk(c)
		}
	}
	walk(root)
	return out
}
