// internal/filters/outline.go
package filters

import (
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
)

// DefaultOutlineDepth bounds the hierarchy projection when the caller does
// not specify one.
const DefaultOutlineDepth = 4

// skeletonTags are structural tags always worth a row in the outline even
// without text of their own.
var skeletonTags = map[string]bool{
	"html": true, "body": true, "header": true, "footer": true, "main": true,
	"nav": true, "aside": true, "section": true, "article": true, "form": true,
	"table": true, "ul": true, "ol": true, "dialog": true,
}

// Outline projects the element hierarchy down to maxDepth as indented rows,
// in document traversal order. Text nodes are folded into their parents.
func Outline(snap *schemas.Snapshot, maxDepth int) []schemas.OutlineEntry {
	if maxDepth <= 0 {
		maxDepth = DefaultOutlineDepth
	}

	var out []schemas.OutlineEntry
	var walk func(n *schemas.Node, depth int)
	walk = func(n *schemas.Node, depth int) {
		if depth > maxDepth {
			return
		}
		if n.IsElement() && worthOutlining(n) {
			elementChildren := 0
			for _, c := range snap.Children(n) {
				if c.IsElement() {
					elementChildren++
				}
			}
			out = append(out, schemas.OutlineEntry{
				NodeID:   n.ID,
				Tag:      strings.ToLower(n.Tag),
				Depth:    depth,
				Label:    dom.Label(n),
				Children: elementChildren,
			})
		}
		for _, c := range snap.Children(n) {
			walk(c, depth+1)
		}
	}
	if root := snap.Root(); root != nil {
		walk(root, 0)
	}
	return out
}

// worthOutlining keeps the outline readable: structural tags, interactive
// elements, headings, and anything with an id or landmark role.
func worthOutlining(n *schemas.Node) bool {
	if skeletonTags[strings.ToLower(n.Tag)] {
		return true
	}
	if dom.IsInteractive(n) || headingLevel(n) > 0 {
		return true
	}
	return n.Attr("id") != "" || dom.Role(n) != ""
}
