// internal/filters/interactive.go
package filters

import (
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
)

// Interactive lists every node that is interactive by tag or ARIA role, with
// no deduplication. This is the cheap membership view used by overview
// sections and as a display predicate for diffs.
func Interactive(snap *schemas.Snapshot, visibleOnly bool, maxRows int) ([]schemas.Candidate, bool) {
	var out []schemas.Candidate
	truncated := false
	for _, n := range snap.Nodes {
		if !n.IsElement() || !dom.IsInteractive(n) {
			continue
		}
		if visibleOnly && !n.Visible {
			continue
		}
		if maxRows > 0 && len(out) >= maxRows {
			truncated = true
			break
		}
		out = append(out, projectCandidate(n))
	}
	return out, truncated
}

// IsInteractiveNode is the display predicate form of the interactive filter,
// for use with diff.FilterForDisplay.
func IsInteractiveNode(_ *schemas.Snapshot, n *schemas.Node) bool {
	return n.IsElement() && dom.IsInteractive(n)
}

// Headings extracts the document heading outline: h1..h6 plus role=heading
// with an aria-level.
func Headings(snap *schemas.Snapshot, maxRows int) ([]schemas.HeadingEntry, bool) {
	var out []schemas.HeadingEntry
	truncated := false
	for _, n := range snap.Nodes {
		if !n.IsElement() {
			continue
		}
		level := headingLevel(n)
		if level == 0 {
			continue
		}
		if maxRows > 0 && len(out) >= maxRows {
			truncated = true
			break
		}
		out = append(out, schemas.HeadingEntry{
			NodeID: n.ID,
			Level:  level,
			Text:   dom.Label(n),
		})
	}
	return out, truncated
}

func headingLevel(n *schemas.Node) int {
	tag := strings.ToLower(n.Tag)
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	if dom.Role(n) == "heading" {
		switch n.Attr("aria-level") {
		case "1":
			return 1
		case "2":
			return 2
		case "3":
			return 3
		case "4":
			return 4
		case "5":
			return 5
		case "6":
			return 6
		default:
			return 2
		}
	}
	return 0
}
