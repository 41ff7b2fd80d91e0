// internal/filters/portals.go
package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/dom"
)

// Portal roots host overlay content (modals, dropdowns, toasts) rendered as
// direct children of the document body, outside their logical parent in the
// tree. Only body-level children qualify: an identical element nested deeper
// is ordinary content.

// portalClassFragments are class name fragments of known portal libraries.
var portalClassFragments = []string{
	"reactmodalportal", "modal", "overlay", "popover", "popper",
	"drawer", "toast", "tooltip", "dialog", "portal", "backdrop",
	"lightbox", "snackbar",
}

// portalMarkerAttrs are attributes portal libraries stamp on their roots.
var portalMarkerAttrs = []string{
	"data-portal", "data-radix-portal", "data-headlessui-portal",
	"data-overlay-container", "data-floating-ui-portal",
}

// overlayRoles are ARIA roles that mark overlay content.
var overlayRoles = map[string]bool{
	"dialog": true, "alertdialog": true, "menu": true,
	"listbox": true, "tooltip": true,
}

// portalZIndexThreshold is the resolved stacking z-index above which a plain
// div is treated as an overlay host.
const portalZIndexThreshold = 1000

// Portals identifies overlay/modal roots among the body's direct children.
func Portals(snap *schemas.Snapshot) []schemas.PortalRoot {
	body := findBody(snap)
	if body == nil {
		return nil
	}

	var out []schemas.PortalRoot
	for _, child := range snap.Children(body) {
		if !child.IsElement() {
			continue
		}
		reason, ok := portalReason(child)
		if !ok {
			continue
		}
		out = append(out, schemas.PortalRoot{
			NodeID:  child.ID,
			Tag:     strings.ToLower(child.Tag),
			Class:   child.Attr("class"),
			IDAttr:  child.Attr("id"),
			Role:    dom.Role(child),
			Reason:  reason,
			Visible: child.Visible,
			Label:   dom.Label(child),
		})
	}
	return out
}

// NewPortals returns portal roots present in curr but not in prev, comparing
// body-level children keyed by (tag, class, id) across the two captures.
func NewPortals(prev, curr *schemas.Snapshot) []schemas.PortalRoot {
	seen := make(map[string]bool)
	for _, p := range Portals(prev) {
		seen[portalIdentity(p)] = true
	}

	var out []schemas.PortalRoot
	for _, p := range Portals(curr) {
		if !seen[portalIdentity(p)] {
			out = append(out, p)
		}
	}
	return out
}

func portalIdentity(p schemas.PortalRoot) string {
	return fmt.Sprintf("%s|%s|%s", p.Tag, p.Class, p.IDAttr)
}

// portalReason decides whether a body-level child is an overlay root and
// names the signal that fired.
func portalReason(n *schemas.Node) (string, bool) {
	class := strings.ToLower(n.Attr("class"))
	for _, frag := range portalClassFragments {
		if strings.Contains(class, frag) {
			return "class:" + frag, true
		}
	}
	for _, attr := range portalMarkerAttrs {
		if n.HasAttr(attr) {
			return "attr:" + attr, true
		}
	}
	if role := dom.Role(n); overlayRoles[role] {
		return "role:" + role, true
	}

	// Heuristics for unmarked portals: a div stacked above the page, or
	// fixed/absolute positioning with actual content.
	if strings.EqualFold(n.Tag, "div") {
		if z := resolvedZIndex(n); z >= portalZIndexThreshold {
			return fmt.Sprintf("z-index:%d", z), true
		}
		style := strings.ToLower(n.Attr("style"))
		positioned := strings.Contains(style, "position:fixed") ||
			strings.Contains(style, "position: fixed") ||
			strings.Contains(style, "position:absolute") ||
			strings.Contains(style, "position: absolute")
		if positioned && (len(n.ChildIDs) > 0 || strings.TrimSpace(n.Text) != "") {
			return "positioned-overlay", true
		}
	}
	return "", false
}

// resolvedZIndex reads the z-index from the inline style declaration, or the
// computed value the capture collaborator folded into the attribute map.
func resolvedZIndex(n *schemas.Node) int {
	if v := n.Attr("z-index"); v != "" {
		if z, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return z
		}
	}
	style := n.Attr("style")
	idx := strings.Index(strings.ToLower(style), "z-index")
	if idx < 0 {
		return 0
	}
	rest := style[idx+len("z-index"):]
	rest = strings.TrimLeft(rest, ": ")
	end := strings.IndexAny(rest, "; ")
	if end >= 0 {
		rest = rest[:end]
	}
	z, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0
	}
	return z
}

func findBody(snap *schemas.Snapshot) *schemas.Node {
	for _, n := range snap.Nodes {
		if n.IsElement() && strings.EqualFold(n.Tag, "body") {
			return n
		}
	}
	return nil
}
