// internal/snapshot/key.go
package snapshot

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// Stable keys match the same logical element across two captures even though
// per-capture node ids are not stable. The capture collaborator's backend id
// is used when present; otherwise a composite fingerprint is synthesized from
// the tag, identifying attributes, the parent's key and the depth. Tag+depth
// alone would collide for sibling rows, so the attribute fingerprint and an
// ordinal suffix break ties deterministically.

// KeyMap computes the stable key for every node in the snapshot and returns
// both directions: key -> node and node id -> key. Keys are deterministic for
// structurally equivalent nodes across captures of an unchanged page.
func KeyMap(snap *schemas.Snapshot) (map[string]*schemas.Node, map[int64]string) {
	byKey := make(map[string]*schemas.Node, len(snap.Nodes))
	byID := make(map[int64]string, len(snap.Nodes))

	var walk func(n *schemas.Node, parentKey string)
	walk = func(n *schemas.Node, parentKey string) {
		key := stableKey(n, parentKey)
		// Sibling collisions (e.g. identical <li> rows) get an ordinal
		// suffix so distinct elements never share a key.
		if _, taken := byKey[key]; taken {
			for ord := 2; ; ord++ {
				cand := fmt.Sprintf("%s~%d", key, ord)
				if _, clash := byKey[cand]; !clash {
					key = cand
					break
				}
			}
		}
		byKey[key] = n
		byID[n.ID] = key
		for _, cid := range n.ChildIDs {
			if child, ok := snap.NodeMap[cid]; ok {
				walk(child, key)
			}
		}
	}

	if root := snap.Root(); root != nil {
		walk(root, "")
	}
	return byKey, byID
}

// stableKey builds the raw (pre-deduplication) key for one node.
func stableKey(n *schemas.Node, parentKey string) string {
	if n.BackendID != 0 {
		return fmt.Sprintf("b:%d", n.BackendID)
	}

	var b strings.Builder
	b.WriteString(n.Tag)
	if n.Type == schemas.NodeTypeText {
		b.WriteString("#text")
	}
	b.WriteByte('|')
	b.WriteString(n.Attr("id"))
	b.WriteByte('|')
	b.WriteString(n.Attr("name"))
	b.WriteByte('|')
	b.WriteString(n.Attr("data-testid"))
	b.WriteByte('|')
	b.WriteString(parentKey)
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d", n.Depth)
	return b.String()
}
