// internal/snapshot/build.go
package snapshot

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// Build assembles an immutable Snapshot from a node list in traversal order.
// It wires the id index and derived counters and enforces the structural
// invariants: every ChildID references a node in the same collection, and
// exactly one node (the document root) has a nil ParentID.
func Build(id string, nodes []*schemas.Node, viewport schemas.Viewport) (*schemas.Snapshot, error) {
	if id == "" {
		id = uuid.NewString()
	}

	nodeMap := make(map[int64]*schemas.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := nodeMap[n.ID]; dup {
			return nil, fmt.Errorf("snapshot %s: duplicate node id %d", id, n.ID)
		}
		nodeMap[n.ID] = n
	}

	roots := 0
	maxDepth := 0
	for _, n := range nodes {
		if n.ParentID == nil {
			roots++
		} else if _, ok := nodeMap[*n.ParentID]; !ok {
			return nil, fmt.Errorf("snapshot %s: node %d references missing parent %d", id, n.ID, *n.ParentID)
		}
		for _, cid := range n.ChildIDs {
			if _, ok := nodeMap[cid]; !ok {
				return nil, fmt.Errorf("snapshot %s: node %d references missing child %d", id, n.ID, cid)
			}
		}
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	if len(nodes) > 0 && roots != 1 {
		return nil, fmt.Errorf("snapshot %s: expected exactly one root node, found %d", id, roots)
	}

	return &schemas.Snapshot{
		ID:        id,
		Nodes:     nodes,
		NodeMap:   nodeMap,
		NodeCount: len(nodes),
		MaxDepth:  maxDepth,
		Viewport:  viewport,
	}, nil
}
