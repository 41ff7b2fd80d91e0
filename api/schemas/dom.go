// api/schemas/dom.go
package schemas

// NodeType distinguishes element nodes from bare text nodes in a capture.
type NodeType string

const (
	NodeTypeElement NodeType = "element"
	NodeTypeText    NodeType = "text"
)

// Layout is an axis-aligned bounding box in viewport-relative pixels.
// A nil *Layout on a Node means the node was not rendered at capture time.
type Layout struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rendered area of the box in px².
func (l *Layout) Area() float64 {
	if l == nil {
		return 0
	}
	return l.Width * l.Height
}

// Right returns the x coordinate of the right edge.
func (l *Layout) Right() float64 { return l.X + l.Width }

// Bottom returns the y coordinate of the bottom edge.
func (l *Layout) Bottom() float64 { return l.Y + l.Height }

// Contains reports whether other lies entirely inside l.
func (l *Layout) Contains(other *Layout) bool {
	if l == nil || other == nil {
		return false
	}
	return other.X >= l.X && other.Y >= l.Y &&
		other.Right() <= l.Right() && other.Bottom() <= l.Bottom()
}

// IntersectionArea returns the overlapping area between l and other in px².
func (l *Layout) IntersectionArea(other *Layout) float64 {
	if l == nil || other == nil {
		return 0
	}
	w := minf(l.Right(), other.Right()) - maxf(l.X, other.X)
	h := minf(l.Bottom(), other.Bottom()) - maxf(l.Y, other.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Node is one DOM element or text node at capture time. Node ids are
// capture-local: the same logical element gets a fresh id on every capture.
// BackendID, when non-zero, is the capture collaborator's persistent backend
// identity and is preferred for cross-capture matching.
type Node struct {
	ID         int64             `json:"id"`
	BackendID  int64             `json:"backend_id,omitempty"`
	Tag        string            `json:"tag"`
	Type       NodeType          `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Text       string            `json:"text,omitempty"`
	Visible    bool              `json:"visible"`
	InViewport bool              `json:"in_viewport"`
	Layout     *Layout           `json:"layout,omitempty"`
	ParentID   *int64            `json:"parent_id,omitempty"`
	ChildIDs   []int64           `json:"child_ids,omitempty"`
	Depth      int               `json:"depth"`
}

// IsElement reports whether the node is an element (as opposed to text).
func (n *Node) IsElement() bool { return n.Type == NodeTypeElement }

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[name]
}

// HasAttr reports whether the attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	if n.Attributes == nil {
		return false
	}
	_, ok := n.Attributes[name]
	return ok
}

// Viewport describes the visible window geometry at capture time.
type Viewport struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	ScrollY       float64 `json:"scroll_y"`
	ContentHeight float64 `json:"content_height"`
}

// Area returns the viewport area in px².
func (v Viewport) Area() float64 { return v.Width * v.Height }

// Snapshot is one immutable capture of a page's DOM as a node tree.
// Nodes are stored in traversal order; NodeMap provides O(1) lookup by id.
// A Snapshot must never be mutated after construction.
type Snapshot struct {
	ID        string          `json:"id"`
	URL       string          `json:"url,omitempty"`
	Title     string          `json:"title,omitempty"`
	Nodes     []*Node         `json:"nodes"`
	NodeMap   map[int64]*Node `json:"-"`
	NodeCount int             `json:"node_count"`
	MaxDepth  int             `json:"max_depth"`
	Viewport  Viewport        `json:"viewport"`
}

// Root returns the document root node (the only node with a nil ParentID),
// or nil for an empty snapshot.
func (s *Snapshot) Root() *Node {
	for _, n := range s.Nodes {
		if n.ParentID == nil {
			return n
		}
	}
	return nil
}

// Parent returns the parent of n within the snapshot, or nil for the root.
func (s *Snapshot) Parent(n *Node) *Node {
	if n == nil || n.ParentID == nil {
		return nil
	}
	return s.NodeMap[*n.ParentID]
}

// Children returns the ordered child nodes of n.
func (s *Snapshot) Children(n *Node) []*Node {
	if n == nil || len(n.ChildIDs) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(n.ChildIDs))
	for _, id := range n.ChildIDs {
		if c, ok := s.NodeMap[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Ancestors returns the chain from n's parent up to the root, nearest first,
// capped at limit hops (0 means unlimited).
func (s *Snapshot) Ancestors(n *Node, limit int) []*Node {
	var out []*Node
	for cur := s.Parent(n); cur != nil; cur = s.Parent(cur) {
		out = append(out, cur)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
