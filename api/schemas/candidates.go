// api/schemas/candidates.go
package schemas

// SemanticType is the coarse classification a filter derives for a node from
// its tag, input type and ARIA role.
type SemanticType string

const (
	SemanticButton    SemanticType = "button"
	SemanticLink      SemanticType = "link"
	SemanticTextInput SemanticType = "text_input"
	SemanticCheckbox  SemanticType = "checkbox"
	SemanticRadio     SemanticType = "radio"
	SemanticSelect    SemanticType = "select"
	SemanticTextarea  SemanticType = "textarea"
	SemanticSlider    SemanticType = "slider"
	SemanticTab       SemanticType = "tab"
	SemanticMenuItem  SemanticType = "menu_item"
	SemanticOption    SemanticType = "option"
	SemanticCell      SemanticType = "cell"
	SemanticHeading   SemanticType = "heading"
	SemanticContainer SemanticType = "container"
	SemanticOther     SemanticType = "other"
)

// Candidate is a display-oriented projection of a Node produced by a filter.
// Candidates are ephemeral: recomputed per request, never persisted.
type Candidate struct {
	NodeID       int64        `json:"node_id"`
	Tag          string       `json:"tag"`
	SemanticType SemanticType `json:"semantic_type"`
	Label        string       `json:"label,omitempty"`
	Selector     string       `json:"selector,omitempty"`
	// SelectorHints lists alternative selector suggestions, most specific first.
	SelectorHints []string `json:"selector_hints,omitempty"`
	Area          float64  `json:"area"`
	InViewport    bool     `json:"in_viewport"`
	Visible       bool     `json:"visible"`
	// Issues carries actionability problems detected for the node
	// (e.g. "zero-height", "disabled").
	Issues []string `json:"issues,omitempty"`
	// GroupKey clusters candidates that belong to the same logical widget.
	GroupKey string `json:"group_key,omitempty"`
	// New marks elements not present in the previously seen signature set.
	New bool `json:"new,omitempty"`
}

// PortalRoot describes one body-level overlay host (modal, dropdown, toast).
type PortalRoot struct {
	NodeID  int64  `json:"node_id"`
	Tag     string `json:"tag"`
	Class   string `json:"class,omitempty"`
	IDAttr  string `json:"id_attr,omitempty"`
	Role    string `json:"role,omitempty"`
	Reason  string `json:"reason"`
	Visible bool   `json:"visible"`
	Label   string `json:"label,omitempty"`
}

// OutlineEntry is one row of the pure hierarchy outline.
type OutlineEntry struct {
	NodeID   int64  `json:"node_id"`
	Tag      string `json:"tag"`
	Depth    int    `json:"depth"`
	Label    string `json:"label,omitempty"`
	Children int    `json:"children"`
}

// HeadingEntry is one document heading (h1..h6 or role=heading).
type HeadingEntry struct {
	NodeID int64  `json:"node_id"`
	Level  int    `json:"level"`
	Text   string `json:"text"`
}

// SearchMatch is one node matched by the search engine. Snippet is only set
// when the match came from a text criterion and wraps the matched run in
// <<...>> markers.
type SearchMatch struct {
	NodeID     int64  `json:"node_id"`
	Tag        string `json:"tag"`
	Selector   string `json:"selector,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	Visible    bool   `json:"visible"`
	InViewport bool   `json:"in_viewport"`
	ZeroHeight bool   `json:"zero_height"`
}

// VisibilityBreakdown counts visibility classes across all matches of a
// search, not just the returned page.
type VisibilityBreakdown struct {
	Visible       int `json:"visible"`
	Hidden        int `json:"hidden"`
	ZeroHeight    int `json:"zero_height"`
	OutOfViewport int `json:"out_of_viewport"`
	Total         int `json:"total"`
}

// SearchDiagnostics flags likely page patterns inferred from the visibility
// breakdown, so a caller can distinguish "truly absent" from "present but
// virtualized" and decide whether scrolling would help.
type SearchDiagnostics struct {
	VirtualScrolling    bool `json:"virtual_scrolling,omitempty"`
	RevealOnInteraction bool `json:"reveal_on_interaction,omitempty"`
	ScrollToReveal      bool `json:"scroll_to_reveal,omitempty"`
}
