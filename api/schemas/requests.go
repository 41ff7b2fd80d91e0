// api/schemas/requests.go
package schemas

// -- Orchestrator Request Surface --

// OverviewRequest asks for the sectioned page summary for one tab.
type OverviewRequest struct {
	TabID string `json:"tab_id"`
	// Filters selects which sections to include; empty means all.
	// Known values: "interactive", "headings", "portals", "actionable".
	Filters []string `json:"filters,omitempty"`
	// VisibleOnly restricts section rows to currently visible nodes.
	VisibleOnly bool `json:"visible_only,omitempty"`
	MaxRows     int  `json:"max_rows,omitempty"`
	// DiffBaseline, when set, also returns changes since that snapshot id.
	// The literal value "last" diffs against the most recent stored snapshot.
	DiffBaseline string `json:"diff_baseline,omitempty"`
}

// OverviewResponse is the sectioned candidate summary plus an optional diff.
type OverviewResponse struct {
	SnapshotID  string         `json:"snapshot_id"`
	URL         string         `json:"url,omitempty"`
	Title       string         `json:"title,omitempty"`
	NodeCount   int            `json:"node_count"`
	Interactive []Candidate    `json:"interactive,omitempty"`
	Headings    []HeadingEntry `json:"headings,omitempty"`
	Portals     []PortalRoot   `json:"portals,omitempty"`
	Actionable  []Candidate    `json:"actionable,omitempty"`
	Diff        *DiffResult    `json:"diff,omitempty"`
	Truncation
}

// StructureRequest asks for the pure hierarchy outline.
type StructureRequest struct {
	TabID string `json:"tab_id"`
	Depth int    `json:"depth,omitempty"`
}

// StructureResponse carries the outline rows.
type StructureResponse struct {
	SnapshotID string         `json:"snapshot_id"`
	Outline    []OutlineEntry `json:"outline"`
	Truncation
}

// SearchRequest is an ad-hoc predicate search over the current snapshot.
// All supplied criteria are ANDed; at least one must be present.
type SearchRequest struct {
	TabID      string            `json:"tab_id"`
	Tag        string            `json:"tag,omitempty"`
	Role       string            `json:"role,omitempty"`
	Text       string            `json:"text,omitempty"`
	Selector   string            `json:"selector,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	// ContextElementID scopes the search to descendants of one node.
	ContextElementID int64 `json:"context_element_id,omitempty"`
	VisibleOnly      bool  `json:"visible_only,omitempty"`
	Limit            int   `json:"limit,omitempty"`
}

// SearchResponse carries matches plus the whole-result visibility breakdown
// and qualitative diagnostics.
type SearchResponse struct {
	SnapshotID  string              `json:"snapshot_id"`
	Matches     []SearchMatch       `json:"matches"`
	TotalCount  int                 `json:"total_count"`
	Breakdown   VisibilityBreakdown `json:"breakdown"`
	Diagnostics SearchDiagnostics   `json:"diagnostics"`
	Truncation
}

// InspectRequest asks for the deep single-element report.
type InspectRequest struct {
	TabID           string `json:"tab_id"`
	ElementID       int64  `json:"element_id"`
	IncludeAncestry bool   `json:"include_ancestry,omitempty"`
	IncludeChildren bool   `json:"include_children,omitempty"`
	IncludeSiblings bool   `json:"include_siblings,omitempty"`
}

// ElementReport is the inspector's formatted info block for one node.
type ElementReport struct {
	NodeID       int64             `json:"node_id"`
	Tag          string            `json:"tag"`
	SemanticType SemanticType      `json:"semantic_type"`
	Layout       *Layout           `json:"layout,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Text         string            `json:"text,omitempty"`
	AriaLabel    string            `json:"aria_label,omitempty"`
	Value        string            `json:"value,omitempty"`
	Placeholder  string            `json:"placeholder,omitempty"`
	Selectors    []string          `json:"selectors,omitempty"`
}

// ActionabilityDiagnosis lists blocking conditions for one element and an
// overall verdict. OutOfViewport alone does not block: it is fixable by
// scrolling.
type ActionabilityDiagnosis struct {
	Actionable    bool     `json:"actionable"`
	Issues        []string `json:"issues,omitempty"`
	OutOfViewport bool     `json:"out_of_viewport,omitempty"`
	// ScrollContainerHint names an ancestor scrollable container to scroll
	// when the element reports zero height inside a virtualized region.
	ScrollContainerHint string `json:"scroll_container_hint,omitempty"`
}

// InspectResponse is the full element report with optional context sections.
type InspectResponse struct {
	SnapshotID string                 `json:"snapshot_id"`
	Element    ElementReport          `json:"element"`
	Diagnosis  ActionabilityDiagnosis `json:"diagnosis"`
	Ancestors  []ElementReport        `json:"ancestors,omitempty"`
	Children   []ElementReport        `json:"children,omitempty"`
	Siblings   []ElementReport        `json:"siblings,omitempty"`
	Truncation
}

// ActionableRequest asks for the deduplicated actionable candidate list.
type ActionableRequest struct {
	TabID       string `json:"tab_id"`
	MaxElements int    `json:"max_elements,omitempty"`
}

// ActionableResponse carries the deduplicated candidates.
type ActionableResponse struct {
	SnapshotID string      `json:"snapshot_id"`
	Candidates []Candidate `json:"candidates"`
	TotalFound int         `json:"total_found"`
	Truncation
}

// PortalCheckRequest asks for overlay roots, optionally only those that
// appeared since a baseline snapshot.
type PortalCheckRequest struct {
	TabID string `json:"tab_id"`
	// SinceSnapshotID limits the result to portals absent from the baseline.
	SinceSnapshotID string `json:"since_snapshot_id,omitempty"`
}

// PortalCheckResponse lists current or newly-appeared portal roots.
type PortalCheckResponse struct {
	SnapshotID string       `json:"snapshot_id"`
	Portals    []PortalRoot `json:"portals"`
	NewOnly    bool         `json:"new_only,omitempty"`
	Truncation
}

// Truncation is embedded in every response. When a serialized payload would
// exceed the configured ceiling, sections are dropped or trimmed and the flag
// plus a human-readable cause is set instead of returning oversized output.
type Truncation struct {
	Truncated       bool   `json:"truncated,omitempty"`
	TruncationCause string `json:"truncation_cause,omitempty"`
}

// SetTruncated flags the response and records why.
func (t *Truncation) SetTruncated(cause string) {
	t.Truncated = true
	t.TruncationCause = cause
}
