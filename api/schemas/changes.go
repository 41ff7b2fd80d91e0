// api/schemas/changes.go
package schemas

// ChangeKind categorizes a ChangeRecord.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// Change field names used as keys in ChangeRecord.Fields.
const (
	FieldText       = "text"
	FieldVisibility = "visibility"
	FieldInViewport = "in_viewport"
	FieldAttributes = "attributes"
	FieldLayout     = "layout"
)

// FieldChange carries the old and new values of one modified field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AttributeChange describes the symmetric difference of two attribute maps.
type AttributeChange struct {
	Added   map[string]string      `json:"added,omitempty"`
	Removed map[string]string      `json:"removed,omitempty"`
	Changed map[string]FieldChange `json:"changed,omitempty"`
}

// Empty reports whether no attribute differed.
func (a AttributeChange) Empty() bool {
	return len(a.Added) == 0 && len(a.Removed) == 0 && len(a.Changed) == 0
}

// ChangeRecord is one entry in a diff between two snapshots. A given stable
// key appears in at most one of the added/removed/modified categories.
// NodeID refers to the current snapshot for added/modified records and to the
// previous snapshot for removed records.
type ChangeRecord struct {
	Kind   ChangeKind             `json:"kind"`
	Key    string                 `json:"key"`
	NodeID int64                  `json:"node_id"`
	Tag    string                 `json:"tag"`
	Label  string                 `json:"label,omitempty"`
	Fields map[string]FieldChange `json:"fields,omitempty"`
}

// DiffCounts summarizes record counts per category.
type DiffCounts struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

// Total returns the sum across all three categories.
func (c DiffCounts) Total() int { return c.Added + c.Removed + c.Modified }

// DiffResult is the output of comparing two snapshots. RawCounts always
// reflects the unfiltered change set so callers can detect aggressive display
// filtering; FilteredCounts equals RawCounts until a filter pass runs.
type DiffResult struct {
	BaselineID     string         `json:"baseline_id,omitempty"`
	CurrentID      string         `json:"current_id,omitempty"`
	Added          []ChangeRecord `json:"added"`
	Removed        []ChangeRecord `json:"removed"`
	Modified       []ChangeRecord `json:"modified"`
	RawCounts      DiffCounts     `json:"raw_counts"`
	FilteredCounts DiffCounts     `json:"filtered_counts"`
	// NoBaseline marks an empty diff returned because no prior snapshot
	// existed for the tab. It is never set on a real comparison.
	NoBaseline bool `json:"no_baseline,omitempty"`
}

// Empty reports whether the diff carries no records at all.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}
