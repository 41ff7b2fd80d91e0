// File: internal/orchestrator/orchestrator.go

// Package orchestrator ties the capture boundary, the snapshot store and the
// analysis filters into the six request-level operations. It owns per-tab
// state: the retained snapshot history, the seen-element signature set used to
// mark new arrivals, and single-flight capture so concurrent requests for the
// same tab share one page walk.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/config"
	"github.com/xkilldash9x/domlens-cli/internal/diff"
	"github.com/xkilldash9x/domlens-cli/internal/filters"
	"github.com/xkilldash9x/domlens-cli/internal/inspect"
	"github.com/xkilldash9x/domlens-cli/internal/search"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

// BaselineLast is the sentinel DiffBaseline value meaning "the most recent
// snapshot stored before this capture".
const BaselineLast = "last"

// Overview section names accepted in OverviewRequest.Filters.
const (
	SectionInteractive = "interactive"
	SectionHeadings    = "headings"
	SectionPortals     = "portals"
	SectionActionable  = "actionable"
)

// Orchestrator coordinates captures and analyses per logical tab.
type Orchestrator struct {
	capturer capture.Capturer
	store    *snapshot.Store
	filters  config.FiltersConfig
	log      *zap.Logger

	// group collapses concurrent capture requests per tab id.
	group singleflight.Group

	mu   sync.Mutex
	tabs map[string]*tabState
}

// tabState is the per-tab bookkeeping beyond the snapshot store.
type tabState struct {
	mu sync.Mutex
	// seen holds stable keys of elements already surfaced to the caller, so
	// later responses can mark genuinely new arrivals.
	seen map[string]bool
}

// New creates an orchestrator around a capturer and a snapshot store.
func New(capturer capture.Capturer, store *snapshot.Store, filtersCfg config.FiltersConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		capturer: capturer,
		store:    store,
		filters:  filtersCfg,
		log:      logger.Named("orchestrator"),
		tabs:     make(map[string]*tabState),
	}
}

// captured bundles a fresh capture with the baseline that preceded it.
type captured struct {
	curr *schemas.Snapshot
	// prev is the newest stored snapshot from before this capture, nil when
	// the tab had no valid history.
	prev *snapshot.StoredSnapshot
}

// capture takes a fresh snapshot for the tab, retrying once on failure, and
// stores it. Concurrent callers for the same tab share a single walk.
func (o *Orchestrator) capture(ctx context.Context, tabID string) (*captured, error) {
	v, err, shared := o.group.Do(tabID, func() (any, error) {
		prev := o.store.PreviousForTab(tabID)

		snap, err := o.capturer.CaptureSnapshot(ctx, tabID)
		if err != nil {
			o.log.Warn("capture failed, retrying once",
				zap.String("tab_id", tabID), zap.Error(err))
			snap, err = o.capturer.CaptureSnapshot(ctx, tabID)
		}
		if err != nil {
			return nil, err
		}

		o.store.Put(tabID, snap)
		return &captured{curr: snap, prev: prev}, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		o.log.Debug("capture shared with concurrent request", zap.String("tab_id", tabID))
	}
	return v.(*captured), nil
}

func (o *Orchestrator) tab(tabID string) *tabState {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.tabs[tabID]
	if !ok {
		st = &tabState{seen: make(map[string]bool)}
		o.tabs[tabID] = st
	}
	return st
}

// markNew flags candidates whose stable key has not been surfaced for this tab
// before, then records them as seen.
func (o *Orchestrator) markNew(tabID string, snap *schemas.Snapshot, cands []schemas.Candidate) {
	st := o.tab(tabID)
	_, keyByID := snapshot.KeyMap(snap)

	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range cands {
		key, ok := keyByID[cands[i].NodeID]
		if !ok {
			continue
		}
		if !st.seen[key] {
			cands[i].New = true
			st.seen[key] = true
		}
	}
}

// DropTab discards all per-tab state, e.g. after navigation to an unrelated page.
func (o *Orchestrator) DropTab(tabID string) {
	o.store.DropTab(tabID)
	o.mu.Lock()
	delete(o.tabs, tabID)
	o.mu.Unlock()
}

// Overview captures the tab and returns the sectioned summary, optionally with
// a diff against a baseline snapshot.
func (o *Orchestrator) Overview(ctx context.Context, req schemas.OverviewRequest) (*schemas.OverviewResponse, error) {
	shot, err := o.capture(ctx, req.TabID)
	if err != nil {
		return nil, err
	}
	snap := shot.curr

	resp := &schemas.OverviewResponse{
		SnapshotID: snap.ID,
		URL:        snap.URL,
		Title:      snap.Title,
		NodeCount:  snap.NodeCount,
	}

	include := sectionSet(req.Filters)
	truncated := false

	if include[SectionInteractive] {
		rows, trunc := filters.Interactive(snap, req.VisibleOnly, req.MaxRows)
		resp.Interactive = rows
		truncated = truncated || trunc
	}
	if include[SectionHeadings] {
		rows, trunc := filters.Headings(snap, req.MaxRows)
		resp.Headings = rows
		truncated = truncated || trunc
	}
	if include[SectionPortals] {
		resp.Portals = filters.Portals(snap)
	}
	if include[SectionActionable] {
		result := filters.Actionable(snap, o.actionableOptions(req.MaxRows))
		o.markNew(req.TabID, snap, result.Candidates)
		resp.Actionable = result.Candidates
		truncated = truncated || result.Truncated
	}

	if req.DiffBaseline != "" {
		d, err := o.diffAgainst(req.TabID, req.DiffBaseline, shot)
		if err != nil {
			return nil, err
		}
		resp.Diff = d
	}

	if truncated {
		resp.Truncated = true
		resp.TruncationCause = "section row limits applied"
	}
	return resp, nil
}

// diffAgainst resolves the baseline reference and compares it with the fresh
// capture. A "last" baseline with no history yields the empty NoBaseline diff
// rather than an error, so the first call on a tab degrades gracefully.
func (o *Orchestrator) diffAgainst(tabID, baseline string, shot *captured) (*schemas.DiffResult, error) {
	var prev *schemas.Snapshot
	switch baseline {
	case BaselineLast:
		if shot.prev == nil {
			return &schemas.DiffResult{CurrentID: shot.curr.ID, NoBaseline: true}, nil
		}
		prev = shot.prev.Snapshot
	default:
		entry, err := o.store.BySnapshotID(baseline)
		if err != nil {
			return nil, fmt.Errorf("diff baseline %q: %w", baseline, err)
		}
		prev = entry.Snapshot
	}

	result := diff.Compare(prev, shot.curr)
	result = diff.FilterForDisplay(result, filters.IsInteractiveNode, prev, shot.curr)
	o.log.Debug("computed diff",
		zap.String("tab_id", tabID),
		zap.String("baseline_id", prev.ID),
		zap.Int("raw_total", result.RawCounts.Total()),
		zap.Int("filtered_total", result.FilteredCounts.Total()))
	return result, nil
}

// Structure captures the tab and returns the hierarchy outline.
func (o *Orchestrator) Structure(ctx context.Context, req schemas.StructureRequest) (*schemas.StructureResponse, error) {
	shot, err := o.capture(ctx, req.TabID)
	if err != nil {
		return nil, err
	}
	return &schemas.StructureResponse{
		SnapshotID: shot.curr.ID,
		Outline:    filters.Outline(shot.curr, req.Depth),
	}, nil
}

// Search captures the tab and runs the predicate search.
func (o *Orchestrator) Search(ctx context.Context, req schemas.SearchRequest) (*schemas.SearchResponse, error) {
	shot, err := o.capture(ctx, req.TabID)
	if err != nil {
		return nil, err
	}

	result, err := search.Run(shot.curr, search.Query{
		Tag:           req.Tag,
		Role:          req.Role,
		Text:          req.Text,
		Selector:      req.Selector,
		Attributes:    req.Attributes,
		ContextNodeID: req.ContextElementID,
		VisibleOnly:   req.VisibleOnly,
		Limit:         req.Limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &schemas.SearchResponse{
		SnapshotID:  shot.curr.ID,
		Matches:     result.Matches,
		TotalCount:  result.TotalCount,
		Breakdown:   result.Breakdown,
		Diagnostics: result.Diagnostics,
	}
	if result.TotalCount > len(result.Matches) {
		resp.Truncated = true
		resp.TruncationCause = fmt.Sprintf("showing %d of %d matches", len(result.Matches), result.TotalCount)
	}
	return resp, nil
}

// Inspect captures the tab and builds the deep element report.
func (o *Orchestrator) Inspect(ctx context.Context, req schemas.InspectRequest) (*schemas.InspectResponse, error) {
	shot, err := o.capture(ctx, req.TabID)
	if err != nil {
		return nil, err
	}

	report, err := inspect.Inspect(shot.curr, req.ElementID, inspect.Options{
		IncludeAncestry: req.IncludeAncestry,
		IncludeChildren: req.IncludeChildren,
		IncludeSiblings: req.IncludeSiblings,
	})
	if err != nil {
		return nil, err
	}

	return &schemas.InspectResponse{
		SnapshotID: shot.curr.ID,
		Element:    report.Element,
		Diagnosis:  report.Diagnosis,
		Ancestors:  report.Ancestors,
		Children:   report.Children,
		Siblings:   report.Siblings,
	}, nil
}

// Actionable captures the tab and runs the full candidate pipeline.
func (o *Orchestrator) Actionable(ctx context.Context, req schemas.ActionableRequest) (*schemas.ActionableResponse, error) {
	shot, err := o.capture(ctx, req.TabID)
	if err != nil {
		return nil, err
	}

	result := filters.Actionable(shot.curr, o.actionableOptions(req.MaxElements))
	o.markNew(req.TabID, shot.curr, result.Candidates)

	resp := &schemas.ActionableResponse{
		SnapshotID: shot.curr.ID,
		Candidates: result.Candidates,
		TotalFound: result.TotalFound,
	}
	if result.Truncated {
		resp.Truncated = true
		resp.TruncationCause = fmt.Sprintf("showing %d of %d candidates", len(result.Candidates), result.TotalFound)
	}
	return resp, nil
}

// CheckPortals captures the tab and reports overlay roots, optionally only
// those that appeared since a pinned baseline.
func (o *Orchestrator) CheckPortals(ctx context.Context, req schemas.PortalCheckRequest) (*schemas.PortalCheckResponse, error) {
	shot, err := o.capture(ctx, req.TabID)
	if err != nil {
		return nil, err
	}

	resp := &schemas.PortalCheckResponse{SnapshotID: shot.curr.ID}
	if req.SinceSnapshotID == "" {
		resp.Portals = filters.Portals(shot.curr)
		return resp, nil
	}

	entry, err := o.store.BySnapshotID(req.SinceSnapshotID)
	if err != nil {
		return nil, fmt.Errorf("portal baseline %q: %w", req.SinceSnapshotID, err)
	}
	resp.Portals = filters.NewPortals(entry.Snapshot, shot.curr)
	resp.NewOnly = true
	return resp, nil
}

// actionableOptions merges the configured filter tuning with a per-request cap.
func (o *Orchestrator) actionableOptions(maxElements int) filters.ActionableOptions {
	opts := filters.ActionableOptions{
		MaxElements:         o.filters.MaxElements,
		ClickableSubstrings: o.filters.ClickableSubstrings,
		ZeroAreaTestIDs:     o.filters.ZeroAreaTestIDs,
		EnhancedHeuristics:  o.filters.EnhancedHeuristics,
	}
	if maxElements > 0 {
		opts.MaxElements = maxElements
	}
	return opts
}

// sectionSet expands the request filter list; empty means every section.
func sectionSet(requested []string) map[string]bool {
	if len(requested) == 0 {
		return map[string]bool{
			SectionInteractive: true,
			SectionHeadings:    true,
			SectionPortals:     true,
			SectionActionable:  true,
		}
	}
	out := make(map[string]bool, len(requested))
	for _, s := range requested {
		out[s] = true
	}
	return out
}
