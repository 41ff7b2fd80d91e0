// File: internal/orchestrator/scrollmerge.go
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

// Bounds for the progressive scroll capture. Virtualized pages can grow
// content forever while scrolling, so the loop is capped on both iteration
// count and total distance regardless of whether the bottom is reached.
const (
	maxScrollIterations = 10
	maxScrollDistancePx = 20000.0
	defaultScrollStepPx = 800.0
	// scrollSettle paces scroll steps so lazy-loaded content has a chance to
	// render before the next capture.
	scrollSettle = 250 * time.Millisecond
)

// scrollRestorer is the optional capturer capability of jumping to an absolute
// viewport offset, used to put the page back after the loop.
type scrollRestorer interface {
	ScrollTo(ctx context.Context, tabID string, offset float64) error
}

// ScrollMergeResult summarizes a progressive scroll capture.
type ScrollMergeResult struct {
	// Final is the last snapshot taken, stored as the tab's newest entry.
	// Intermediate captures of the loop are never stored, so a pinned
	// baseline cannot be evicted by scrolling.
	Final *schemas.Snapshot
	// DistinctKeys counts unique stable element keys observed across all
	// captures of the loop, a lower bound on the page's real content.
	DistinctKeys int
	Iterations   int
	ReachedEnd   bool
}

// ScrollMerge scrolls the tab downward step by step, capturing after each
// move, and reports how much distinct content exists beyond the initial
// viewport. Individual step failures are tolerated; the loop stops at the
// bottom, at the iteration or distance cap, or on context cancellation.
// The original scroll offset is restored before returning when the capturer
// supports it.
func (o *Orchestrator) ScrollMerge(ctx context.Context, tabID string, stepPx float64) (*ScrollMergeResult, error) {
	if stepPx <= 0 {
		stepPx = defaultScrollStepPx
	}

	shot, err := o.capture(ctx, tabID)
	if err != nil {
		return nil, err
	}

	startOffset := shot.curr.Viewport.ScrollY
	if restorer, ok := o.capturer.(scrollRestorer); ok {
		defer func() {
			if rerr := restorer.ScrollTo(ctx, tabID, startOffset); rerr != nil {
				o.log.Warn("failed to restore scroll offset",
					zap.String("tab_id", tabID), zap.Error(rerr))
			}
		}()
	}

	keys := make(map[string]bool)
	collectKeys(keys, shot.curr)

	result := &ScrollMergeResult{Final: shot.curr}
	limiter := rate.NewLimiter(rate.Every(scrollSettle), 1)
	scrolled := 0.0

	for result.Iterations < maxScrollIterations && scrolled < maxScrollDistancePx {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result.Iterations++

		move, err := o.capturer.Scroll(ctx, tabID, "", stepPx)
		if err != nil {
			o.log.Warn("scroll step failed, continuing",
				zap.String("tab_id", tabID),
				zap.Int("iteration", result.Iterations),
				zap.Error(err))
			continue
		}
		scrolled += stepPx

		next, err := o.observe(ctx, tabID)
		if err != nil {
			o.log.Warn("capture after scroll failed, continuing",
				zap.String("tab_id", tabID),
				zap.Int("iteration", result.Iterations),
				zap.Error(err))
		} else {
			collectKeys(keys, next)
			result.Final = next
		}

		if move.AtBottom {
			result.ReachedEnd = true
			break
		}
	}

	if result.Final != shot.curr {
		o.store.Put(tabID, result.Final)
	}
	result.DistinctKeys = len(keys)
	o.log.Debug("scroll merge finished",
		zap.String("tab_id", tabID),
		zap.Int("iterations", result.Iterations),
		zap.Int("distinct_keys", result.DistinctKeys),
		zap.Bool("reached_end", result.ReachedEnd))
	return result, nil
}

// observe takes a fresh snapshot without recording it in the store, used for
// the intermediate captures of the scroll loop. Only the initial and final
// snapshots of a merge enter the tab's history.
func (o *Orchestrator) observe(ctx context.Context, tabID string) (*schemas.Snapshot, error) {
	snap, err := o.capturer.CaptureSnapshot(ctx, tabID)
	if err != nil {
		o.log.Warn("capture failed, retrying once",
			zap.String("tab_id", tabID), zap.Error(err))
		snap, err = o.capturer.CaptureSnapshot(ctx, tabID)
	}
	return snap, err
}

func collectKeys(into map[string]bool, snap *schemas.Snapshot) {
	byKey, _ := snapshot.KeyMap(snap)
	for key := range byKey {
		into[key] = true
	}
}
