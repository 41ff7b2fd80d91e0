// internal/capture/cdp.go
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultEvalTimeout bounds every live-page evaluation.
const DefaultEvalTimeout = 10 * time.Second

// CDPCapturer implements Capturer against a Chrome instance over the DevTools
// protocol. One chromedp tab context is kept per logical tab id; all
// evaluations are timeout-bounded and a timeout is reported as a capture
// failure rather than retried silently.
type CDPCapturer struct {
	allocCtx    context.Context
	log         *zap.Logger
	evalTimeout time.Duration

	mu   sync.Mutex
	tabs map[string]*tabHandle
}

type tabHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCDPCapturer creates a capturer bound to a chromedp allocator context,
// typically from chromedp.NewExecAllocator.
func NewCDPCapturer(allocCtx context.Context, logger *zap.Logger, evalTimeout time.Duration) *CDPCapturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evalTimeout <= 0 {
		evalTimeout = DefaultEvalTimeout
	}
	return &CDPCapturer{
		allocCtx:    allocCtx,
		log:         logger.Named("cdp-capturer"),
		evalTimeout: evalTimeout,
		tabs:        make(map[string]*tabHandle),
	}
}

// Navigate opens (or reuses) the tab and loads the URL.
func (c *CDPCapturer) Navigate(ctx context.Context, tabID, url string) error {
	tab, err := c.tab(tabID)
	if err != nil {
		return err
	}
	evalCtx, cancel := c.bound(ctx, tab)
	defer cancel()

	if err := chromedp.Run(evalCtx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("%w: navigate %s: %v", ErrCaptureUnavailable, url, err)
	}
	return nil
}

// CaptureSnapshot evaluates the walker script in the page and assembles the
// immutable snapshot from its output.
func (c *CDPCapturer) CaptureSnapshot(ctx context.Context, tabID string) (*schemas.Snapshot, error) {
	raw, err := c.evaluate(ctx, tabID, walkerJS)
	if err != nil {
		return nil, err
	}

	var payload struct {
		URL      string           `json:"url"`
		Title    string           `json:"title"`
		Viewport schemas.Viewport `json:"viewport"`
		Nodes    []*schemas.Node  `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed walker output: %v", ErrCaptureUnavailable, err)
	}

	// The walker emits parent ids only; child order follows traversal order.
	for _, n := range payload.Nodes {
		n.ChildIDs = nil
	}
	index := make(map[int64]*schemas.Node, len(payload.Nodes))
	for _, n := range payload.Nodes {
		index[n.ID] = n
	}
	for _, n := range payload.Nodes {
		if n.ParentID != nil {
			if parent, ok := index[*n.ParentID]; ok {
				parent.ChildIDs = append(parent.ChildIDs, n.ID)
			}
		}
	}

	snap, err := snapshot.Build("", payload.Nodes, payload.Viewport)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	snap.URL = payload.URL
	snap.Title = payload.Title
	c.log.Debug("captured snapshot",
		zap.String("tab_id", tabID),
		zap.String("snapshot_id", snap.ID),
		zap.Int("nodes", snap.NodeCount))
	return snap, nil
}

// ElementAtPoint probes the topmost element at a viewport point. The script
// probe supplies tag and attributes; the DevTools DOM domain resolves the
// backend node id at the same point, which keys the element across captures.
func (c *CDPCapturer) ElementAtPoint(ctx context.Context, tabID string, x, y float64) (*PointHit, error) {
	raw, err := c.evaluate(ctx, tabID, fmt.Sprintf(pointJS, x, y))
	if err != nil {
		return nil, err
	}
	var hit *PointHit
	if err := json.Unmarshal([]byte(raw), &hit); err != nil {
		return nil, fmt.Errorf("%w: malformed point result: %v", ErrCaptureUnavailable, err)
	}
	if hit == nil {
		return nil, nil
	}

	tab, err := c.tab(tabID)
	if err != nil {
		return hit, nil
	}
	evalCtx, cancel := c.bound(ctx, tab)
	defer cancel()
	if err := chromedp.Run(evalCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		backendID, _, _, err := dom.GetNodeForLocation(int64(x), int64(y)).Do(ctx)
		if err != nil {
			return err
		}
		hit.NodeID = int64(backendID)
		return nil
	})); err != nil {
		// The probe result stands on its own; the backend id is best effort.
		c.log.Debug("backend node resolution failed",
			zap.String("tab_id", tabID), zap.Error(err))
	}
	return hit, nil
}

// Scroll moves the viewport or a named container by deltaY pixels.
func (c *CDPCapturer) Scroll(ctx context.Context, tabID string, container string, deltaY float64) (*ScrollResult, error) {
	var script string
	if container == "" {
		script = fmt.Sprintf(scrollViewportJS, deltaY)
	} else {
		script = fmt.Sprintf(scrollContainerJS, container, deltaY)
	}
	raw, err := c.evaluate(ctx, tabID, script)
	if err != nil {
		return nil, err
	}
	var result *ScrollResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed scroll result: %v", ErrCaptureUnavailable, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: scroll container %q not found", ErrCaptureUnavailable, container)
	}
	return result, nil
}

// ScrollTo restores an absolute viewport offset, used by the progressive
// capture loop to put the page back where the caller left it.
func (c *CDPCapturer) ScrollTo(ctx context.Context, tabID string, offset float64) error {
	_, err := c.evaluate(ctx, tabID, fmt.Sprintf(scrollToJS, offset))
	return err
}

// CloseTab tears down the chromedp context for one tab.
func (c *CDPCapturer) CloseTab(tabID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tab, ok := c.tabs[tabID]; ok {
		tab.cancel()
		delete(c.tabs, tabID)
	}
}

// Shutdown closes every tab context.
func (c *CDPCapturer) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, tab := range c.tabs {
		tab.cancel()
		delete(c.tabs, id)
	}
}

// evaluate runs a script in the tab with the configured timeout. Evaluation
// failures and timeouts surface as ErrCaptureUnavailable.
func (c *CDPCapturer) evaluate(ctx context.Context, tabID, script string) (string, error) {
	tab, err := c.tab(tabID)
	if err != nil {
		return "", err
	}
	evalCtx, cancel := c.bound(ctx, tab)
	defer cancel()

	var raw string
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(script, &raw)); err != nil {
		c.log.Warn("page evaluation failed", zap.String("tab_id", tabID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	return raw, nil
}

// tab returns the chromedp context for a logical tab, creating it on first use.
func (c *CDPCapturer) tab(tabID string) (*tabHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tab, ok := c.tabs[tabID]; ok {
		return tab, nil
	}
	if c.allocCtx == nil {
		return nil, fmt.Errorf("%w: no browser allocator", ErrCaptureUnavailable)
	}
	ctx, cancel := chromedp.NewContext(c.allocCtx)
	tab := &tabHandle{ctx: ctx, cancel: cancel}
	c.tabs[tabID] = tab
	c.log.Debug("opened tab context", zap.String("tab_id", tabID))
	return tab, nil
}

// bound derives the evaluation context: the tab's chromedp context limited by
// both the caller's cancellation and the evaluation timeout.
func (c *CDPCapturer) bound(ctx context.Context, tab *tabHandle) (context.Context, context.CancelFunc) {
	evalCtx, cancel := context.WithTimeout(tab.ctx, c.evalTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return evalCtx, func() {
		stop()
		cancel()
	}
}
