// internal/capture/capture.go

// Package capture defines the boundary to the live-page collaborator and two
// implementations: a chromedp-backed capturer that walks the rendered page in
// its own script engine, and a static-HTML capturer for offline analysis and
// test fixtures. Everything above this boundary operates on immutable
// snapshots only.
package capture

import (
	"context"
	"errors"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// ErrCaptureUnavailable means the live-page collaborator could not produce a
// snapshot. Callers treat any cached snapshot as stale, retry one fresh
// capture, then surface the failure.
var ErrCaptureUnavailable = errors.New("capture unavailable")

// PointHit describes the topmost element at a probed viewport point, used
// for occlusion checks.
type PointHit struct {
	Tag    string `json:"tag"`
	IDAttr string `json:"id_attr,omitempty"`
	Class  string `json:"class,omitempty"`
	NodeID int64  `json:"node_id,omitempty"`
}

// ScrollResult reports the outcome of a scroll step.
type ScrollResult struct {
	Offset   float64 `json:"offset"`
	AtBottom bool    `json:"at_bottom"`
}

// Capturer is the capture collaborator contract. Every method is a blocking,
// cancelable, timeout-bounded step: a call that does not return within its
// context deadline is a capture failure, never silently retried.
type Capturer interface {
	// CaptureSnapshot walks the live page and produces an immutable snapshot.
	CaptureSnapshot(ctx context.Context, tabID string) (*schemas.Snapshot, error)
	// ElementAtPoint resolves the topmost element at a viewport point.
	ElementAtPoint(ctx context.Context, tabID string, x, y float64) (*PointHit, error)
	// Scroll moves the viewport (container == "") or a named container by a
	// pixel delta and reads back the resulting offset and whether the bottom
	// was reached.
	Scroll(ctx context.Context, tabID string, container string, deltaY float64) (*ScrollResult, error)
}
