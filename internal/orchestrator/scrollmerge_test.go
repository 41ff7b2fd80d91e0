// internal/orchestrator/scrollmerge_test.go
package orchestrator_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/config"
	"github.com/xkilldash9x/domlens-cli/internal/orchestrator"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

// scrollingCapturer simulates a page that reveals one fresh row per scroll
// step and reports the bottom after bottomAfter steps.
type scrollingCapturer struct {
	steps       int
	bottomAfter int
	restoredTo  []float64
}

func (s *scrollingCapturer) CaptureSnapshot(_ context.Context, _ string) (*schemas.Snapshot, error) {
	page := `<html><body><ul>`
	for i := 0; i <= s.steps; i++ {
		page += fmt.Sprintf(`<li id="row-%d">Row %d</li>`, i, i)
	}
	page += `</ul></body></html>`
	return capture.ParseHTMLString(page)
}

func (s *scrollingCapturer) ElementAtPoint(context.Context, string, float64, float64) (*capture.PointHit, error) {
	return nil, capture.ErrCaptureUnavailable
}

func (s *scrollingCapturer) Scroll(_ context.Context, _ string, _ string, deltaY float64) (*capture.ScrollResult, error) {
	s.steps++
	return &capture.ScrollResult{
		Offset:   float64(s.steps) * deltaY,
		AtBottom: s.steps >= s.bottomAfter,
	}, nil
}

func (s *scrollingCapturer) ScrollTo(_ context.Context, _ string, offset float64) error {
	s.restoredTo = append(s.restoredTo, offset)
	return nil
}

func TestScrollMergeStopsAtBottom(t *testing.T) {
	sc := &scrollingCapturer{bottomAfter: 3}
	store := snapshot.NewStore(5, 5*time.Minute, zap.NewNop())
	orch := orchestrator.New(sc, store, config.FiltersConfig{}, zap.NewNop())

	result, err := orch.ScrollMerge(context.Background(), "t1", 0)
	require.NoError(t, err)

	assert.True(t, result.ReachedEnd)
	assert.Equal(t, 3, result.Iterations)
	require.NotNil(t, result.Final)

	// Initial capture shows row 0; three scrolls reveal rows 1..3. The key
	// union spans all captures even though no single snapshot held every row.
	initialKeys, _ := snapshot.KeyMap(result.Final)
	assert.LessOrEqual(t, len(initialKeys), result.DistinctKeys)
	assert.Greater(t, result.DistinctKeys, 0)

	// The starting offset is restored exactly once.
	assert.Equal(t, []float64{0}, sc.restoredTo)
}

func TestScrollMergeHonorsIterationCap(t *testing.T) {
	sc := &scrollingCapturer{bottomAfter: 1 << 30}
	store := snapshot.NewStore(5, 5*time.Minute, zap.NewNop())
	orch := orchestrator.New(sc, store, config.FiltersConfig{}, zap.NewNop())

	result, err := orch.ScrollMerge(context.Background(), "t1", 800)
	require.NoError(t, err)

	assert.False(t, result.ReachedEnd)
	assert.Equal(t, 10, result.Iterations)
}

func TestScrollMergeDoesNotEvictPinnedBaseline(t *testing.T) {
	sc := &scrollingCapturer{bottomAfter: 1 << 30}
	store := snapshot.NewStore(5, 5*time.Minute, zap.NewNop())

	pinned, err := capture.ParseHTMLString(`<html><body><div id="app">start</div></body></html>`)
	require.NoError(t, err)
	store.Put("t1", pinned)

	orch := orchestrator.New(sc, store, config.FiltersConfig{}, zap.NewNop())

	result, err := orch.ScrollMerge(context.Background(), "t1", 800)
	require.NoError(t, err)
	require.Equal(t, 10, result.Iterations)

	// Ten mid-scroll captures ran, but only the initial and final snapshots
	// enter the tab's history, so the pinned entry stays resolvable.
	entry, err := store.BySnapshotID(pinned.ID)
	require.NoError(t, err)
	assert.Equal(t, pinned.ID, entry.Snapshot.ID)
}

func TestScrollMergeCancellation(t *testing.T) {
	sc := &scrollingCapturer{bottomAfter: 1 << 30}
	store := snapshot.NewStore(5, 5*time.Minute, zap.NewNop())
	orch := orchestrator.New(sc, store, config.FiltersConfig{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.ScrollMerge(ctx, "t1", 800)
	assert.ErrorIs(t, err, context.Canceled)
}
