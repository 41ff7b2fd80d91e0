// internal/orchestrator/responses_test.go
package orchestrator_test

import (
	"fmt"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/orchestrator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func candidates(n int) []schemas.Candidate {
	out := make([]schemas.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, schemas.Candidate{
			NodeID:   int64(i + 1),
			Tag:      "button",
			Label:    fmt.Sprintf("Action %d", i),
			Selector: fmt.Sprintf("#action-%d", i),
			Area:     4000,
			Visible:  true,
		})
	}
	return out
}

func changeRecords(n int) []schemas.ChangeRecord {
	out := make([]schemas.ChangeRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, schemas.ChangeRecord{
			Kind:   schemas.ChangeAdded,
			Key:    fmt.Sprintf("div|row-%d||||body|3", i),
			NodeID: int64(100 + i),
			Tag:    "div",
			Label:  strings.Repeat("x", 60),
		})
	}
	return out
}

func TestEncoderDefaultCeiling(t *testing.T) {
	assert.Equal(t, orchestrator.DefaultMaxResponseBytes, orchestrator.NewEncoder(0).MaxBytes())
	assert.Equal(t, 1024, orchestrator.NewEncoder(1024).MaxBytes())
}

func TestEncodeOverviewUnderCeilingUntouched(t *testing.T) {
	enc := orchestrator.NewEncoder(0)
	resp := &schemas.OverviewResponse{
		SnapshotID: "s1",
		NodeCount:  40,
		Actionable: candidates(5),
	}

	payload, err := enc.EncodeOverview(resp)
	require.NoError(t, err)

	var decoded schemas.OverviewResponse
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Len(t, decoded.Actionable, 5)
	assert.False(t, decoded.Truncated)
}

func TestEncodeOverviewDropsDiffRecordsFirst(t *testing.T) {
	enc := orchestrator.NewEncoder(8 * 1024)
	resp := &schemas.OverviewResponse{
		SnapshotID: "s1",
		NodeCount:  500,
		Actionable: candidates(10),
		Diff: &schemas.DiffResult{
			BaselineID: "s0",
			CurrentID:  "s1",
			Added:      changeRecords(200),
			RawCounts:  schemas.DiffCounts{Added: 200},
		},
	}

	payload, err := enc.EncodeOverview(resp)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(payload), enc.MaxBytes())

	var decoded schemas.OverviewResponse
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, decoded.Truncated)
	assert.Contains(t, decoded.TruncationCause, "diff_records")
	assert.Empty(t, decoded.Diff.Added, "diff records are the first section to go")
	assert.Len(t, decoded.Actionable, 10, "candidates survive when dropping the diff suffices")
	assert.Equal(t, 200, decoded.Diff.RawCounts.Added, "counts stay even when records are dropped")
}

func TestEncodeSearchHalvesMatches(t *testing.T) {
	matches := make([]schemas.SearchMatch, 0, 100)
	for i := 0; i < 100; i++ {
		matches = append(matches, schemas.SearchMatch{
			NodeID:   int64(i),
			Tag:      "tr",
			Selector: fmt.Sprintf(`[data-testid="row-%d"]`, i),
			Snippet:  strings.Repeat("result text ", 10),
			Visible:  true,
		})
	}
	resp := &schemas.SearchResponse{
		SnapshotID: "s1",
		Matches:    matches,
		TotalCount: 100,
		Breakdown:  schemas.VisibilityBreakdown{Total: 100, Visible: 100},
	}

	enc := orchestrator.NewEncoder(4 * 1024)
	payload, err := enc.EncodeSearch(resp)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(payload), enc.MaxBytes())

	var decoded schemas.SearchResponse
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, decoded.Truncated)
	assert.Less(t, len(decoded.Matches), 100)
	assert.NotEmpty(t, decoded.Matches, "halving should fit before the list empties")
	assert.Equal(t, 100, decoded.TotalCount)
	assert.Equal(t, 100, decoded.Breakdown.Total, "the breakdown always survives")
}

func TestEncodeInspectShedsContextBeforeElement(t *testing.T) {
	bulky := make([]schemas.ElementReport, 30)
	for i := range bulky {
		bulky[i] = schemas.ElementReport{
			NodeID: int64(i),
			Tag:    "div",
			Text:   strings.Repeat("context ", 20),
		}
	}
	resp := &schemas.InspectResponse{
		SnapshotID: "s1",
		Element: schemas.ElementReport{
			NodeID: 7, Tag: "button", Text: "Submit",
			Attributes: map[string]string{"id": "submit"},
		},
		Ancestors: bulky,
		Children:  bulky,
		Siblings:  bulky,
	}

	enc := orchestrator.NewEncoder(2 * 1024)
	payload, err := enc.EncodeInspect(resp)
	require.NoError(t, err)

	var decoded schemas.InspectResponse
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, decoded.Truncated)
	assert.Empty(t, decoded.Siblings)
	assert.Equal(t, int64(7), decoded.Element.NodeID, "the element itself is never dropped")
}

func TestEncodeFailsWhenNothingLeftToDrop(t *testing.T) {
	resp := &schemas.InspectResponse{
		SnapshotID: "s1",
		Element: schemas.ElementReport{
			NodeID: 1, Tag: "pre",
			Text: strings.Repeat("log line\n", 10000),
		},
	}

	_, err := orchestrator.NewEncoder(1024).EncodeInspect(resp)
	assert.ErrorIs(t, err, orchestrator.ErrResponseTooLarge)
}

func TestEncodeActionableEmptiesAsLastResort(t *testing.T) {
	resp := &schemas.ActionableResponse{
		SnapshotID: "s1",
		Candidates: candidates(50),
		TotalFound: 50,
	}

	// A ceiling below the size of a single candidate forces the final step.
	payload, err := orchestrator.NewEncoder(300).EncodeActionable(resp)
	require.NoError(t, err)

	var decoded schemas.ActionableResponse
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, decoded.Truncated)
	assert.Empty(t, decoded.Candidates)
	assert.Equal(t, 50, decoded.TotalFound)
}
