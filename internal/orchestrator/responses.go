// File: internal/orchestrator/responses.go
package orchestrator

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// ErrResponseTooLarge means a payload still exceeded the ceiling after every
// degradation step. It indicates a ceiling configured below the size of a
// minimal response, not a recoverable request problem.
var ErrResponseTooLarge = errors.New("response exceeds size ceiling")

// DefaultMaxResponseBytes is the serialized payload ceiling when the caller
// does not configure one.
const DefaultMaxResponseBytes = 48 * 1024

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// truncatable is satisfied by every response type via the embedded
// schemas.Truncation.
type truncatable interface {
	SetTruncated(cause string)
}

// shrinkStep removes or trims one section of a response and names what it cut.
// Steps run in order until the payload fits.
type shrinkStep struct {
	name  string
	apply func()
}

// Encoder serializes responses under a byte ceiling. Rather than returning an
// oversized payload or failing outright, it degrades the response by dropping
// sections in a fixed order and flags the result as truncated.
type Encoder struct {
	maxBytes int
}

// NewEncoder creates an encoder with the given ceiling; zero or negative means
// the default.
func NewEncoder(maxBytes int) *Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}
	return &Encoder{maxBytes: maxBytes}
}

// MaxBytes reports the configured ceiling.
func (e *Encoder) MaxBytes() int { return e.maxBytes }

// EncodeOverview serializes an overview, dropping sections least-essential
// first: diff records, then actionable, interactive, headings, portals.
func (e *Encoder) EncodeOverview(resp *schemas.OverviewResponse) ([]byte, error) {
	return e.encode(resp, []shrinkStep{
		{"diff_records", func() {
			if resp.Diff != nil {
				resp.Diff.Added = nil
				resp.Diff.Removed = nil
				resp.Diff.Modified = nil
			}
		}},
		{"actionable", func() { resp.Actionable = nil }},
		{"interactive", func() { resp.Interactive = nil }},
		{"headings", func() { resp.Headings = nil }},
		{"portals", func() { resp.Portals = nil }},
	})
}

// EncodeStructure serializes an outline, halving the rows until it fits.
func (e *Encoder) EncodeStructure(resp *schemas.StructureResponse) ([]byte, error) {
	return e.encode(resp, halvingSteps("outline", 4, func() int { return len(resp.Outline) }, func(n int) {
		resp.Outline = resp.Outline[:n]
	}))
}

// EncodeSearch serializes a search result. Matches are halved repeatedly; the
// breakdown and diagnostics always survive since they are the signal an empty
// page of matches still needs.
func (e *Encoder) EncodeSearch(resp *schemas.SearchResponse) ([]byte, error) {
	return e.encode(resp, halvingSteps("matches", 4, func() int { return len(resp.Matches) }, func(n int) {
		resp.Matches = resp.Matches[:n]
	}))
}

// EncodeInspect serializes an element report, shedding context sections before
// touching the element itself.
func (e *Encoder) EncodeInspect(resp *schemas.InspectResponse) ([]byte, error) {
	return e.encode(resp, []shrinkStep{
		{"siblings", func() { resp.Siblings = nil }},
		{"children", func() { resp.Children = nil }},
		{"ancestors", func() { resp.Ancestors = nil }},
		{"attributes", func() { resp.Element.Attributes = nil }},
	})
}

// EncodeActionable serializes the candidate list, halving it until it fits.
func (e *Encoder) EncodeActionable(resp *schemas.ActionableResponse) ([]byte, error) {
	return e.encode(resp, halvingSteps("candidates", 4, func() int { return len(resp.Candidates) }, func(n int) {
		resp.Candidates = resp.Candidates[:n]
	}))
}

// EncodePortals serializes the portal list, halving it until it fits.
func (e *Encoder) EncodePortals(resp *schemas.PortalCheckResponse) ([]byte, error) {
	return e.encode(resp, halvingSteps("portals", 4, func() int { return len(resp.Portals) }, func(n int) {
		resp.Portals = resp.Portals[:n]
	}))
}

// encode serializes resp, applying the shrink steps in order whenever the
// payload exceeds the ceiling. The steps mutate resp, so callers must not
// reuse it afterwards.
func (e *Encoder) encode(resp truncatable, steps []shrinkStep) ([]byte, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshaling response: %w", err)
	}
	if len(payload) <= e.maxBytes {
		return payload, nil
	}

	var dropped []string
	for _, step := range steps {
		step.apply()
		dropped = append(dropped, step.name)
		resp.SetTruncated(fmt.Sprintf("payload over %d bytes, dropped: %v", e.maxBytes, dropped))

		payload, err = json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("marshaling response: %w", err)
		}
		if len(payload) <= e.maxBytes {
			return payload, nil
		}
	}
	return nil, fmt.Errorf("%w: %d bytes after dropping %v (ceiling %d)",
		ErrResponseTooLarge, len(payload), dropped, e.maxBytes)
}

// halvingSteps builds rounds of "cut the slice in half", ending with a final
// step that empties it.
func halvingSteps(name string, rounds int, length func() int, trim func(int)) []shrinkStep {
	steps := make([]shrinkStep, 0, rounds+1)
	for i := 0; i < rounds; i++ {
		round := i + 1
		steps = append(steps, shrinkStep{
			name: fmt.Sprintf("%s/2^%d", name, round),
			apply: func() {
				trim(length() / 2)
			},
		})
	}
	steps = append(steps, shrinkStep{name: name, apply: func() { trim(0) }})
	return steps
}
