// Package vision defines the vision-capable model collaborator used for
// adaptive layout proposals, plus a Gemini-backed implementation.
//
// The model is consumed as a black box: canvas image + element list + size
// change in, proposed placements out. Failures (timeout, transport error,
// unparsable response) are normal operating conditions: the resize
// orchestrator converts them into an explicit Outcome and falls through to
// the deterministic planner instead of surfacing them to the caller.
package vision

import (
	"context"
	"errors"

	"github.com/framefit/framefit/pkg/canvas"
)

// Sentinel errors for model interactions.
var (
	// ErrEmptyResponse is returned when the model produced no candidates.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrMalformedResponse is returned when the response cannot be parsed
	// into a complete placement set.
	ErrMalformedResponse = errors.New("malformed model response")
)

// =============================================================================
// Request / Proposal
// =============================================================================

// Request is one placement proposal request sent to the model.
type Request struct {
	// Image is an optional rendered snapshot of the current canvas (PNG).
	Image []byte `json:"-"`

	// Elements is the current element list with source geometry.
	Elements []canvas.Element `json:"elements"`

	// Current and Target are the source and requested canvas sizes.
	Current canvas.Size `json:"current"`
	Target  canvas.Size `json:"target"`

	// Instructions is the selected prompt variant's template text.
	Instructions string `json:"-"`
}

// Proposal is the model's answer: one placement per element, plus an
// optional free-text rationale.
type Proposal struct {
	Placements []canvas.Placement `json:"placements"`
	Rationale  string             `json:"rationale,omitempty"`
}

// Model proposes placements for a canvas resize. Implementations must honor
// context cancellation; the orchestrator runs every call under a timeout.
type Model interface {
	ProposePlacements(ctx context.Context, req Request) (*Proposal, error)
}

// =============================================================================
// Outcome - Explicit Model Call Result
// =============================================================================

// Outcome is the explicit result of a model attempt. The fallback path is a
// first-class state transition in the orchestrator, not an exception, so
// the failure reason travels alongside the proposal instead of unwinding
// the stack.
type Outcome struct {
	Proposal *Proposal
	Reason   string
	Err      error
}

// Proposed wraps a successful proposal.
func Proposed(p *Proposal) Outcome { return Outcome{Proposal: p} }

// Failed wraps a model failure with a short reason for telemetry.
func Failed(reason string, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}

// OK reports whether the model produced a usable proposal.
func (o Outcome) OK() bool { return o.Proposal != nil }
