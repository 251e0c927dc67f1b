// Package resize implements the orchestrator that drives one adaptive
// resize operation end to end.
//
// This package ties the engine together: classification, the vision model
// attempt under a timeout, the deterministic fallback, rule clamping,
// advisory scoring, and session persistence. By centralizing this logic the
// CLI and the HTTP API behave identically.
//
// # State machine
//
// One resize call walks Requesting → (ModelSucceeded | ModelFailed) →
// Scoring → Done. The fallback path is an explicit transition carried in a
// vision.Outcome, not an error unwind: a resize call always terminates in
// Done with a full placement set, degrading quality rather than
// availability.
//
// # Usage
//
//	engine := resize.NewEngine(model, selector, st, c, logger)
//	result, err := engine.Resize(ctx, resize.Options{
//	    Elements: elements,
//	    Current:  canvas.Size{Width: 800, Height: 600},
//	    Target:   canvas.Size{Width: 1600, Height: 900},
//	    UserID:   "user-42",
//	})
package resize

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/optimize"
	"github.com/framefit/framefit/pkg/score"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultModelTimeout bounds the vision model attempt. On expiry the
	// engine falls through to the deterministic planner.
	DefaultModelTimeout = 8 * time.Second

	// DefaultOptimizeThreshold is the sub-score below which the optimizer
	// pass activates when requested.
	DefaultOptimizeThreshold = optimize.DefaultThreshold
)

// Sentinel errors for resize input validation.
var (
	// ErrInvalidSize is returned for non-positive canvas dimensions.
	ErrInvalidSize = errors.New("canvas dimensions must be positive")

	// ErrNoElements is returned for an empty element list.
	ErrNoElements = errors.New("no elements to resize")
)

// =============================================================================
// Options - One Resize Request
// =============================================================================

// Options contains all configuration for one resize call.
type Options struct {
	// Elements is the source element snapshot.
	Elements []canvas.Element `json:"elements"`

	// Current and Target are the source and requested canvas sizes.
	Current canvas.Size `json:"current"`
	Target  canvas.Size `json:"target"`

	// UserID selects the sticky prompt variant. Empty maps to the
	// anonymous bucket.
	UserID string `json:"user_id,omitempty"`

	// Image is an optional rendered canvas snapshot forwarded to the model.
	Image []byte `json:"-"`

	// ApplyOptimizer rewrites the returned placements with the optimizer's
	// output when the score falls below OptimizeThreshold. Off by default:
	// model output is authoritative and optimization is advisory.
	ApplyOptimizer bool `json:"apply_optimizer,omitempty"`

	// OptimizeThreshold overrides DefaultOptimizeThreshold when positive.
	OptimizeThreshold float64 `json:"optimize_threshold,omitempty"`

	// SkipCache bypasses the placement cache for this call.
	SkipCache bool `json:"skip_cache,omitempty"`

	// Logger receives progress events. Defaults to a discard logger.
	Logger *log.Logger `json:"-"`
}

// Validate checks required fields and applies defaults.
func (o *Options) Validate() error {
	if !o.Current.Valid() {
		return fmt.Errorf("%w: current %gx%g", ErrInvalidSize, o.Current.Width, o.Current.Height)
	}
	if !o.Target.Valid() {
		return fmt.Errorf("%w: target %gx%g", ErrInvalidSize, o.Target.Width, o.Target.Height)
	}
	if len(o.Elements) == 0 {
		return ErrNoElements
	}
	if o.OptimizeThreshold <= 0 {
		o.OptimizeThreshold = DefaultOptimizeThreshold
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// =============================================================================
// Result - One Resize Outcome
// =============================================================================

// Result is the outcome of one resize call. Placements always cover every
// input element.
type Result struct {
	Placements   []canvas.Placement    `json:"placements"`
	UsedFallback bool                  `json:"used_fallback"`
	Score        score.Breakdown       `json:"score"`
	Notes        []string              `json:"notes,omitempty"`
	Adjustments  []optimize.Adjustment `json:"adjustments,omitempty"`
	SessionID    string                `json:"session_id,omitempty"`
	VariantID    string                `json:"variant_id,omitempty"`
	Rationale    string                `json:"rationale,omitempty"`
	CacheHit     bool                  `json:"cache_hit,omitempty"`
	Duration     time.Duration         `json:"-"`
}
