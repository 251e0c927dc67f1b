// Package pkg provides the core libraries for Framefit layout adaptation.
//
// # Overview
//
// Framefit resizes design-canvas layouts to new target dimensions. A vision
// model proposes placements; a deterministic geometric planner guarantees a
// usable result when the model is unavailable, times out, or returns
// malformed output. The pkg directory is organized into four main areas:
//
//  1. Layout domain - element classification, scoring, planning, optimization
//  2. Model integration - Gemini calls, response parsing, retries
//  3. Experimentation - prompt variants, assignment, significance testing
//  4. Infrastructure - caching, persistence, observability
//
// # Architecture
//
// The typical data flow through a resize:
//
//	Canvas snapshot (elements + size)
//	         ↓
//	    [classify] package (element types, importance tiers, scaling rules)
//	         ↓
//	    [vision] package (model proposal) or [plan] package (fallback)
//	         ↓
//	    [resize] package (rule enforcement, bounds clamping)
//	         ↓
//	    [score] / [optimize] packages (aesthetic evaluation)
//	         ↓
//	    Placements + session record
//
// # Quick Start
//
// Resize a layout with the deterministic planner only:
//
//	import (
//	    "context"
//	    "github.com/framefit/framefit/pkg/canvas"
//	    "github.com/framefit/framefit/pkg/resize"
//	)
//
//	engine := resize.NewEngine(nil, nil, nil, nil, nil)
//	result, err := engine.Resize(context.Background(), resize.Options{
//	    Elements: elements,
//	    Current:  canvas.Size{Width: 800, Height: 600},
//	    Target:   canvas.Size{Width: 1600, Height: 900},
//	})
//
// # Main Packages
//
// ## Layout Domain
//
// [canvas] - Core geometry types: sizes, elements, placements.
//
// [classify] - Element type detection, importance tiers with a 30% primary
// cap, and per-type scaling and positioning rules.
//
// [plan] - The deterministic fallback planner: conservative proportional
// scaling, margin clamping, oversize shrinking, grid redistribution.
//
// [score] - Six weighted aesthetic sub-scores rolled into a 0-100 total.
//
// [optimize] - Never-regress adjustment passes driven by the sub-scores.
//
// ## Model Integration
//
// [vision] - The model interface, the Gemini implementation, and strict
// response validation. Failures map to explicit outcomes, never panics.
//
// ## Experimentation
//
// [experiment] - Weighted prompt-variant selection with sticky per-user
// assignment, running metrics, auto-optimization, and z-tests.
//
// [training] - Feature extraction, quality scoring, and pattern analysis
// feeding the retrain loop.
//
// ## Infrastructure
//
// [resize] - The orchestrator tying everything together.
//
// [cache] - Placement and preview caching: file-backed for the CLI, Redis
// for the server, null for tests.
//
// [store] - Session and training-example persistence: in-memory and
// MongoDB implementations.
//
// [observability] - Pluggable hooks for resize, model, and store events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/classify/...     # Specific package
//
// [canvas]: https://pkg.go.dev/github.com/framefit/framefit/pkg/canvas
// [classify]: https://pkg.go.dev/github.com/framefit/framefit/pkg/classify
// [plan]: https://pkg.go.dev/github.com/framefit/framefit/pkg/plan
// [score]: https://pkg.go.dev/github.com/framefit/framefit/pkg/score
// [optimize]: https://pkg.go.dev/github.com/framefit/framefit/pkg/optimize
// [vision]: https://pkg.go.dev/github.com/framefit/framefit/pkg/vision
// [experiment]: https://pkg.go.dev/github.com/framefit/framefit/pkg/experiment
// [training]: https://pkg.go.dev/github.com/framefit/framefit/pkg/training
// [resize]: https://pkg.go.dev/github.com/framefit/framefit/pkg/resize
// [cache]: https://pkg.go.dev/github.com/framefit/framefit/pkg/cache
// [store]: https://pkg.go.dev/github.com/framefit/framefit/pkg/store
// [observability]: https://pkg.go.dev/github.com/framefit/framefit/pkg/observability
package pkg
