// Package plan implements the deterministic fallback placement algorithm.
//
// The planner is used whenever the vision model is unavailable, times out,
// or returns an unparsable response. It is a pure function of its input:
// identical (current size, target size, elements) always yields identical
// placements, which makes it the canonical fallback and the basis for the
// engine's reproducibility guarantees.
//
// # Algorithm
//
// Three ordered passes over all elements:
//
//  1. Proportional scale: conservative uniform scale plus position remap
//  2. Boundary clamp: keep every box inside the target canvas minus margin,
//     shrinking any element that cannot fit the usable area
//  3. Space-fill: grid redistribution when the layout covers too little of
//     the target canvas
package plan

import (
	"math"

	"github.com/framefit/framefit/pkg/canvas"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// Margin is the fixed distance kept between elements and canvas edges.
	Margin = 20.0

	// conservativeFactor damps the proportional scale so grown canvases do
	// not produce edge-to-edge elements.
	conservativeFactor = 0.8

	// maxScale caps the conservative scale.
	maxScale = 0.9

	// oversizeFit is the share of the usable dimension an oversized element
	// is shrunk to.
	oversizeFit = 0.9

	// sparseCoverage is the usable-area coverage below which the grid
	// redistribution kicks in.
	sparseCoverage = 0.3
)

// =============================================================================
// Planner API
// =============================================================================

// Plan computes placements for every element, mapping a layout built for
// current onto target. Elements with zero geometry are still placed; no
// element is ever left without a placement.
func Plan(elements []canvas.Element, current, target canvas.Size) []canvas.Placement {
	if len(elements) == 0 {
		return []canvas.Placement{}
	}

	scale := conservativeScale(current, target)
	widthRatio, heightRatio := remapRatios(current, target)

	placed := make([]canvas.Element, len(elements))
	out := make([]canvas.Placement, len(elements))
	for i := range elements {
		e := elements[i]
		p := canvas.Placement{
			ID:     e.ID,
			Left:   e.Left * widthRatio,
			Top:    e.Top * heightRatio,
			ScaleX: effScale(e.ScaleX) * scale,
			ScaleY: effScale(e.ScaleY) * scale,
		}
		p = clampToBounds(p, e, target)
		p = shrinkOversized(p, e, target)
		out[i] = p
		placed[i] = p.Apply(e)
	}

	if shouldRedistribute(placed, target) {
		out = gridRedistribute(elements, out, target)
	}
	return out
}

// =============================================================================
// Pass 1: Proportional Scale
// =============================================================================

// conservativeScale returns min(min(tw/cw, th/ch) × 0.8, 0.9).
func conservativeScale(current, target canvas.Size) float64 {
	if !current.Valid() || !target.Valid() {
		return maxScale
	}
	ratio := math.Min(target.Width/current.Width, target.Height/current.Height)
	return math.Min(ratio*conservativeFactor, maxScale)
}

func remapRatios(current, target canvas.Size) (w, h float64) {
	w, h = 1, 1
	if current.Width > 0 {
		w = target.Width / current.Width
	}
	if current.Height > 0 {
		h = target.Height / current.Height
	}
	return w, h
}

func effScale(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

// =============================================================================
// Pass 2: Boundary Clamp and Oversize Shrink
// =============================================================================

// clampToBounds keeps the scaled bounding box inside target minus Margin.
func clampToBounds(p canvas.Placement, e canvas.Element, target canvas.Size) canvas.Placement {
	w := e.Width * p.ScaleX
	h := e.Height * p.ScaleY

	p.Left = math.Max(Margin, math.Min(p.Left, target.Width-Margin-w))
	p.Top = math.Max(Margin, math.Min(p.Top, target.Height-Margin-h))
	return p
}

// shrinkOversized uniformly downscales an element whose scaled box exceeds
// the usable canvas, targeting oversizeFit of the tighter dimension. Aspect
// is preserved; the position is reclamped afterwards.
func shrinkOversized(p canvas.Placement, e canvas.Element, target canvas.Size) canvas.Placement {
	usableW := target.Width - 2*Margin
	usableH := target.Height - 2*Margin
	if usableW <= 0 || usableH <= 0 {
		return p
	}

	w := e.Width * p.ScaleX
	h := e.Height * p.ScaleY
	if w <= usableW && h <= usableH {
		return p
	}

	factor := 1.0
	if w > usableW && e.Width > 0 {
		factor = math.Min(factor, usableW*oversizeFit/w)
	}
	if h > usableH && e.Height > 0 {
		factor = math.Min(factor, usableH*oversizeFit/h)
	}
	p.ScaleX *= factor
	p.ScaleY *= factor
	return clampToBounds(p, e, target)
}

// Clamp keeps a placement's scaled bounding box inside the target canvas
// minus Margin. Exported for the orchestrator, which applies the same
// containment rule to model-proposed placements.
func Clamp(p canvas.Placement, e canvas.Element, target canvas.Size) canvas.Placement {
	return clampToBounds(shrinkOversized(p, e, target), e, target)
}

// =============================================================================
// Pass 3: Space-Fill Redistribution
// =============================================================================

// shouldRedistribute reports whether the placed elements cover less than
// sparseCoverage of the usable canvas area. Single elements stay put.
func shouldRedistribute(placed []canvas.Element, target canvas.Size) bool {
	if len(placed) < 2 {
		return false
	}
	usable := (target.Width - 2*Margin) * (target.Height - 2*Margin)
	if usable <= 0 {
		return false
	}
	var covered float64
	for i := range placed {
		covered += placed[i].Area()
	}
	return covered < sparseCoverage*usable
}

// gridRedistribute arranges elements on a ceil(sqrt(n)) grid, centering each
// in its cell and reclamping to bounds. Grid order follows input order, so
// the pass stays deterministic.
func gridRedistribute(elements []canvas.Element, placements []canvas.Placement, target canvas.Size) []canvas.Placement {
	n := len(elements)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))

	usableW := target.Width - 2*Margin
	usableH := target.Height - 2*Margin
	cellW := usableW / float64(cols)
	cellH := usableH / float64(rows)

	out := make([]canvas.Placement, n)
	for i := range elements {
		p := placements[i]
		w := elements[i].Width * p.ScaleX
		h := elements[i].Height * p.ScaleY

		col := i % cols
		row := i / cols
		p.Left = Margin + float64(col)*cellW + (cellW-w)/2
		p.Top = Margin + float64(row)*cellH + (cellH-h)/2
		out[i] = clampToBounds(p, elements[i], target)
	}
	return out
}
