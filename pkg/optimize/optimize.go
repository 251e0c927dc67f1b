// Package optimize iteratively nudges a candidate layout to raise its
// aesthetic score.
//
// The optimizer runs up to four independent passes (balance, alignment,
// spacing, hierarchy). Each pass only fires when its sub-score sits below
// the configured threshold, only touches the elements contributing most to
// the deficit, and rescores after every proposed change. A change that
// lowers the total score is discarded, so the output never scores worse
// than the input.
package optimize

import (
	"fmt"
	"math"

	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/classify"
	"github.com/framefit/framefit/pkg/score"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultThreshold is the sub-score below which a pass activates.
const DefaultThreshold = 70.0

// snapDistance is how far the alignment pass will move an edge to snap it.
const snapDistance = 25.0

// balanceStep is the fraction of the centroid offset corrected per element.
const balanceStep = 0.5

// =============================================================================
// Result Types
// =============================================================================

// Geometry is the mutable part of an element's placement.
type Geometry struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
}

// Adjustment records one accepted change for explainability.
type Adjustment struct {
	ElementID string   `json:"element_id"`
	Pass      string   `json:"pass"`
	Before    Geometry `json:"before"`
	After     Geometry `json:"after"`
	Reason    string   `json:"reason"`
}

// Result is the optimized layout plus the explanation trail.
type Result struct {
	Elements    []canvas.Element `json:"elements"`
	Before      score.Breakdown  `json:"before"`
	After       score.Breakdown  `json:"after"`
	Notes       []string         `json:"notes"`
	Adjustments []Adjustment     `json:"adjustments"`
}

// =============================================================================
// Optimizer API
// =============================================================================

// Optimize runs the four passes over the candidate layout. A threshold of 0
// uses DefaultThreshold. The input slice is never mutated.
func Optimize(elements []canvas.Element, analyses map[string]classify.Analysis, size canvas.Size, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	work := make([]canvas.Element, len(elements))
	copy(work, elements)

	o := &optimizer{
		analyses:  analyses,
		size:      size,
		threshold: threshold,
		elements:  work,
	}
	o.current = score.Score(work, analyses, size)
	before := o.current

	o.passBalance()
	o.passAlignment()
	o.passSpacing()
	o.passHierarchy()

	return Result{
		Elements:    o.elements,
		Before:      before,
		After:       o.current,
		Notes:       o.notes,
		Adjustments: o.adjustments,
	}
}

// =============================================================================
// Optimizer State
// =============================================================================

type optimizer struct {
	analyses  map[string]classify.Analysis
	size      canvas.Size
	threshold float64
	elements  []canvas.Element
	current   score.Breakdown

	notes       []string
	adjustments []Adjustment
}

// tryChange applies fn to a copy of element i, rescores, and keeps the
// change only when the total does not drop. Returns whether it was kept.
func (o *optimizer) tryChange(i int, pass, reason string, fn func(e *canvas.Element)) bool {
	before := o.elements[i]
	candidate := before
	fn(&candidate)
	if candidate == before {
		return false
	}

	o.elements[i] = candidate
	next := score.Score(o.elements, o.analyses, o.size)
	if next.Total < o.current.Total {
		o.elements[i] = before
		return false
	}

	o.current = next
	o.adjustments = append(o.adjustments, Adjustment{
		ElementID: before.ID,
		Pass:      pass,
		Before:    geometryOf(&before),
		After:     geometryOf(&candidate),
		Reason:    reason,
	})
	return true
}

func (o *optimizer) note(format string, args ...any) {
	o.notes = append(o.notes, fmt.Sprintf(format, args...))
}

// =============================================================================
// Pass 1: Balance
// =============================================================================

// passBalance shifts the heaviest off-center elements toward correcting the
// weighted centroid offset.
func (o *optimizer) passBalance() {
	if o.current.Balance >= o.threshold || len(o.elements) == 0 {
		return
	}

	cx, cy := o.centroid()
	dx := (o.size.Width/2 - cx) * balanceStep
	dy := (o.size.Height/2 - cy) * balanceStep

	moved := 0
	for _, i := range o.heaviestFirst() {
		ok := o.tryChange(i, "balance",
			fmt.Sprintf("shifted %.0f,%.0f toward canvas center to correct weighted centroid", dx, dy),
			func(e *canvas.Element) {
				e.Left += dx
				e.Top += dy
			})
		if ok {
			moved++
		}
		if o.current.Balance >= o.threshold {
			break
		}
	}
	if moved > 0 {
		o.note("balance: moved %d element(s) toward the canvas center (now %.0f)", moved, o.current.Balance)
	}
}

// =============================================================================
// Pass 2: Alignment
// =============================================================================

// passAlignment snaps element edges to the nearest edge of another element
// when they are within snapDistance.
func (o *optimizer) passAlignment() {
	if o.current.Alignment >= o.threshold || len(o.elements) < 2 {
		return
	}

	snapped := 0
	for i := range o.elements {
		target, found := o.nearestEdge(i)
		if !found {
			continue
		}
		if o.tryChange(i, "alignment",
			fmt.Sprintf("snapped left edge to %.0fpx shared with a neighbor", target),
			func(e *canvas.Element) { e.Left = target }) {
			snapped++
		}
		if o.current.Alignment >= o.threshold {
			break
		}
	}
	if snapped > 0 {
		o.note("alignment: snapped %d element(s) onto shared edges", snapped)
	}
}

// nearestEdge finds another element's left edge within snapDistance of
// element i's left edge.
func (o *optimizer) nearestEdge(i int) (float64, bool) {
	best := snapDistance
	var target float64
	var found bool
	for j := range o.elements {
		if j == i {
			continue
		}
		d := math.Abs(o.elements[i].Left - o.elements[j].Left)
		if d > 0 && d < best {
			best = d
			target = o.elements[j].Left
			found = true
		}
	}
	return target, found
}

// =============================================================================
// Pass 3: Spacing
// =============================================================================

// passSpacing evens out vertical rhythm by moving each element toward the
// position implied by the mean vertical gap of the column order.
func (o *optimizer) passSpacing() {
	if o.current.Spacing >= o.threshold || len(o.elements) < 3 {
		return
	}

	order := o.topToBottom()
	gaps := make([]float64, 0, len(order)-1)
	for k := 1; k < len(order); k++ {
		prev := &o.elements[order[k-1]]
		gaps = append(gaps, o.elements[order[k]].Top-(prev.Top+prev.EffectiveHeight()))
	}
	mean := meanOf(gaps)
	if mean <= 0 {
		return
	}

	evened := 0
	for k := 1; k < len(order); k++ {
		prev := &o.elements[order[k-1]]
		want := prev.Top + prev.EffectiveHeight() + mean
		i := order[k]
		if o.tryChange(i, "spacing",
			fmt.Sprintf("moved to %.0fpx to even vertical rhythm (mean gap %.0fpx)", want, mean),
			func(e *canvas.Element) { e.Top = want }) {
			evened++
		}
	}
	if evened > 0 {
		o.note("spacing: evened vertical gaps for %d element(s) around a %.0fpx rhythm", evened, mean)
	}
}

// =============================================================================
// Pass 4: Hierarchy
// =============================================================================

// passHierarchy scales elements toward their importance tier's target area,
// within each element's scaling rules.
func (o *optimizer) passHierarchy() {
	if o.current.Hierarchy >= o.threshold {
		return
	}

	resized := 0
	for i := range o.elements {
		e := &o.elements[i]
		a, ok := o.analyses[e.ID]
		if !ok {
			continue
		}
		factor := o.hierarchyFactor(e, a)
		if factor == 1 {
			continue
		}
		if o.tryChange(i, "hierarchy",
			fmt.Sprintf("scaled ×%.2f toward the %s tier target area", factor, a.Importance),
			func(e *canvas.Element) {
				e.ScaleX = clampScale(scaleOf(e.ScaleX)*factor, a.Scaling)
				e.ScaleY = clampScale(scaleOf(e.ScaleY)*factor, a.Scaling)
			}) {
			resized++
		}
		if o.current.Hierarchy >= o.threshold {
			break
		}
	}
	if resized > 0 {
		o.note("hierarchy: resized %d element(s) toward tier target areas", resized)
	}
}

// hierarchyFactor returns the uniform scale factor that would move the
// element halfway to its tier's target area, or 1 when it is close enough.
func (o *optimizer) hierarchyFactor(e *canvas.Element, a classify.Analysis) float64 {
	target := tierShare(a.Importance) * o.size.Area()
	area := e.Area()
	if target <= 0 || area <= 0 {
		return 1
	}
	ratio := area / target
	if ratio > 0.8 && ratio < 1.25 {
		return 1
	}
	// Halfway in area space: sqrt of the halfway area ratio.
	return math.Sqrt(1 + (1/ratio-1)*0.5)
}

func tierShare(tier classify.Importance) float64 {
	switch tier {
	case classify.ImportancePrimary:
		return 0.15
	case classify.ImportanceSecondary:
		return 0.08
	case classify.ImportanceTertiary:
		return 0.05
	default:
		return 0.02
	}
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (o *optimizer) centroid() (float64, float64) {
	var cx, cy, total float64
	for i := range o.elements {
		e := &o.elements[i]
		w := e.Area()
		if a, ok := o.analyses[e.ID]; ok {
			w *= float64(a.Visual.Weight)
		}
		cx += e.CenterX() * w
		cy += e.CenterY() * w
		total += w
	}
	if total == 0 {
		return o.size.Width / 2, o.size.Height / 2
	}
	return cx / total, cy / total
}

// heaviestFirst returns element indices ordered by descending visual weight.
func (o *optimizer) heaviestFirst() []int {
	idx := make([]int, len(o.elements))
	for i := range idx {
		idx[i] = i
	}
	weight := func(i int) int {
		if a, ok := o.analyses[o.elements[i].ID]; ok {
			return a.Visual.Weight
		}
		return 5
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && weight(idx[j]) > weight(idx[j-1]); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

// topToBottom returns element indices ordered by ascending top coordinate.
func (o *optimizer) topToBottom() []int {
	idx := make([]int, len(o.elements))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && o.elements[idx[j]].Top < o.elements[idx[j-1]].Top; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

func geometryOf(e *canvas.Element) Geometry {
	return Geometry{Left: e.Left, Top: e.Top, ScaleX: scaleOf(e.ScaleX), ScaleY: scaleOf(e.ScaleY)}
}

func scaleOf(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

func clampScale(s float64, rules classify.ScalingRules) float64 {
	if rules.MinScale > 0 {
		s = math.Max(s, rules.MinScale)
	}
	if rules.MaxScale > 0 {
		s = math.Min(s, rules.MaxScale)
	}
	return s
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
