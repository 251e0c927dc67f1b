// Package score computes a composite aesthetic quality score for a candidate
// layout.
//
// The score is a weighted sum of six sub-scores, each in [0,100]: visual
// balance, hierarchy clarity, spacing rhythm, alignment, proximity grouping,
// and contrast balance. Scoring is deterministic and performs no I/O, which
// makes it usable both on the hot resize path (telemetry) and inside the
// optimizer's improve-or-discard loop.
package score

import (
	"math"

	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/classify"
)

// =============================================================================
// Constants - Weights and Targets
// =============================================================================

// Sub-score weights. They sum to 1.
const (
	WeightBalance   = 0.25
	WeightHierarchy = 0.20
	WeightSpacing   = 0.15
	WeightAlignment = 0.15
	WeightProximity = 0.15
	WeightContrast  = 0.10
)

// alignTolerance is the pixel tolerance for shared-edge checks.
const alignTolerance = 10.0

// proximityFar is the mean pairwise distance at which grouping scores zero.
const proximityFar = 200.0

// tierTargetShare is the target area share of the canvas per importance tier.
var tierTargetShare = map[classify.Importance]float64{
	classify.ImportancePrimary:    0.15,
	classify.ImportanceSecondary:  0.08,
	classify.ImportanceTertiary:   0.05,
	classify.ImportanceDecorative: 0.02,
}

// =============================================================================
// Breakdown - Scoring Result
// =============================================================================

// Breakdown holds the six sub-scores and the weighted total, all in [0,100].
// Every field is always set; missing signals default to a neutral midpoint
// rather than an absent value, so the total is always well-defined.
type Breakdown struct {
	Balance   float64 `json:"balance" bson:"balance"`
	Hierarchy float64 `json:"hierarchy" bson:"hierarchy"`
	Spacing   float64 `json:"spacing" bson:"spacing"`
	Alignment float64 `json:"alignment" bson:"alignment"`
	Proximity float64 `json:"proximity" bson:"proximity"`
	Contrast  float64 `json:"contrast" bson:"contrast"`
	Total     float64 `json:"total" bson:"total"`
}

// neutral is the midpoint used when a sub-score has no signal to measure
// (e.g. a single element has no pairwise gaps).
const neutral = 50.0

// =============================================================================
// Scoring API
// =============================================================================

// Score evaluates a candidate layout against the target canvas size.
// Elements must carry their proposed geometry; analyses supply importance
// tiers and visual weights, and may be nil (every lookup falls back to
// secondary importance and mid visual weight).
func Score(elements []canvas.Element, analyses map[string]classify.Analysis, size canvas.Size) Breakdown {
	b := Breakdown{
		Balance:   visualBalance(elements, analyses, size),
		Hierarchy: hierarchyClarity(elements, analyses, size),
		Spacing:   spacingRhythm(elements),
		Alignment: alignment(elements),
		Proximity: proximityGrouping(elements, analyses),
		Contrast:  contrastBalance(elements, analyses),
	}
	b.Total = clamp(b.Balance*WeightBalance +
		b.Hierarchy*WeightHierarchy +
		b.Spacing*WeightSpacing +
		b.Alignment*WeightAlignment +
		b.Proximity*WeightProximity +
		b.Contrast*WeightContrast)
	return b
}

// =============================================================================
// Sub-Scores
// =============================================================================

// visualBalance scores how close the weighted centroid of all elements sits
// to the canvas center, normalized by half the canvas diagonal.
func visualBalance(elements []canvas.Element, analyses map[string]classify.Analysis, size canvas.Size) float64 {
	if len(elements) == 0 || !size.Valid() {
		return neutral
	}

	var cx, cy, total float64
	for i := range elements {
		e := &elements[i]
		w := float64(weightOf(e.ID, analyses)) * e.Area()
		cx += e.CenterX() * w
		cy += e.CenterY() * w
		total += w
	}
	if total == 0 {
		return neutral
	}
	cx /= total
	cy /= total

	dist := math.Hypot(cx-size.Width/2, cy-size.Height/2)
	half := size.Diagonal() / 2
	return clamp(100 * (1 - dist/half))
}

// hierarchyClarity scores each element's area against its importance tier's
// target share of the canvas, with a bonus for primary elements placed in
// the upper-left third.
func hierarchyClarity(elements []canvas.Element, analyses map[string]classify.Analysis, size canvas.Size) float64 {
	if len(elements) == 0 || !size.Valid() {
		return neutral
	}

	var sum float64
	for i := range elements {
		e := &elements[i]
		tier := importanceOf(e.ID, analyses)
		target := tierTargetShare[tier] * size.Area()
		if target <= 0 {
			sum += neutral
			continue
		}

		// Ratio of actual to target area, folded so over- and under-sizing
		// penalize symmetrically.
		ratio := e.Area() / target
		if ratio > 1 {
			ratio = 1 / ratio
		}
		s := 100 * ratio

		if tier == classify.ImportancePrimary &&
			e.CenterX() <= size.Width/3 && e.CenterY() <= size.Height/3 {
			s = clamp(s + 15)
		}
		sum += s
	}
	return clamp(sum / float64(len(elements)))
}

// spacingRhythm scores the consistency of pairwise gaps between bounding
// boxes: 100 − 50 × coefficient of variation, clamped to [0,100].
func spacingRhythm(elements []canvas.Element) float64 {
	gaps := pairwiseGaps(elements)
	if len(gaps) < 2 {
		return neutral
	}

	var mean float64
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	if mean == 0 {
		return 100
	}

	var variance float64
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	variance /= float64(len(gaps))
	cv := math.Sqrt(variance) / mean
	return clamp(100 - 50*cv)
}

// alignment scores the fraction of shared-edge checks satisfied across all
// element pairs: left/center/right and top/middle, tolerance alignTolerance.
func alignment(elements []canvas.Element) float64 {
	if len(elements) < 2 {
		return neutral
	}

	var matched, checks float64
	for i := range elements {
		for j := i + 1; j < len(elements); j++ {
			a, b := &elements[i], &elements[j]
			edges := [5][2]float64{
				{a.Left, b.Left},
				{a.CenterX(), b.CenterX()},
				{a.Left + a.EffectiveWidth(), b.Left + b.EffectiveWidth()},
				{a.Top, b.Top},
				{a.CenterY(), b.CenterY()},
			}
			for _, pair := range edges {
				checks++
				if math.Abs(pair[0]-pair[1]) <= alignTolerance {
					matched++
				}
			}
		}
	}
	return clamp(100 * matched / checks)
}

// proximityGrouping scores how tightly elements of the same importance tier
// cluster: 100 at zero mean pairwise distance, 0 at proximityFar or beyond.
// Tiers with fewer than two members contribute nothing.
func proximityGrouping(elements []canvas.Element, analyses map[string]classify.Analysis) float64 {
	tiers := make(map[classify.Importance][]*canvas.Element)
	for i := range elements {
		tier := importanceOf(elements[i].ID, analyses)
		tiers[tier] = append(tiers[tier], &elements[i])
	}

	var sum float64
	var groups int
	for _, members := range tiers {
		if len(members) < 2 {
			continue
		}
		var dist float64
		var pairs int
		for i := range members {
			for j := i + 1; j < len(members); j++ {
				dist += math.Hypot(
					members[i].CenterX()-members[j].CenterX(),
					members[i].CenterY()-members[j].CenterY(),
				)
				pairs++
			}
		}
		mean := dist / float64(pairs)
		sum += clamp(100 * (1 - mean/proximityFar))
		groups++
	}
	if groups == 0 {
		return neutral
	}
	return clamp(sum / float64(groups))
}

// contrastBalance scores the spread of visual weights. A ratio between 0.5
// and 0.8 is ideal; a flat layout (<0.3) reads as monotonous and an extreme
// spread (>0.9) as chaotic.
func contrastBalance(elements []canvas.Element, analyses map[string]classify.Analysis) float64 {
	if len(elements) == 0 {
		return neutral
	}

	lo, hi := 10, 1
	for i := range elements {
		w := weightOf(elements[i].ID, analyses)
		lo = min(lo, w)
		hi = max(hi, w)
	}
	if hi == 0 {
		return neutral
	}

	ratio := float64(hi-lo) / float64(hi)
	switch {
	case ratio >= 0.5 && ratio <= 0.8:
		return 100
	case ratio < 0.3:
		return 50
	case ratio > 0.9:
		return 70
	default:
		return 80
	}
}

// =============================================================================
// Internal Helpers
// =============================================================================

// pairwiseGaps collects non-negative horizontal and vertical gaps between
// element bounding boxes. Overlapping pairs contribute no gap.
func pairwiseGaps(elements []canvas.Element) []float64 {
	var gaps []float64
	for i := range elements {
		for j := i + 1; j < len(elements); j++ {
			a, b := &elements[i], &elements[j]
			if h := axisGap(a.Left, a.EffectiveWidth(), b.Left, b.EffectiveWidth()); h > 0 {
				gaps = append(gaps, h)
			}
			if v := axisGap(a.Top, a.EffectiveHeight(), b.Top, b.EffectiveHeight()); v > 0 {
				gaps = append(gaps, v)
			}
		}
	}
	return gaps
}

// axisGap returns the empty distance between two spans on one axis, or a
// non-positive value when they overlap.
func axisGap(aStart, aLen, bStart, bLen float64) float64 {
	if aStart > bStart {
		aStart, aLen, bStart, bLen = bStart, bLen, aStart, aLen
	}
	return bStart - (aStart + aLen)
}

func weightOf(id string, analyses map[string]classify.Analysis) int {
	if a, ok := analyses[id]; ok && a.Visual.Weight > 0 {
		return a.Visual.Weight
	}
	return 5
}

func importanceOf(id string, analyses map[string]classify.Analysis) classify.Importance {
	if a, ok := analyses[id]; ok && a.Importance != "" {
		return a.Importance
	}
	return classify.ImportanceSecondary
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
