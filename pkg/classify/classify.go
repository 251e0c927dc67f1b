// Package classify labels canvas elements with semantic roles and geometric
// constraints for the resize engine.
//
// Classification is a pure function over the element list: every element
// receives an element type, an importance tier, scaling rules, positioning
// hints, and visual properties. The resize orchestrator and the fallback
// planner both consume this analysis; nothing here performs I/O.
//
// # Pipeline
//
// Classification runs in three stages:
//
//  1. Type inference: explicit kind tags first, then geometric heuristics
//  2. Importance scoring: size, position, and content signals per element
//  3. Primary cap: at most 30% of elements keep the primary tier
package classify

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/framefit/framefit/pkg/canvas"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// ElementType is the semantic role inferred for an element.
type ElementType string

// Semantic element types. Logo and decoration are inferred, never tagged.
const (
	TypeText       ElementType = "text"
	TypeImage      ElementType = "image"
	TypeShape      ElementType = "shape"
	TypeIcon       ElementType = "icon"
	TypeLogo       ElementType = "logo"
	TypeDecoration ElementType = "decoration"
	TypeUnknown    ElementType = "unknown"
)

// Importance is the visual-hierarchy tier assigned to an element.
type Importance string

// Importance tiers, highest first.
const (
	ImportancePrimary    Importance = "primary"
	ImportanceSecondary  Importance = "secondary"
	ImportanceTertiary   Importance = "tertiary"
	ImportanceDecorative Importance = "decorative"
)

const (
	// iconMaxDim is the largest dimension for the path-like icon heuristic.
	iconMaxDim = 100.0

	// imageAreaThreshold is the area above which an element is treated as an image.
	imageAreaThreshold = 50000.0

	// logoAreaThreshold is the area at or below which an image is treated as
	// a likely logo and forced primary.
	logoAreaThreshold = 10000.0

	// titleMaxRunes is the longest text still treated as a title.
	titleMaxRunes = 30

	// centerRadius is the distance from the canvas reference point within
	// which an element earns an importance point.
	centerRadius = 200.0

	// primaryShare caps the fraction of elements holding the primary tier.
	primaryShare = 0.3
)

// =============================================================================
// Analysis - Per-Element Classification Result
// =============================================================================

// ScalingRules bound how far an element may be scaled during resize.
type ScalingRules struct {
	MinScale   float64 `json:"min_scale"`
	MaxScale   float64 `json:"max_scale"`
	Preferred  float64 `json:"preferred"`
	LockAspect bool    `json:"lock_aspect"`
}

// PositioningHints guide where an element should land on the target canvas.
type PositioningHints struct {
	Quadrant  string  `json:"quadrant"`  // top-left, top-right, bottom-left, bottom-right, center, any
	Alignment string  `json:"alignment"` // left, center, right, edge
	Margin    float64 `json:"margin"`    // minimum distance from canvas edges
}

// VisualProperties capture how much an element draws the eye.
type VisualProperties struct {
	Weight         int    `json:"weight"` // 1 (barely visible) to 10 (dominant)
	ColorDominance string `json:"color_dominance"`
	DetailLevel    string `json:"detail_level"`
}

// Analysis is the full classification result for one element.
type Analysis struct {
	ElementType ElementType      `json:"element_type"`
	Importance  Importance       `json:"importance"`
	Scaling     ScalingRules     `json:"scaling"`
	Positioning PositioningHints `json:"positioning"`
	Visual      VisualProperties `json:"visual"`
}

// =============================================================================
// Classification API
// =============================================================================

// Classify analyzes all elements for the given canvas size and returns a map
// from element ID to analysis. Malformed elements are skipped with a warning
// on the logger. A nil logger suppresses warnings.
func Classify(elements []canvas.Element, size canvas.Size, logger *log.Logger) map[string]Analysis {
	valid := make([]canvas.Element, 0, len(elements))
	for i := range elements {
		if err := elements[i].Validate(); err != nil {
			if logger != nil {
				logger.Warn("skipping malformed element", "err", err)
			}
			continue
		}
		valid = append(valid, elements[i])
	}

	meanArea := meanElementArea(valid)
	out := make(map[string]Analysis, len(valid))
	for i := range valid {
		e := &valid[i]
		t := classifyType(e)
		visual := visualProperties(e, t, size)
		out[e.ID] = Analysis{
			ElementType: t,
			Importance:  classifyImportance(e, t, meanArea, size),
			Scaling:     scalingFor(t),
			Positioning: positioningFor(t),
			Visual:      visual,
		}
	}

	capPrimaries(out, len(valid))
	return out
}

// =============================================================================
// Type Inference
// =============================================================================

// classifyType infers the semantic role from explicit kind tags first, then
// geometric heuristics, in fixed priority order.
func classifyType(e *canvas.Element) ElementType {
	switch {
	case e.Kind == canvas.KindText && isLogoText(e.Text):
		return TypeLogo
	case e.Kind == canvas.KindText:
		return TypeText
	case e.Kind == canvas.KindImage:
		return TypeImage
	case e.Kind == canvas.KindIcon:
		return TypeIcon
	case e.Kind == canvas.KindShape && e.EffectiveWidth() < iconMaxDim && e.EffectiveHeight() < iconMaxDim:
		// Small path-like shapes read as icons regardless of fill.
		return TypeIcon
	case e.Area() > imageAreaThreshold:
		return TypeImage
	case isTransparent(e.Fill) && e.Stroke != "":
		return TypeDecoration
	case e.Kind == canvas.KindShape:
		return TypeShape
	default:
		return TypeUnknown
	}
}

func isLogoText(text string) bool {
	return strings.Contains(strings.ToLower(text), "logo")
}

func isTransparent(fill string) bool {
	switch strings.ToLower(fill) {
	case "", "none", "transparent":
		return true
	}
	return false
}

// =============================================================================
// Importance Scoring
// =============================================================================

// classifyImportance scores size, position, and content signals and maps the
// total to a tier. Titles and small images (likely logos) are forced primary.
func classifyImportance(e *canvas.Element, t ElementType, meanArea float64, size canvas.Size) Importance {
	if isTitle(e, t) {
		return ImportancePrimary
	}
	if (t == TypeImage || t == TypeLogo) && e.Area() <= logoAreaThreshold && e.Area() > 0 {
		return ImportancePrimary
	}

	score := 0
	if meanArea > 0 {
		switch ratio := e.Area() / meanArea; {
		case ratio > 1.5:
			score += 2
		case ratio > 1.0:
			score++
		}
	}
	if distanceFromCenter(e, size) <= centerRadius {
		score++
	}
	if e.CenterX() < size.Width/2 && e.CenterY() < size.Height/2 {
		score++
	}

	switch {
	case score >= 3:
		return ImportancePrimary
	case score == 2:
		return ImportanceSecondary
	case score == 1:
		return ImportanceTertiary
	default:
		return ImportanceDecorative
	}
}

// isTitle reports whether the element reads as a heading: short non-empty
// text. Font weight is not part of the element record, so length stands in
// for the short-bold-text signal.
func isTitle(e *canvas.Element, t ElementType) bool {
	if t != TypeText {
		return false
	}
	n := len([]rune(strings.TrimSpace(e.Text)))
	return n > 0 && n <= titleMaxRunes
}

func distanceFromCenter(e *canvas.Element, size canvas.Size) float64 {
	return math.Hypot(e.CenterX()-size.Width/2, e.CenterY()-size.Height/2)
}

func meanElementArea(elements []canvas.Element) float64 {
	if len(elements) == 0 {
		return 0
	}
	var total float64
	for i := range elements {
		total += elements[i].Area()
	}
	return total / float64(len(elements))
}

// =============================================================================
// Primary Cap
// =============================================================================

// capPrimaries demotes excess primary elements to secondary so that at most
// ceil(primaryShare × n) remain. Demotion order is ascending visual weight,
// then ascending ID, which keeps the result independent of input order.
func capPrimaries(analyses map[string]Analysis, n int) {
	if n == 0 {
		return
	}
	limit := int(math.Ceil(primaryShare * float64(n)))

	primaries := make([]string, 0, len(analyses))
	for id, a := range analyses {
		if a.Importance == ImportancePrimary {
			primaries = append(primaries, id)
		}
	}
	if len(primaries) <= limit {
		return
	}

	slices.SortFunc(primaries, func(a, b string) int {
		if d := analyses[a].Visual.Weight - analyses[b].Visual.Weight; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	for _, id := range primaries[:len(primaries)-limit] {
		a := analyses[id]
		a.Importance = ImportanceSecondary
		analyses[id] = a
	}
}

// =============================================================================
// Visual Properties
// =============================================================================

// visualProperties derives the visual-weight score and color/detail levels.
// Weight combines the element's share of the canvas with a per-type boost.
func visualProperties(e *canvas.Element, t ElementType, size canvas.Size) VisualProperties {
	share := 0.0
	if size.Area() > 0 {
		share = e.Area() / size.Area()
	}

	weight := 1 + int(math.Round(share*30))
	switch t {
	case TypeText, TypeLogo:
		weight += 2
	case TypeImage:
		weight++
	case TypeDecoration:
		weight--
	}
	weight = min(max(weight, 1), 10)

	dominance := "low"
	if !isTransparent(e.Fill) {
		dominance = "high"
	}

	detail := "low"
	switch {
	case t == TypeImage:
		detail = "high"
	case t == TypeText && len(e.Text) > titleMaxRunes:
		detail = "medium"
	}

	return VisualProperties{Weight: weight, ColorDominance: dominance, DetailLevel: detail}
}
