// Package training converts completed resize sessions and user feedback
// into quality-scored training examples, and mines those examples for
// pattern-based prompt improvements.
//
// Everything in this package is a pure computation; persistence of the
// resulting examples lives in pkg/store, and applying improved prompts to
// live traffic is an explicit, separate step on the variant selector.
package training

import (
	"errors"
	"fmt"
	"math"

	"github.com/framefit/framefit/pkg/canvas"
)

// Sentinel errors for feature extraction.
var (
	// ErrInvalidDimensions is returned for non-positive target dimensions.
	ErrInvalidDimensions = errors.New("target dimensions must be positive")

	// ErrNoElements is returned for an empty canvas snapshot.
	ErrNoElements = errors.New("canvas snapshot has no elements")
)

// maxElementFeatures caps the per-element feature list.
const maxElementFeatures = 100

// =============================================================================
// Features
// =============================================================================

// ElementFeature is the per-element slice of the input features.
type ElementFeature struct {
	Type   string  `json:"type" bson:"type"`
	Left   float64 `json:"left" bson:"left"`
	Top    float64 `json:"top" bson:"top"`
	Width  float64 `json:"width" bson:"width"`   // effective (scaled) width
	Height float64 `json:"height" bson:"height"` // effective (scaled) height
}

// Features summarizes one resize input for offline learning.
type Features struct {
	ElementCount      int              `json:"element_count" bson:"element_count"`
	CanvasComplexity  float64          `json:"canvas_complexity" bson:"canvas_complexity"`     // min(count/10, 1)
	AspectRatioChange float64          `json:"aspect_ratio_change" bson:"aspect_ratio_change"` // relative AR delta
	SizeChangeRatio   float64          `json:"size_change_ratio" bson:"size_change_ratio"`     // target/source area, clamped
	Elements          []ElementFeature `json:"elements" bson:"elements"`
}

// ExtractFeatures derives learning features from a canvas snapshot and the
// requested target dimensions. Source dimensions are clamped to at least 1
// so degenerate snapshots still produce finite ratios; non-positive target
// dimensions are a caller error and rejected.
func ExtractFeatures(elements []canvas.Element, source, target canvas.Size) (Features, error) {
	if !target.Valid() {
		return Features{}, fmt.Errorf("%w: %gx%g", ErrInvalidDimensions, target.Width, target.Height)
	}
	if len(elements) == 0 {
		return Features{}, ErrNoElements
	}

	source.Width = math.Max(source.Width, 1)
	source.Height = math.Max(source.Height, 1)

	sourceAR := source.AspectRatio()
	arChange := math.Abs(target.AspectRatio()-sourceAR) / math.Max(sourceAR, 0.1)

	sizeRatio := target.Area() / source.Area()
	sizeRatio = math.Min(math.Max(sizeRatio, 0.01), 100)

	n := len(elements)
	featN := min(n, maxElementFeatures)
	feats := make([]ElementFeature, featN)
	for i := range feats {
		e := &elements[i]
		feats[i] = ElementFeature{
			Type:   e.Kind,
			Left:   e.Left,
			Top:    e.Top,
			Width:  e.EffectiveWidth(),
			Height: e.EffectiveHeight(),
		}
	}

	return Features{
		ElementCount:      n,
		CanvasComplexity:  math.Min(float64(n)/10, 1),
		AspectRatioChange: arChange,
		SizeChangeRatio:   sizeRatio,
		Elements:          feats,
	}, nil
}
