// Package render produces debug previews of placement sets.
//
// The preview is a plain SVG: one rectangle per element, tinted by its
// importance tier, with the element ID as a label. It exists so a human can
// eyeball what the engine proposed without loading the canvas host.
package render

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/classify"
)

// Tier fill colors for the preview.
var tierFills = map[classify.Importance]string{
	classify.ImportancePrimary:    "#4c6ef5",
	classify.ImportanceSecondary:  "#74c0fc",
	classify.ImportanceTertiary:   "#b2f2bb",
	classify.ImportanceDecorative: "#dee2e6",
}

// SVGOption configures the preview renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	analyses   map[string]classify.Analysis
	showLabels bool
}

// WithAnalyses tints rectangles by importance tier.
func WithAnalyses(a map[string]classify.Analysis) SVGOption {
	return func(r *svgRenderer) { r.analyses = a }
}

// WithLabels draws element IDs inside their rectangles.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.showLabels = true } }

// RenderSVG renders elements with their placements applied onto a canvas of
// the given size. Elements are drawn in ID order for deterministic output.
func RenderSVG(elements []canvas.Element, placements []canvas.Placement, size canvas.Size, opts ...SVGOption) []byte {
	r := &svgRenderer{}
	for _, opt := range opts {
		opt(r)
	}

	placed := canvas.ApplyAll(elements, placements)
	slices.SortFunc(placed, func(a, b canvas.Element) int {
		return cmp.Compare(a.ID, b.ID)
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		size.Width, size.Height, size.Width, size.Height)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="#ffffff" stroke="#adb5bd"/>`+"\n",
		size.Width, size.Height)

	for i := range placed {
		e := &placed[i]
		fmt.Fprintf(&buf, `  <rect id="el-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.8" stroke="#495057"/>`+"\n",
			e.ID, e.Left, e.Top, e.EffectiveWidth(), e.EffectiveHeight(), r.fillFor(e.ID))
		if r.showLabels {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="11" fill="#212529">%s</text>`+"\n",
				e.Left+4, e.Top+14, e.ID)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) fillFor(id string) string {
	if a, ok := r.analyses[id]; ok {
		if fill, ok := tierFills[a.Importance]; ok {
			return fill
		}
	}
	return "#e9ecef"
}
