// Package canvas defines the core data types for design-canvas documents:
// elements, sizes, and placements.
//
// These types are the canonical serialization format shared by the resize
// engine, the persistence layer, and the vision model request/response
// payloads. The format is human-readable and designed for round-trip
// fidelity: a document exported and re-imported produces identical elements.
package canvas

import (
	"fmt"
	"math"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Element kinds as present in source documents.
const (
	KindText         = "text"
	KindImage        = "image"
	KindShape        = "shape"
	KindIcon         = "icon"
	KindUnclassified = "unclassified"
)

// ValidKinds is the set of recognized element kinds.
var ValidKinds = map[string]bool{
	KindText:         true,
	KindImage:        true,
	KindShape:        true,
	KindIcon:         true,
	KindUnclassified: true,
}

// =============================================================================
// Size - Canvas Dimensions
// =============================================================================

// Size is a canvas dimension pair in pixels.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Area returns width × height.
func (s Size) Area() float64 { return s.Width * s.Height }

// AspectRatio returns width / height. Returns 0 for a zero height.
func (s Size) AspectRatio() float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Diagonal returns the diagonal length of the canvas.
func (s Size) Diagonal() float64 {
	return math.Hypot(s.Width, s.Height)
}

// =============================================================================
// Element - One Positioned Design Object
// =============================================================================

// Element is one positioned object on the design canvas.
// Used in both documents and resize requests for consistency.
type Element struct {
	ID     string  `json:"id" bson:"id"`
	Kind   string  `json:"kind,omitempty" bson:"kind,omitempty"` // text, image, shape, icon, or unclassified
	Left   float64 `json:"left" bson:"left"`
	Top    float64 `json:"top" bson:"top"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	ScaleX float64 `json:"scale_x,omitempty" bson:"scale_x,omitempty"`
	ScaleY float64 `json:"scale_y,omitempty" bson:"scale_y,omitempty"`
	Text   string  `json:"text,omitempty" bson:"text,omitempty"`
	Fill   string  `json:"fill,omitempty" bson:"fill,omitempty"`
	Stroke string  `json:"stroke,omitempty" bson:"stroke,omitempty"`
}

// EffectiveWidth returns the rendered width (width × scaleX).
func (e *Element) EffectiveWidth() float64 { return e.Width * e.effScaleX() }

// EffectiveHeight returns the rendered height (height × scaleY).
func (e *Element) EffectiveHeight() float64 { return e.Height * e.effScaleY() }

// Area returns the rendered area of the element.
func (e *Element) Area() float64 { return e.EffectiveWidth() * e.EffectiveHeight() }

// CenterX returns the horizontal center of the rendered bounding box.
func (e *Element) CenterX() float64 { return e.Left + e.EffectiveWidth()/2 }

// CenterY returns the vertical center of the rendered bounding box.
func (e *Element) CenterY() float64 { return e.Top + e.EffectiveHeight()/2 }

// Validate checks that the element has an ID and non-negative geometry.
func (e *Element) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("element has no id")
	}
	if e.Width < 0 || e.Height < 0 {
		return fmt.Errorf("element %s: negative dimensions %gx%g", e.ID, e.Width, e.Height)
	}
	if math.IsNaN(e.Left) || math.IsNaN(e.Top) || math.IsNaN(e.Width) || math.IsNaN(e.Height) {
		return fmt.Errorf("element %s: non-finite geometry", e.ID)
	}
	return nil
}

func (e *Element) effScaleX() float64 {
	if e.ScaleX == 0 {
		return 1
	}
	return e.ScaleX
}

func (e *Element) effScaleY() float64 {
	if e.ScaleY == 0 {
		return 1
	}
	return e.ScaleY
}

// =============================================================================
// Placement - Proposed Geometry For One Element
// =============================================================================

// Placement is a proposed (left, top, scaleX, scaleY) for one element.
// Scales are absolute, not relative to the element's current scale.
type Placement struct {
	ID     string  `json:"id" bson:"id"`
	Left   float64 `json:"left" bson:"left"`
	Top    float64 `json:"top" bson:"top"`
	ScaleX float64 `json:"scale_x" bson:"scale_x"`
	ScaleY float64 `json:"scale_y" bson:"scale_y"`
}

// Apply returns a copy of e with the placement's geometry applied.
func (p Placement) Apply(e Element) Element {
	e.Left = p.Left
	e.Top = p.Top
	e.ScaleX = p.ScaleX
	e.ScaleY = p.ScaleY
	return e
}

// ApplyAll returns copies of elements with placements applied, matched by ID.
// Elements without a matching placement are returned unchanged.
func ApplyAll(elements []Element, placements []Placement) []Element {
	byID := make(map[string]Placement, len(placements))
	for _, p := range placements {
		byID[p.ID] = p
	}
	out := make([]Element, len(elements))
	for i, e := range elements {
		if p, ok := byID[e.ID]; ok {
			out[i] = p.Apply(e)
		} else {
			out[i] = e
		}
	}
	return out
}
