package classify

// =============================================================================
// Per-Type Rule Tables
// =============================================================================

// scalingTable bounds scale adjustments by element type. Text tolerates the
// widest unlocked range since reflow absorbs distortion; images and logos
// lock aspect to avoid visible stretching; decorations are the most flexible.
var scalingTable = map[ElementType]ScalingRules{
	TypeText:       {MinScale: 0.5, MaxScale: 1.4, Preferred: 1.0, LockAspect: false},
	TypeImage:      {MinScale: 0.4, MaxScale: 1.2, Preferred: 1.0, LockAspect: true},
	TypeLogo:       {MinScale: 0.4, MaxScale: 1.2, Preferred: 1.0, LockAspect: true},
	TypeIcon:       {MinScale: 0.5, MaxScale: 1.5, Preferred: 1.0, LockAspect: true},
	TypeShape:      {MinScale: 0.3, MaxScale: 1.5, Preferred: 1.0, LockAspect: false},
	TypeDecoration: {MinScale: 0.2, MaxScale: 1.4, Preferred: 1.0, LockAspect: false},
	TypeUnknown:    {MinScale: 0.5, MaxScale: 1.2, Preferred: 1.0, LockAspect: false},
}

// positioningTable assigns placement hints by element type.
var positioningTable = map[ElementType]PositioningHints{
	TypeText:       {Quadrant: "top-left", Alignment: "left", Margin: 20},
	TypeImage:      {Quadrant: "center", Alignment: "center", Margin: 20},
	TypeLogo:       {Quadrant: "top-left", Alignment: "left", Margin: 24},
	TypeIcon:       {Quadrant: "any", Alignment: "center", Margin: 16},
	TypeShape:      {Quadrant: "any", Alignment: "center", Margin: 20},
	TypeDecoration: {Quadrant: "any", Alignment: "edge", Margin: 8},
	TypeUnknown:    {Quadrant: "any", Alignment: "center", Margin: 20},
}

// scalingFor returns the scaling rules for an element type.
func scalingFor(t ElementType) ScalingRules {
	if r, ok := scalingTable[t]; ok {
		return r
	}
	return scalingTable[TypeUnknown]
}

// positioningFor returns the positioning hints for an element type.
func positioningFor(t ElementType) PositioningHints {
	if h, ok := positioningTable[t]; ok {
		return h
	}
	return positioningTable[TypeUnknown]
}

// ScalingFor exposes the rule table for callers that need bounds without a
// full classification pass (the orchestrator's clamp step).
func ScalingFor(t ElementType) ScalingRules { return scalingFor(t) }
