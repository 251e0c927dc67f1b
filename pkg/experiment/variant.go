// Package experiment implements prompt-variant experimentation for the
// resize engine: sticky assignment of users to instruction templates,
// per-variant outcome metrics, weight auto-optimization, and statistical
// significance testing between variants.
//
// The registry is instance state, not a module-level singleton: construct a
// Selector per process (or per test) and inject it where needed. Metric
// updates are applied under the selector's lock so concurrent feedback
// submissions never lose updates; sticky assignments use insert-if-absent
// semantics so a user cannot flap between variants.
package experiment

import "time"

// =============================================================================
// Variant - One Instruction Template Under Test
// =============================================================================

// Metrics accumulates outcome data for one variant.
type Metrics struct {
	TotalUses     int     `json:"total_uses"`
	AverageRating float64 `json:"average_rating"` // running mean of 1–5 ratings
	SuccessRate   float64 `json:"success_rate"`   // percent of ratings ≥ 4
	AvgLatencyMs  float64 `json:"avg_latency_ms"` // running mean processing time

	successes int
}

// Variant is a named instruction template with a traffic share and
// accumulated outcome metrics.
type Variant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Template  string    `json:"template"`
	Weight    float64   `json:"weight"` // 0–100; active weights sum to 100
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Metrics   Metrics   `json:"metrics"`
}

// Performance is the composite used to rank variants during weight
// optimization: average rating × success rate.
func (v *Variant) Performance() float64 {
	return v.Metrics.AverageRating * v.Metrics.SuccessRate
}

// =============================================================================
// Built-In Templates
// =============================================================================

// DefaultVariants are the instruction templates registered at startup, each
// receiving an equal traffic share. IDs are stable across releases so that
// sticky assignments survive restarts when a shared assignment store is used.
func DefaultVariants() []Variant {
	return []Variant{
		{
			ID:   "balanced-v1",
			Name: "Balanced composition",
			Template: "You are a layout assistant for a design canvas. Given the " +
				"element list, the current canvas size, and the target size, propose a " +
				"placement (left, top, scale_x, scale_y) for every element. Keep the " +
				"composition visually balanced around the canvas center, preserve the " +
				"reading order, and keep at least 20px between elements and the edges. " +
				"Respond with JSON: {\"placements\": [{\"id\", \"left\", \"top\", " +
				"\"scale_x\", \"scale_y\"}], \"rationale\"}.",
		},
		{
			ID:   "hierarchy-v1",
			Name: "Hierarchy first",
			Template: "You are a layout assistant for a design canvas. Propose a " +
				"placement for every element for the target canvas size. Size elements " +
				"by importance: headings and logos largest, supporting text and images " +
				"mid-sized, decorations smallest. Anchor the most important element in " +
				"the upper-left third. Keep a 20px margin from all edges. Respond with " +
				"JSON: {\"placements\": [{\"id\", \"left\", \"top\", \"scale_x\", " +
				"\"scale_y\"}], \"rationale\"}.",
		},
		{
			ID:   "whitespace-v1",
			Name: "Whitespace aware",
			Template: "You are a layout assistant for a design canvas. Propose a " +
				"placement for every element for the target canvas size. Distribute " +
				"elements so the canvas does not look empty: group related elements, " +
				"keep consistent gaps between groups, and scale content up moderately " +
				"when the target is much larger than the source. Keep a 20px margin " +
				"from all edges. Respond with JSON: {\"placements\": [{\"id\", " +
				"\"left\", \"top\", \"scale_x\", \"scale_y\"}], \"rationale\"}.",
		},
	}
}
