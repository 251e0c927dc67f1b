package training

// =============================================================================
// Prompt Improvement
// =============================================================================

// Pattern thresholds that trigger a guidance string. Values are means over
// the corresponding example set.
const (
	complexCanvasMean  = 0.7
	largeARChangeMean  = 0.5
	largeSizeRatioMean = 2.0
	smallSizeRatioMean = 0.5
)

// ImprovedPrompts emits natural-language guidance strings derived from the
// observed patterns, suitable for appending to instruction templates. The
// returned slice may be empty when no pattern crosses a threshold; nothing
// here mutates the live variant weights.
func ImprovedPrompts(p Patterns) []string {
	var prompts []string

	if p.HighQuality.Count > 0 {
		if p.HighQuality.MeanComplexity >= complexCanvasMean {
			prompts = append(prompts,
				"Complex canvases resize well when related elements are treated as groups: keep logical groups together and move them as units.")
		}
		if p.HighQuality.MeanAspectRatioChange >= largeARChangeMean {
			prompts = append(prompts,
				"Large aspect-ratio changes succeed when the reading order is re-flowed along the new dominant axis rather than uniformly squeezed.")
		}
	}

	if p.LowQuality.Count > 0 {
		if p.LowQuality.MeanSizeChangeRatio >= largeSizeRatioMean {
			prompts = append(prompts,
				"When the target canvas is much larger than the source, scale content up and spread groups out to avoid visual emptiness.")
		}
		if p.LowQuality.MeanSizeChangeRatio > 0 && p.LowQuality.MeanSizeChangeRatio <= smallSizeRatioMean {
			prompts = append(prompts,
				"When shrinking to a much smaller canvas, drop decorative elements to minimum scale first and protect the legibility of text.")
		}
		if p.LowQuality.MeanComplexity >= complexCanvasMean {
			prompts = append(prompts,
				"Dense canvases need explicit overlap checks: verify no two elements intersect after placement.")
		}
	}

	return prompts
}
