package training

// =============================================================================
// Pattern Analysis
// =============================================================================

// Quality cutoffs partitioning examples into outcome sets.
const (
	highQualityCutoff = 0.8
	lowQualityCutoff  = 0.4
)

// SetStats summarizes one partition of training examples.
type SetStats struct {
	Count                 int     `json:"count"`
	MeanComplexity        float64 `json:"mean_complexity"`
	MeanAspectRatioChange float64 `json:"mean_aspect_ratio_change"`
	MeanSizeChangeRatio   float64 `json:"mean_size_change_ratio"`
}

// Patterns is the result of partitioning examples by quality score.
type Patterns struct {
	HighQuality SetStats `json:"high_quality"` // quality ≥ 0.8
	LowQuality  SetStats `json:"low_quality"`  // quality ≤ 0.4
}

// AnalyzePatterns partitions examples into high-quality (≥0.8) and
// low-quality (≤0.4) sets and reports each set's mean complexity,
// aspect-ratio change, and size-change ratio. Mid-range examples carry no
// clear signal and are ignored.
func AnalyzePatterns(examples []Example) Patterns {
	var high, low []Example
	for _, ex := range examples {
		switch {
		case ex.QualityScore >= highQualityCutoff:
			high = append(high, ex)
		case ex.QualityScore <= lowQualityCutoff:
			low = append(low, ex)
		}
	}
	return Patterns{
		HighQuality: statsOf(high),
		LowQuality:  statsOf(low),
	}
}

func statsOf(set []Example) SetStats {
	s := SetStats{Count: len(set)}
	if len(set) == 0 {
		return s
	}
	for _, ex := range set {
		s.MeanComplexity += ex.Features.CanvasComplexity
		s.MeanAspectRatioChange += ex.Features.AspectRatioChange
		s.MeanSizeChangeRatio += ex.Features.SizeChangeRatio
	}
	n := float64(len(set))
	s.MeanComplexity /= n
	s.MeanAspectRatioChange /= n
	s.MeanSizeChangeRatio /= n
	return s
}
