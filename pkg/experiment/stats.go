package experiment

import (
	"errors"
	"fmt"
	"math"
)

// =============================================================================
// Significance Testing
// =============================================================================

// minUsesForSignificance is the per-variant sample size required before a
// z-test result is meaningful.
const minUsesForSignificance = 30

// zCritical is the two-tailed 95% critical value.
const zCritical = 1.96

// ErrInsufficientData is returned when either variant has too few uses for
// a significance test.
var ErrInsufficientData = errors.New("insufficient data for significance test")

// Significance is the result of comparing two variants' success rates.
type Significance struct {
	VariantA    string  `json:"variant_a"`
	VariantB    string  `json:"variant_b"`
	ZScore      float64 `json:"z_score"`
	Significant bool    `json:"significant"`
	Confidence  float64 `json:"confidence"` // 0–1, from the normal CDF
}

// CalculateSignificance runs a two-proportion z-test on the success rates
// of two variants. Both need at least 30 uses; the difference is called
// significant at |z| > 1.96 (95% two-tailed).
func (s *Selector) CalculateSignificance(idA, idB string) (Significance, error) {
	a := s.snapshot(idA)
	if a == nil {
		return Significance{}, fmt.Errorf("%w: %s", ErrUnknownVariant, idA)
	}
	b := s.snapshot(idB)
	if b == nil {
		return Significance{}, fmt.Errorf("%w: %s", ErrUnknownVariant, idB)
	}

	nA, nB := float64(a.Metrics.TotalUses), float64(b.Metrics.TotalUses)
	if nA < minUsesForSignificance || nB < minUsesForSignificance {
		return Significance{}, fmt.Errorf("%w: need %d uses each, have %d and %d",
			ErrInsufficientData, minUsesForSignificance, a.Metrics.TotalUses, b.Metrics.TotalUses)
	}

	pA := a.Metrics.SuccessRate / 100
	pB := b.Metrics.SuccessRate / 100
	pooled := (pA*nA + pB*nB) / (nA + nB)

	se := math.Sqrt(pooled * (1 - pooled) * (1/nA + 1/nB))
	var z float64
	if se > 0 {
		z = (pA - pB) / se
	}

	return Significance{
		VariantA:    idA,
		VariantB:    idB,
		ZScore:      z,
		Significant: math.Abs(z) > zCritical,
		Confidence:  2*normalCDF(math.Abs(z)) - 1,
	}, nil
}

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
