package training

import (
	"math"
	"time"

	"github.com/framefit/framefit/pkg/canvas"
)

// =============================================================================
// Quality Scoring
// =============================================================================

// Feedback is the user signal attached to one resize session.
type Feedback struct {
	Rating         int   // 1–5
	Helpful        *bool // nil when the user gave no helpfulness signal
	HasCorrections bool  // user supplied manual placement corrections
}

// QualityScore maps feedback to a [0,1] training weight:
//
//	base        = rating/5, clamped to [0,1]
//	helpful     → ×1.1, capped at 1.0
//	unhelpful   → ×0.9
//	corrections → ×0.8, floored at 0.1
//
// The result is always clamped to [0,1] for any input combination, so a
// downstream consumer never sees an out-of-range weight.
func QualityScore(fb Feedback) float64 {
	score := float64(fb.Rating) / 5
	score = math.Min(math.Max(score, 0), 1)

	if fb.Helpful != nil {
		if *fb.Helpful {
			score = math.Min(score*1.1, 1.0)
		} else {
			score *= 0.9
		}
	}
	if fb.HasCorrections {
		score = math.Max(score*0.8, 0.1)
	}
	return math.Min(math.Max(score, 0), 1)
}

// =============================================================================
// Example - One Quality-Scored Training Record
// =============================================================================

// Example is a quality-scored (input features, output placements) pair
// derived from a rated session. Immutable once created; consumed only by
// offline pattern analysis.
type Example struct {
	ID           string             `json:"id" bson:"_id"`
	SessionID    string             `json:"session_id" bson:"session_id"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	Features     Features           `json:"features" bson:"features"`
	Placements   []canvas.Placement `json:"placements" bson:"placements"`
	QualityScore float64            `json:"quality_score" bson:"quality_score"`
}
