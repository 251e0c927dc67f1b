package resize

import (
	"context"
	"fmt"
	"time"

	"github.com/framefit/framefit/pkg/store"
	"github.com/framefit/framefit/pkg/training"
)

// =============================================================================
// Retrain - Offline Pattern Analysis
// =============================================================================

// RetrainReport is the result of one offline analysis batch.
type RetrainReport struct {
	SessionsRead    int               `json:"sessions_read"`
	ExamplesRead    int               `json:"examples_read"`
	Patterns        training.Patterns `json:"patterns"`
	ImprovedPrompts []string          `json:"improved_prompts"`
}

// Retrain reads training examples accumulated over the last daysBack days,
// backfills examples from decisively-rated sessions that never produced
// one, and runs pattern analysis over the combined set. minRating bounds
// which sessions count as positive signal (default 4). The report carries
// candidate prompt text; it does not touch the variant selector's live
// weights; promoting a prompt is an explicit AddVariant /
// AutoOptimizeWeights step.
func (e *Engine) Retrain(ctx context.Context, daysBack, minRating int) (*RetrainReport, error) {
	if e.Store == nil {
		return nil, ErrNoStore
	}
	if daysBack <= 0 {
		daysBack = 30
	}
	if minRating <= 0 {
		minRating = exampleMinPositive
	}
	since := time.Now().AddDate(0, 0, -daysBack)

	examples, err := e.Store.ListExamples(ctx, since, 0)
	if err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}

	sessions, err := e.Store.ListSessions(ctx, store.SessionFilter{Since: since, Limit: store.DefaultPageLimit})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	covered := make(map[string]bool, len(examples))
	for _, ex := range examples {
		covered[ex.SessionID] = true
	}

	set := make([]training.Example, 0, len(examples))
	for _, ex := range examples {
		set = append(set, *ex)
	}
	for _, s := range sessions {
		if s.Rating == nil || covered[s.ID] {
			continue
		}
		if *s.Rating < minRating && *s.Rating > exampleMaxNegative {
			continue
		}
		features, err := training.ExtractFeatures(s.SourceElements, s.SourceSize, s.TargetSize)
		if err != nil {
			e.Logger.Warn("skipping session with unusable snapshot", "session", s.ID, "err", err)
			continue
		}
		set = append(set, training.Example{
			SessionID:  s.ID,
			Features:   features,
			Placements: s.Placements,
			QualityScore: training.QualityScore(training.Feedback{
				Rating:         *s.Rating,
				Helpful:        s.Helpful,
				HasCorrections: len(s.Corrections) > 0,
			}),
		})
	}

	patterns := training.AnalyzePatterns(set)
	report := &RetrainReport{
		SessionsRead:    len(sessions),
		ExamplesRead:    len(examples),
		Patterns:        patterns,
		ImprovedPrompts: training.ImprovedPrompts(patterns),
	}

	e.Logger.Info("retrain complete",
		"sessions", report.SessionsRead,
		"examples", len(set),
		"high_quality", patterns.HighQuality.Count,
		"low_quality", patterns.LowQuality.Count,
		"prompts", len(report.ImprovedPrompts))
	return report, nil
}
