package resize

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/framefit/framefit/pkg/store"
	"github.com/framefit/framefit/pkg/training"
)

// ErrNoStore is returned by operations that require persistence when the
// engine was built without a store.
var ErrNoStore = errors.New("no session store configured")

// Feedback ratings that turn a session into a training example: strong
// positive and strong negative signals both carry learnable information.
const (
	exampleMinPositive = 4
	exampleMaxNegative = 2
)

// SubmitFeedback attaches a user rating to a session, folds the outcome
// into the variant's metrics, and derives a training example when the
// rating is decisive (≥4 or ≤2). Metric recording happens even when the
// example write fails, so the selector's state never depends on store
// health.
func (e *Engine) SubmitFeedback(ctx context.Context, sessionID string, u store.FeedbackUpdate) (*store.Session, error) {
	if e.Store == nil {
		return nil, ErrNoStore
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	session, err := e.Store.UpdateFeedback(ctx, sessionID, u)
	if err != nil {
		return nil, fmt.Errorf("update feedback for %s: %w", sessionID, err)
	}

	if e.Selector != nil && session.VariantID != "" {
		if err := e.Selector.RecordMetrics(session.VariantID, u.Rating, session.ProcessingTimeMs); err != nil {
			e.Logger.Warn("variant metrics update failed", "variant", session.VariantID, "err", err)
		}
	}

	if u.Rating >= exampleMinPositive || u.Rating <= exampleMaxNegative {
		if err := e.createExample(ctx, session, u); err != nil {
			e.Logger.Warn("training example write failed", "session", sessionID, "err", err)
		}
	}
	return session, nil
}

// createExample converts a decisively-rated session into an immutable
// training example.
func (e *Engine) createExample(ctx context.Context, session *store.Session, u store.FeedbackUpdate) error {
	features, err := training.ExtractFeatures(session.SourceElements, session.SourceSize, session.TargetSize)
	if err != nil {
		return fmt.Errorf("extract features: %w", err)
	}

	placements := session.Placements
	if len(u.Corrections) > 0 {
		// Manual corrections are the better ground truth.
		placements = u.Corrections
	}

	example := &training.Example{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		Features:   features,
		Placements: placements,
		QualityScore: training.QualityScore(training.Feedback{
			Rating:         u.Rating,
			Helpful:        u.Helpful,
			HasCorrections: len(u.Corrections) > 0,
		}),
	}
	return e.Store.CreateExample(ctx, example)
}
