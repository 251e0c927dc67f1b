// Package store persists resize sessions and training examples.
//
// The Store interface supports create, update-by-id, and filtered range
// queries with pagination limits. Two backends ship with the engine:
//   - memory: in-process storage for development, tests, and CLI runs
//   - mongo: document storage for server deployments
//
// Persistence failures surface to the caller but must never corrupt the
// engine's in-memory state: the variant selector and the resize path keep
// functioning when writes fail.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/score"
	"github.com/framefit/framefit/pkg/training"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRating is returned when a feedback rating is out of range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// DefaultPageLimit bounds range queries that pass no explicit limit.
const DefaultPageLimit = 100

// =============================================================================
// Session - Persisted Resize Record
// =============================================================================

// Session status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Session is the persisted record of one resize operation. Created when a
// resize completes (success or failure), updated when feedback arrives,
// never deleted by the engine.
type Session struct {
	ID               string             `json:"id" bson:"_id"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
	UserID           string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	VariantID        string             `json:"variant_id,omitempty" bson:"variant_id,omitempty"`
	Status           string             `json:"status" bson:"status"`
	SourceElements   []canvas.Element   `json:"source_elements" bson:"source_elements"`
	SourceSize       canvas.Size        `json:"source_size" bson:"source_size"`
	TargetSize       canvas.Size        `json:"target_size" bson:"target_size"`
	Placements       []canvas.Placement `json:"placements" bson:"placements"`
	UsedFallback     bool               `json:"used_fallback" bson:"used_fallback"`
	Score            score.Breakdown    `json:"score" bson:"score"`
	ProcessingTimeMs float64            `json:"processing_time_ms" bson:"processing_time_ms"`

	// Feedback, set by UpdateFeedback.
	Rating       *int               `json:"rating,omitempty" bson:"rating,omitempty"`
	Helpful      *bool              `json:"helpful,omitempty" bson:"helpful,omitempty"`
	FeedbackText string             `json:"feedback_text,omitempty" bson:"feedback_text,omitempty"`
	Corrections  []canvas.Placement `json:"corrections,omitempty" bson:"corrections,omitempty"`
}

// FeedbackUpdate is the mutable feedback slice of a session.
type FeedbackUpdate struct {
	Rating       int
	Helpful      *bool
	FeedbackText string
	Corrections  []canvas.Placement
}

// Validate checks the rating range.
func (u *FeedbackUpdate) Validate() error {
	if u.Rating < 1 || u.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// =============================================================================
// Query Filters
// =============================================================================

// SessionFilter narrows session range queries. Zero values mean "no filter".
type SessionFilter struct {
	MinRating int       // only sessions rated at least this
	Since     time.Time // only sessions created at or after this
	Limit     int       // page size; DefaultPageLimit when 0
	Offset    int       // number of matching sessions to skip
}

func (f *SessionFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultPageLimit
	}
	return f.Limit
}

// =============================================================================
// Store Interface
// =============================================================================

// Store persists sessions and training examples.
type Store interface {
	// CreateSession stores a new session record.
	CreateSession(ctx context.Context, s *Session) error

	// GetSession returns a session by ID, or ErrNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)

	// UpdateFeedback attaches feedback to a session and returns the updated
	// record. Returns ErrNotFound for unknown IDs.
	UpdateFeedback(ctx context.Context, id string, u FeedbackUpdate) (*Session, error)

	// ListSessions returns sessions matching the filter, newest first.
	ListSessions(ctx context.Context, f SessionFilter) ([]*Session, error)

	// CreateExample stores an immutable training example.
	CreateExample(ctx context.Context, ex *training.Example) error

	// ListExamples returns training examples created at or after since,
	// newest first, bounded by limit (DefaultPageLimit when 0).
	ListExamples(ctx context.Context, since time.Time, limit int) ([]*training.Example, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
