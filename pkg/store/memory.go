package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/framefit/framefit/pkg/training"
)

// MemoryStore is the in-process backend for development, tests, and CLI
// runs. Records are copied on the way in and out so callers can never
// mutate stored state through a shared pointer.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	examples []*training.Example
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// CreateSession stores a copy of the session.
func (m *MemoryStore) CreateSession(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *s
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = m.now()
	}
	copied.UpdatedAt = copied.CreatedAt
	m.sessions[copied.ID] = &copied
	return nil
}

// GetSession returns a copy of the session, or ErrNotFound.
func (m *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

// UpdateFeedback attaches feedback to a session.
func (m *MemoryStore) UpdateFeedback(ctx context.Context, id string, u FeedbackUpdate) (*Session, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	rating := u.Rating
	s.Rating = &rating
	s.Helpful = u.Helpful
	s.FeedbackText = u.FeedbackText
	s.Corrections = u.Corrections
	s.UpdatedAt = m.now()

	copied := *s
	return &copied, nil
}

// ListSessions returns matching sessions, newest first.
func (m *MemoryStore) ListSessions(ctx context.Context, f SessionFilter) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*Session
	for _, s := range m.sessions {
		if f.MinRating > 0 && (s.Rating == nil || *s.Rating < f.MinRating) {
			continue
		}
		if !f.Since.IsZero() && s.CreatedAt.Before(f.Since) {
			continue
		}
		matched = append(matched, s)
	}

	slices.SortFunc(matched, func(a, b *Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if f.Offset >= len(matched) {
		return []*Session{}, nil
	}
	matched = matched[f.Offset:]
	if limit := f.limit(); len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*Session, len(matched))
	for i, s := range matched {
		copied := *s
		out[i] = &copied
	}
	return out, nil
}

// CreateExample stores a copy of the training example.
func (m *MemoryStore) CreateExample(ctx context.Context, ex *training.Example) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *ex
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = m.now()
	}
	m.examples = append(m.examples, &copied)
	return nil
}

// ListExamples returns examples created at or after since, newest first.
func (m *MemoryStore) ListExamples(ctx context.Context, since time.Time, limit int) ([]*training.Example, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*training.Example
	for _, ex := range m.examples {
		if !since.IsZero() && ex.CreatedAt.Before(since) {
			continue
		}
		matched = append(matched, ex)
	}

	slices.SortFunc(matched, func(a, b *training.Example) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*training.Example, len(matched))
	for i, ex := range matched {
		copied := *ex
		out[i] = &copied
	}
	return out, nil
}

// Close does nothing for the in-memory store.
func (m *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
