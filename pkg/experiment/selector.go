package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
)

// Sentinel errors for selector operations.
var (
	// ErrUnknownVariant is returned for operations on an unregistered ID.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrNoActiveVariants is returned when assignment finds nothing to draw.
	ErrNoActiveVariants = errors.New("no active variants")

	// ErrInvalidRating is returned for ratings outside 1–5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidLatency is returned for negative processing times.
	ErrInvalidLatency = errors.New("processing time must be non-negative")
)

const (
	// maxUserIDLen is the length sticky-assignment IDs are trimmed to.
	maxUserIDLen = 100

	// anonymousID is the bucket for empty or fully-stripped user IDs.
	anonymousID = "anonymous"

	// minUsesForOptimization excludes barely-used variants from weight
	// optimization.
	minUsesForOptimization = 10

	// bestShare is the weight given to the best performer.
	bestShare = 70.0

	// restShare is split among the remaining variants by performance.
	restShare = 30.0

	// minWeight is the floor for any remaining active variant.
	minWeight = 5.0
)

// =============================================================================
// Selector
// =============================================================================

// Selector owns the in-memory variant registry and the sticky assignment
// store. All registry mutations run under the selector's lock.
type Selector struct {
	mu          sync.Mutex
	variants    map[string]*Variant
	assignments AssignmentStore
	rng         *rand.Rand
	now         func() time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithSeed makes the weighted draw deterministic, for tests.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewPCG(seed, 0))
	}
}

// WithAssignmentStore replaces the default in-memory sticky store, e.g.
// with the redis-backed store for multi-instance deployments.
func WithAssignmentStore(store AssignmentStore) Option {
	return func(s *Selector) { s.assignments = store }
}

// NewSelector creates a selector pre-loaded with the given variants. All of
// them start active with equal weights summing to 100. Pass
// DefaultVariants() for the standard template set.
func NewSelector(variants []Variant, opts ...Option) *Selector {
	s := &Selector{
		variants:    make(map[string]*Variant, len(variants)),
		assignments: NewMemoryAssignments(),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range variants {
		v := variants[i]
		v.Active = true
		if v.CreatedAt.IsZero() {
			v.CreatedAt = s.now()
		}
		s.variants[v.ID] = &v
	}
	s.normalizeLocked()
	return s
}

// =============================================================================
// Assignment
// =============================================================================

// Assign returns the variant assigned to userID, drawing a new weighted
// assignment if none exists. Assignments are sticky for the lifetime of the
// assignment store. The user ID is sanitized before lookup: trimmed to 100
// characters, stripped to alphanumerics, dashes, and underscores; an empty
// result maps to the "anonymous" bucket.
func (s *Selector) Assign(ctx context.Context, userID string) (Variant, error) {
	id := SanitizeUserID(userID)

	stale := false
	if existing, ok, err := s.assignments.Get(ctx, id); err == nil && ok {
		if v := s.snapshot(existing); v != nil && v.Active {
			return *v, nil
		}
		// Assigned variant was deactivated; redraw and overwrite the
		// mapping, otherwise insert-if-absent would keep the dead one.
		stale = true
	}

	drawn, err := s.draw()
	if err != nil {
		return Variant{}, err
	}

	effective := drawn
	if stale {
		if err := s.assignments.Reassign(ctx, id, drawn); err != nil {
			return Variant{}, fmt.Errorf("store reassignment: %w", err)
		}
	} else {
		// Insert-if-absent: a concurrent assignment for the same user wins
		// and is returned instead, so the user never flaps between variants.
		effective, err = s.assignments.Assign(ctx, id, drawn)
		if err != nil {
			return Variant{}, fmt.Errorf("store assignment: %w", err)
		}
	}
	if v := s.snapshot(effective); v != nil {
		return *v, nil
	}
	return Variant{}, ErrUnknownVariant
}

// SanitizeUserID normalizes a raw user identifier for sticky assignment.
func SanitizeUserID(raw string) string {
	if runes := []rune(raw); len(runes) > maxUserIDLen {
		raw = string(runes[:maxUserIDLen])
	}
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return anonymousID
	}
	return b.String()
}

// draw performs a cumulative-sum weighted random draw over active variants.
func (s *Selector) draw() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.activeIDsLocked()
	if len(ids) == 0 {
		return "", ErrNoActiveVariants
	}

	var total float64
	for _, id := range ids {
		total += s.variants[id].Weight
	}
	if total <= 0 {
		return ids[0], nil
	}

	target := s.rng.Float64() * total
	var cum float64
	for _, id := range ids {
		cum += s.variants[id].Weight
		if target < cum {
			return id, nil
		}
	}
	return ids[len(ids)-1], nil
}

// =============================================================================
// Metrics
// =============================================================================

// RecordMetrics folds one rated outcome into a variant's running metrics.
// Out-of-range inputs are rejected without mutating state.
func (s *Selector) RecordMetrics(variantID string, rating int, processingTimeMs float64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	if processingTimeMs < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidLatency, processingTimeMs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, variantID)
	}

	m := &v.Metrics
	oldTotal := float64(m.TotalUses)
	m.TotalUses++
	newTotal := float64(m.TotalUses)

	m.AverageRating = (m.AverageRating*oldTotal + float64(rating)) / newTotal
	m.AvgLatencyMs = (m.AvgLatencyMs*oldTotal + processingTimeMs) / newTotal
	if rating >= 4 {
		m.successes++
	}
	m.SuccessRate = float64(m.successes) / newTotal * 100
	return nil
}

// =============================================================================
// Registry Management
// =============================================================================

// AddVariant registers a new active variant and renormalizes weights.
func (s *Selector) AddVariant(v Variant) error {
	if v.ID == "" || v.Template == "" {
		return fmt.Errorf("variant requires an id and a template")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.variants[v.ID]; exists {
		return fmt.Errorf("variant %s already registered", v.ID)
	}
	v.Active = true
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	if v.Weight <= 0 {
		v.Weight = 100 / float64(len(s.variants)+1)
	}
	s.variants[v.ID] = &v
	s.normalizeLocked()
	return nil
}

// DeactivateVariant removes a variant from the traffic rotation and
// redistributes its weight across the remaining active variants.
func (s *Selector) DeactivateVariant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, id)
	}
	v.Active = false
	v.Weight = 0
	s.normalizeLocked()
	return nil
}

// Variants returns a snapshot of all registered variants, sorted by ID.
func (s *Selector) Variants() []Variant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Variant, 0, len(s.variants))
	for _, v := range s.variants {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b Variant) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// snapshot returns a copy of a variant by ID, or nil.
func (s *Selector) snapshot(id string) *Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.variants[id]; ok {
		copied := *v
		return &copied
	}
	return nil
}

// =============================================================================
// Weight Optimization
// =============================================================================

// AutoOptimizeWeights shifts traffic toward the best performer. Only
// variants with more than minUsesForOptimization uses participate; the best
// (by rating × success rate) receives 70%, the rest split 30% proportional
// to their relative performance with a 5% floor, and all active weights are
// renormalized to sum exactly 100. With fewer than two qualifying variants
// the weights are left untouched.
func (s *Selector) AutoOptimizeWeights() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var qualified []*Variant
	for _, id := range s.activeIDsLocked() {
		if v := s.variants[id]; v.Metrics.TotalUses > minUsesForOptimization {
			qualified = append(qualified, v)
		}
	}
	if len(qualified) < 2 {
		return
	}

	best := qualified[0]
	for _, v := range qualified[1:] {
		if v.Performance() > best.Performance() {
			best = v
		}
	}

	var restTotal float64
	for _, v := range qualified {
		if v != best {
			restTotal += v.Performance()
		}
	}

	best.Weight = bestShare
	for _, v := range qualified {
		if v == best {
			continue
		}
		if restTotal > 0 {
			v.Weight = max(restShare*v.Performance()/restTotal, minWeight)
		} else {
			v.Weight = max(restShare/float64(len(qualified)-1), minWeight)
		}
	}
	s.normalizeLocked()
}

// normalizeLocked rescales active weights to sum exactly 100. Zero-weight
// active sets fall back to an even split. Caller must hold s.mu.
func (s *Selector) normalizeLocked() {
	ids := s.activeIDsLocked()
	if len(ids) == 0 {
		return
	}

	var total float64
	for _, id := range ids {
		total += s.variants[id].Weight
	}
	if total <= 0 {
		even := 100 / float64(len(ids))
		for _, id := range ids {
			s.variants[id].Weight = even
		}
		return
	}
	for _, id := range ids {
		s.variants[id].Weight = s.variants[id].Weight / total * 100
	}
}

// activeIDsLocked returns active variant IDs in sorted order for
// deterministic iteration. Caller must hold s.mu.
func (s *Selector) activeIDsLocked() []string {
	ids := make([]string, 0, len(s.variants))
	for id, v := range s.variants {
		if v.Active {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
