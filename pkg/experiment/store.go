package experiment

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// AssignmentStore - Sticky User → Variant Mapping
// =============================================================================

// AssignmentStore persists sticky user-to-variant assignments. Assign must
// be insert-if-absent: when a concurrent or earlier assignment exists for
// the same user, that one is returned and the new draw is discarded.
type AssignmentStore interface {
	// Assign stores userID → variantID unless an assignment already exists,
	// and returns the effective variant ID.
	Assign(ctx context.Context, userID, variantID string) (string, error)

	// Reassign overwrites any existing assignment. Used only when the
	// stored variant has been deactivated and the user must be redrawn.
	Reassign(ctx context.Context, userID, variantID string) error

	// Get returns the assignment for userID, if any.
	Get(ctx context.Context, userID string) (string, bool, error)
}

// =============================================================================
// Memory Backend
// =============================================================================

// MemoryAssignments is the default in-process assignment store. Assignments
// are stable for the lifetime of the process, matching the single-instance
// deployment model.
type MemoryAssignments struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryAssignments creates an empty in-memory store.
func NewMemoryAssignments() *MemoryAssignments {
	return &MemoryAssignments{m: make(map[string]string)}
}

// Assign stores the mapping unless one exists and returns the winner.
func (s *MemoryAssignments) Assign(ctx context.Context, userID, variantID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[userID]; ok {
		return existing, nil
	}
	s.m[userID] = variantID
	return variantID, nil
}

// Reassign overwrites the mapping unconditionally.
func (s *MemoryAssignments) Reassign(ctx context.Context, userID, variantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = variantID
	return nil
}

// Get returns the assignment for userID, if any.
func (s *MemoryAssignments) Get(ctx context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[userID]
	return v, ok, nil
}

// Ensure MemoryAssignments implements AssignmentStore.
var _ AssignmentStore = (*MemoryAssignments)(nil)

// =============================================================================
// Redis Backend
// =============================================================================

// redisKeyPrefix namespaces assignment keys on a shared redis.
const redisKeyPrefix = "framefit:assign:"

// RedisAssignments shares sticky assignments across server instances using
// SETNX semantics, so all replicas agree on a user's variant.
type RedisAssignments struct {
	client *redis.Client
}

// NewRedisAssignments wraps an existing redis client.
func NewRedisAssignments(client *redis.Client) *RedisAssignments {
	return &RedisAssignments{client: client}
}

// Assign stores the mapping with SETNX and reads back the winner.
func (s *RedisAssignments) Assign(ctx context.Context, userID, variantID string) (string, error) {
	key := redisKeyPrefix + userID
	set, err := s.client.SetNX(ctx, key, variantID, 0).Result()
	if err != nil {
		return "", err
	}
	if set {
		return variantID, nil
	}
	return s.client.Get(ctx, key).Result()
}

// Reassign overwrites the mapping with a plain SET.
func (s *RedisAssignments) Reassign(ctx context.Context, userID, variantID string) error {
	return s.client.Set(ctx, redisKeyPrefix+userID, variantID, 0).Err()
}

// Get returns the assignment for userID, if any.
func (s *RedisAssignments) Get(ctx context.Context, userID string) (string, bool, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+userID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Ensure RedisAssignments implements AssignmentStore.
var _ AssignmentStore = (*RedisAssignments)(nil)
