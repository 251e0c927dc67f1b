// Package cache provides the placement cache used to short-circuit repeated
// identical resize requests.
//
// A resize is fully determined by the element snapshot, the size change, and
// the prompt variant, so model responses can be cached under a content hash
// of those inputs. Backends:
//   - null: caching disabled (tests, one-shot CLI runs)
//   - file: local directory cache for CLI usage
//   - redis: shared cache for multi-instance server deployments
package cache

import (
	"context"
	"time"
)

// TTLs per cached artifact kind.
const (
	// TTLPlacements bounds how long a model placement set is reused.
	TTLPlacements = 24 * time.Hour

	// TTLPreview bounds rendered SVG previews.
	TTLPreview = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keyer - Cache Key Construction
// =============================================================================

// PlacementKeyOpts are the inputs that distinguish one placement result
// from another beyond the element snapshot hash.
type PlacementKeyOpts struct {
	TargetWidth  float64
	TargetHeight float64
	VariantID    string
}

// Keyer builds cache keys for the engine's cacheable stages.
type Keyer interface {
	// PlacementKey builds a key for a model placement set. snapshotHash is
	// the content hash of the serialized element list plus source size.
	PlacementKey(snapshotHash string, opts PlacementKeyOpts) string

	// PreviewKey builds a key for a rendered SVG preview of a placement set.
	PreviewKey(placementHash string) string
}

// DefaultKeyer hashes option structs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// PlacementKey generates a key for placement caching.
func (k *DefaultKeyer) PlacementKey(snapshotHash string, opts PlacementKeyOpts) string {
	return hashKey("placement", snapshotHash, opts)
}

// PreviewKey generates a key for preview caching.
func (k *DefaultKeyer) PreviewKey(placementHash string) string {
	return hashKey("preview", placementHash)
}

// =============================================================================
// ScopedKeyer - Namespaced Keys
// =============================================================================

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, e.g.
// separating cache namespaces per workspace on a shared redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PlacementKey generates a prefixed placement key.
func (k *ScopedKeyer) PlacementKey(snapshotHash string, opts PlacementKeyOpts) string {
	return k.prefix + k.inner.PlacementKey(snapshotHash, opts)
}

// PreviewKey generates a prefixed preview key.
func (k *ScopedKeyer) PreviewKey(placementHash string) string {
	return k.prefix + k.inner.PreviewKey(placementHash)
}
