// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about resize execution, model calls, and
// persistence operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces per event category
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by library packages, which keeps the
// engine free of observability-framework imports.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resize Hooks
// =============================================================================

// ResizeHooks receives events from the resize orchestrator.
type ResizeHooks interface {
	// OnResizeStart records the beginning of a resize request.
	OnResizeStart(ctx context.Context, elementCount int, targetW, targetH float64)

	// OnResizeComplete records the end of a resize request.
	OnResizeComplete(ctx context.Context, usedFallback bool, score float64, duration time.Duration, err error)
}

// =============================================================================
// Model Hooks
// =============================================================================

// ModelHooks receives events from vision model calls.
type ModelHooks interface {
	// OnModelCall records an outgoing proposal request.
	OnModelCall(ctx context.Context, variantID string, elementCount int)

	// OnModelResult records the outcome of a proposal request.
	OnModelResult(ctx context.Context, variantID string, ok bool, reason string, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from session and training-example persistence.
type StoreHooks interface {
	// OnWrite records a persistence write.
	OnWrite(ctx context.Context, collection string, err error)

	// OnRead records a persistence read.
	OnRead(ctx context.Context, collection string, count int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResizeHooks is a no-op implementation of ResizeHooks.
type NoopResizeHooks struct{}

func (NoopResizeHooks) OnResizeStart(context.Context, int, float64, float64) {}
func (NoopResizeHooks) OnResizeComplete(context.Context, bool, float64, time.Duration, error) {
}

// NoopModelHooks is a no-op implementation of ModelHooks.
type NoopModelHooks struct{}

func (NoopModelHooks) OnModelCall(context.Context, string, int)                         {}
func (NoopModelHooks) OnModelResult(context.Context, string, bool, string, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnWrite(context.Context, string, error)     {}
func (NoopStoreHooks) OnRead(context.Context, string, int, error) {}

// =============================================================================
// Registration
// =============================================================================

var (
	mu          sync.RWMutex
	resizeHooks ResizeHooks = NoopResizeHooks{}
	modelHooks  ModelHooks  = NoopModelHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
)

// SetResizeHooks registers hooks for resize events. Pass nil to reset.
func SetResizeHooks(h ResizeHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopResizeHooks{}
	}
	resizeHooks = h
}

// SetModelHooks registers hooks for model call events. Pass nil to reset.
func SetModelHooks(h ModelHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopModelHooks{}
	}
	modelHooks = h
}

// SetStoreHooks registers hooks for persistence events. Pass nil to reset.
func SetStoreHooks(h StoreHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopStoreHooks{}
	}
	storeHooks = h
}

// Resize returns the registered resize hooks.
func Resize() ResizeHooks {
	mu.RLock()
	defer mu.RUnlock()
	return resizeHooks
}

// Model returns the registered model hooks.
func Model() ModelHooks {
	mu.RLock()
	defer mu.RUnlock()
	return modelHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	mu.RLock()
	defer mu.RUnlock()
	return storeHooks
}
