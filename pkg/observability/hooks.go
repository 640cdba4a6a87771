// Package observability lets a host program watch document and store
// activity without graphwire depending on a metrics or tracing library.
//
// Hooks are process-wide and default to no-ops. A host installs its own once
// at startup, before documents are read or written:
//
//	observability.SetCodecHooks(metrics)
//	observability.SetStoreHooks(metrics)
//
// pkg/document reports every encode and decode; the pkg/store backends report
// hits, misses and writes under their backend name ("file", "redis", "mongo").
// The graphwire CLI installs hooks that write debug logs.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Codec Hooks
// =============================================================================

// CodecHooks receives events from document reads and writes.
type CodecHooks interface {
	// Encode events
	OnEncodeStart(ctx context.Context, uri string)
	OnEncodeComplete(ctx context.Context, uri string, objects, size int, duration time.Duration, err error)

	// Decode events
	OnDecodeStart(ctx context.Context, uri string, size int)
	OnDecodeComplete(ctx context.Context, uri string, objects int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document store operations.
type StoreHooks interface {
	// OnStoreHit records a successful lookup.
	OnStoreHit(ctx context.Context, backend string)

	// OnStoreMiss records a lookup of a missing or expired key.
	OnStoreMiss(ctx context.Context, backend string)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCodecHooks is a no-op implementation of CodecHooks.
type NoopCodecHooks struct{}

func (NoopCodecHooks) OnEncodeStart(context.Context, string) {}
func (NoopCodecHooks) OnEncodeComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopCodecHooks) OnDecodeStart(context.Context, string, int)                          {}
func (NoopCodecHooks) OnDecodeComplete(context.Context, string, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	codecHooks CodecHooks = NoopCodecHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetCodecHooks installs h. A nil h is ignored.
func SetCodecHooks(h CodecHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		codecHooks = h
	}
}

// SetStoreHooks installs h. A nil h is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Codec returns the registered codec hooks.
func Codec() CodecHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return codecHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset reinstalls the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	codecHooks = NoopCodecHooks{}
	storeHooks = NoopStoreHooks{}
}
