// Package observability provides hooks for metrics, tracing and logging.
//
// Engine packages stay free of any observability backend. Callers register
// hooks at startup; the pipeline runner and the CLI emit events through
// them. Defaults are no-ops.
//
// Register hooks at application startup:
//
//	func main() {
//	    counters := observability.NewCounters()
//	    observability.SetEngineHooks(counters)
//	    observability.SetCacheHooks(counters)
//	    // ... run application
//	}
//
// Callers emit events around work:
//
//	observability.Engine().OnComputeStart(ctx, "fretboard")
//	// ... compute ...
//	observability.Engine().OnComputeComplete(ctx, "fretboard", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// EngineHooks receives events from fretboard, scale and chord computation.
type EngineHooks interface {
	OnComputeStart(ctx context.Context, op string)
	OnComputeComplete(ctx context.Context, op string, duration time.Duration, err error)

	// OnFingeringSearch reports a chord fingering search and how many
	// positions it returned.
	OnFingeringSearch(ctx context.Context, symbol string, positions int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ExportHooks receives events from file exports such as MIDI.
type ExportHooks interface {
	OnExport(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnComputeStart(context.Context, string)                          {}
func (NoopEngineHooks) OnComputeComplete(context.Context, string, time.Duration, error) {}
func (NoopEngineHooks) OnFingeringSearch(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExport(context.Context, string, int, time.Duration, error) {}

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers engine hooks. Nil is ignored.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetExportHooks registers export hooks. Nil is ignored.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	exportHooks = NoopExportHooks{}
}
