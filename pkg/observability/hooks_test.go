package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEngineHooks{}
	e.OnComputeStart(ctx, "fretboard")
	e.OnComputeComplete(ctx, "fretboard", time.Millisecond, nil)
	e.OnFingeringSearch(ctx, "Cmaj7", 5, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "fretboard")
	c.OnCacheMiss(ctx, "chord")
	c.OnCacheSet(ctx, "scale", 1024)

	NoopExportHooks{}.OnExport(ctx, "midi", 512, time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}

	counters := NewCounters()
	SetEngineHooks(counters)
	SetCacheHooks(counters)
	SetExportHooks(counters)
	if Engine() != counters || Cache() != counters || Export() != counters {
		t.Error("Set*Hooks should register custom hooks")
	}

	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := NewCounters()
	SetCacheHooks(custom)
	SetCacheHooks(nil)
	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.OnCacheHit(ctx, "fretboard")
			c.OnCacheMiss(ctx, "fretboard")
			c.OnCacheHit(ctx, "fretboard")
		}()
	}
	wg.Wait()

	c.OnComputeComplete(ctx, "chord", 2*time.Millisecond, nil)
	c.OnComputeComplete(ctx, "chord", 3*time.Millisecond, errors.New("boom"))
	c.OnFingeringSearch(ctx, "G7", 4, time.Millisecond, nil)
	c.OnCacheSet(ctx, "chord", 100)
	c.OnExport(ctx, "midi", 64, time.Millisecond, nil)
	c.OnExport(ctx, "midi", 64, time.Millisecond, errors.New("disk full"))

	s := c.Snapshot()
	if s.CacheHits != 20 || s.CacheMisses != 10 {
		t.Errorf("hits/misses = %d/%d, want 20/10", s.CacheHits, s.CacheMisses)
	}
	if got := s.HitRate(); got < 0.66 || got > 0.67 {
		t.Errorf("HitRate = %f, want 2/3", got)
	}
	if s.Computes != 2 || s.Failures != 1 || s.ComputeTime != 5*time.Millisecond {
		t.Errorf("computes = %+v", s)
	}
	if s.Searches != 1 || s.Positions != 4 {
		t.Errorf("searches = %d positions = %d", s.Searches, s.Positions)
	}
	if s.CacheSets != 1 || s.CacheSetBytes != 100 || s.Exports != 1 || s.ExportBytes != 64 {
		t.Errorf("sets/exports = %+v", s)
	}
	if (Snapshot{}).HitRate() != 0 {
		t.Error("empty HitRate should be 0")
	}
}
