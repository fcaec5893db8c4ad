package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters implements every hook interface with atomic counters. The CLI
// registers it in verbose mode and logs a Snapshot on exit.
type Counters struct {
	computes    atomic.Int64
	failures    atomic.Int64
	computeNano atomic.Int64
	searches    atomic.Int64
	positions   atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	sets        atomic.Int64
	setBytes    atomic.Int64
	exports     atomic.Int64
	exportBytes atomic.Int64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Computes      int64
	Failures      int64
	ComputeTime   time.Duration
	Searches      int64
	Positions     int64
	CacheHits     int64
	CacheMisses   int64
	CacheSets     int64
	CacheSetBytes int64
	Exports       int64
	ExportBytes   int64
}

// HitRate returns hits / (hits + misses), or 0 without lookups.
func (s Snapshot) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters { return &Counters{} }

func (c *Counters) OnComputeStart(context.Context, string) {}

func (c *Counters) OnComputeComplete(_ context.Context, _ string, d time.Duration, err error) {
	c.computes.Add(1)
	c.computeNano.Add(int64(d))
	if err != nil {
		c.failures.Add(1)
	}
}

func (c *Counters) OnFingeringSearch(_ context.Context, _ string, positions int, _ time.Duration, _ error) {
	c.searches.Add(1)
	c.positions.Add(int64(positions))
}

func (c *Counters) OnCacheHit(context.Context, string)  { c.hits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string) { c.misses.Add(1) }

func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.sets.Add(1)
	c.setBytes.Add(int64(size))
}

func (c *Counters) OnExport(_ context.Context, _ string, size int, _ time.Duration, err error) {
	if err == nil {
		c.exports.Add(1)
		c.exportBytes.Add(int64(size))
	}
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Computes:      c.computes.Load(),
		Failures:      c.failures.Load(),
		ComputeTime:   time.Duration(c.computeNano.Load()),
		Searches:      c.searches.Load(),
		Positions:     c.positions.Load(),
		CacheHits:     c.hits.Load(),
		CacheMisses:   c.misses.Load(),
		CacheSets:     c.sets.Load(),
		CacheSetBytes: c.setBytes.Load(),
		Exports:       c.exports.Load(),
		ExportBytes:   c.exportBytes.Load(),
	}
}

var (
	_ EngineHooks = (*Counters)(nil)
	_ CacheHooks  = (*Counters)(nil)
	_ ExportHooks = (*Counters)(nil)
)
