package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with the elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Found 5 fingerings for Am7 (3ms)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logStats writes the counters collected during a verbose run.
func (c *CLI) logStats() {
	if c.counters == nil {
		return
	}
	s := c.counters.Snapshot()
	if s.Computes == 0 && s.CacheHits == 0 && s.Exports == 0 {
		return
	}
	c.Logger.Debug("run summary",
		"computes", s.Computes,
		"failures", s.Failures,
		"compute_time", s.ComputeTime.Round(time.Microsecond),
		"searches", s.Searches,
		"positions", s.Positions,
		"cache_hits", s.CacheHits,
		"cache_misses", s.CacheMisses,
		"hit_rate", humanize.FtoaWithDigits(s.HitRate()*100, 1)+"%",
		"cached", humanize.IBytes(uint64(s.CacheSetBytes)),
		"exported", humanize.IBytes(uint64(s.ExportBytes)),
	)
}
