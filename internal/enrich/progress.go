package enrich

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Tracker accumulates run-level counters. Workers increment concurrently via
// atomics; the counters live for one pipeline run and are logged at a fixed
// cadence and at completion.
type Tracker struct {
	start time.Time

	fetched     atomic.Int64
	errors      atomic.Int64
	skipped     atomic.Int64
	downloaded  atomic.Int64
	extracted   atomic.Int64
	ocrRequired atomic.Int64
	completed   atomic.Int64
}

// NewTracker creates a Tracker with the clock started.
func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

func (t *Tracker) Fetched()     { t.fetched.Add(1) }
func (t *Tracker) Errored()     { t.errors.Add(1) }
func (t *Tracker) Skipped()     { t.skipped.Add(1) }
func (t *Tracker) Downloaded()  { t.downloaded.Add(1) }
func (t *Tracker) Extracted()   { t.extracted.Add(1) }
func (t *Tracker) OCRRequired() { t.ocrRequired.Add(1) }

// Complete marks one unit of work done and returns the completion count.
func (t *Tracker) Complete() int64 {
	return t.completed.Add(1)
}

// Stats is a point-in-time snapshot of the counters.
type Stats struct {
	Fetched     int64
	Errors      int64
	Skipped     int64
	Downloaded  int64
	Extracted   int64
	OCRRequired int64
	Completed   int64
	Elapsed     time.Duration
}

// Snapshot reads all counters.
func (t *Tracker) Snapshot() Stats {
	return Stats{
		Fetched:     t.fetched.Load(),
		Errors:      t.errors.Load(),
		Skipped:     t.skipped.Load(),
		Downloaded:  t.downloaded.Load(),
		Extracted:   t.extracted.Load(),
		OCRRequired: t.ocrRequired.Load(),
		Completed:   t.completed.Load(),
		Elapsed:     time.Since(t.start),
	}
}

// LogProgress emits an aggregate throughput line: done/remaining, rate, ETA.
func (t *Tracker) LogProgress(stage string, done, total int64) {
	elapsed := time.Since(t.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(done) / elapsed
	}
	etaMins := 0.0
	if rate > 0 {
		etaMins = float64(total-done) / rate / 60
	}
	zap.L().Info("progress",
		zap.String("stage", stage),
		zap.Int64("done", done),
		zap.Int64("total", total),
		zap.Float64("rate_per_sec", rate),
		zap.Float64("eta_mins", etaMins),
		zap.Int64("errors", t.errors.Load()),
	)
}
