package main

import (
	"context"
	"log/slog"
	"runtime/metrics"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	resourceSampleInterval = 100 * time.Millisecond

	metricHeapObjects = "/memory/classes/heap/objects:bytes"
	metricGoroutines  = "/sched/goroutines:goroutines"
)

// resourceUsage is what a command consumed at its peak. Copies hold
// chunk size times buffer count per destination bucket, and the number of
// buckets in flight shows in the goroutines.
type resourceUsage struct {
	Command        string
	Elapsed        time.Duration
	PeakHeap       uint64
	PeakGoroutines uint64
}

func (u resourceUsage) attrs() []any {
	return []any{
		"command", u.Command,
		"elapsed", u.Elapsed.Round(time.Millisecond),
		"peakHeap", humanize.IBytes(u.PeakHeap),
		"peakGoroutines", u.PeakGoroutines,
	}
}

// resourceObserver samples the runtime metrics while a command runs.
type resourceObserver struct {
	mu      sync.Mutex
	usage   resourceUsage
	start   time.Time
	samples []metrics.Sample

	cancel context.CancelFunc
	done   chan struct{}
}

// newResourceObserver starts sampling for the named command. It has to be
// stopped with [resourceObserver.Stop].
func newResourceObserver(ctx context.Context, command string, interval time.Duration) *resourceObserver {
	obs := &resourceObserver{
		usage: resourceUsage{Command: command},
		start: time.Now(),
		samples: []metrics.Sample{
			{Name: metricHeapObjects},
			{Name: metricGoroutines},
		},
		done: make(chan struct{}),
	}

	ctx, obs.cancel = context.WithCancel(ctx)
	obs.sample()

	go obs.monitor(ctx, interval)

	return obs
}

func (o *resourceObserver) sample() {
	o.mu.Lock()
	defer o.mu.Unlock()

	metrics.Read(o.samples)

	for _, s := range o.samples {
		if s.Value.Kind() != metrics.KindUint64 {
			continue
		}
		switch s.Name {
		case metricHeapObjects:
			o.usage.PeakHeap = max(o.usage.PeakHeap, s.Value.Uint64())
		case metricGoroutines:
			o.usage.PeakGoroutines = max(o.usage.PeakGoroutines, s.Value.Uint64())
		}
	}
}

func (o *resourceObserver) monitor(ctx context.Context, interval time.Duration) {
	defer close(o.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sample()
		}
	}
}

// Usage returns the peaks observed so far.
func (o *resourceObserver) Usage() resourceUsage {
	o.mu.Lock()
	defer o.mu.Unlock()

	u := o.usage
	u.Elapsed = time.Since(o.start)

	return u
}

// Stop takes a last sample, halts the sampling and logs the peaks.
func (o *resourceObserver) Stop() resourceUsage {
	o.cancel()
	<-o.done
	o.sample()

	u := o.Usage()
	slog.Debug("Resource usage peaked.", u.attrs()...)

	return u
}
